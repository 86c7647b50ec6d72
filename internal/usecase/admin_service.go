package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type AdminStats struct {
	TotalUsers     int   `json:"total_users"`
	TotalTickets   int   `json:"total_tickets"`
	PendingTickets int   `json:"pending_tickets"`
	TotalPoints    int64 `json:"total_points"`
}

type AdminUser struct {
	UserID      string
	Email       string
	DisplayName string
	TotalPoints int64
	TicketCount int
	LastCheckin *time.Time
	CreatedAt   *time.Time
}

type AdminService struct {
	ledger   points.Repository
	profiles profile.Repository
	tickets  ticket.Repository
	logger   *logging.Logger
}

func NewAdminService(
	ledger points.Repository,
	profiles profile.Repository,
	tickets ticket.Repository,
	logger *logging.Logger,
) *AdminService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AdminService{
		ledger:   ledger,
		profiles: profiles,
		tickets:  tickets,
		logger:   logger,
	}
}

type adminSnapshot struct {
	summaries []points.Summary
	profiles  []profile.Profile
	tickets   []ticket.Ticket
}

func (s *AdminService) Stats(ctx context.Context) (AdminStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.Stats")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return AdminStats{}, err
	}

	users := make(map[string]struct{}, len(snap.profiles)+len(snap.summaries))
	var stats AdminStats
	for _, p := range snap.profiles {
		users[p.UserID] = struct{}{}
	}
	for _, sum := range snap.summaries {
		users[sum.UserID] = struct{}{}
		stats.TotalPoints += sum.TotalPoints
	}
	for _, t := range snap.tickets {
		if t.Status == ticket.StatusPending {
			stats.PendingTickets++
		}
	}
	stats.TotalUsers = len(users)
	stats.TotalTickets = len(snap.tickets)
	return stats, nil
}

// ListUsers returns every known fan, highest points first.
func (s *AdminService) ListUsers(ctx context.Context) ([]AdminUser, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.ListUsers")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*AdminUser)
	row := func(userID string) *AdminUser {
		if u, ok := byUser[userID]; ok {
			return u
		}
		u := &AdminUser{UserID: userID, DisplayName: userID}
		byUser[userID] = u
		return u
	}

	for _, p := range snap.profiles {
		u := row(p.UserID)
		u.Email = p.Email
		u.DisplayName = p.Name()
		createdAt := p.CreatedAt
		u.CreatedAt = &createdAt
	}
	for _, sum := range snap.summaries {
		row(sum.UserID).TotalPoints = sum.TotalPoints
	}
	for _, t := range snap.tickets {
		row(t.UserID).TicketCount++
	}

	checkins := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(leaderboardFanout)
	for _, sum := range snap.summaries {
		u := byUser[sum.UserID]
		checkins.Go(func(ctx context.Context) error {
			entries, err := s.ledger.ListByUser(ctx, u.UserID)
			if err != nil {
				return fmt.Errorf("list ledger for %s: %w", u.UserID, err)
			}
			u.LastCheckin = points.LastActivity(points.FilterByAction(entries, points.ActionDailyCheckin))
			return nil
		})
	}
	if err := checkins.Wait(); err != nil {
		return nil, err
	}

	out := make([]AdminUser, 0, len(byUser))
	for _, u := range byUser {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b AdminUser) int {
		if a.TotalPoints != b.TotalPoints {
			if a.TotalPoints > b.TotalPoints {
				return -1
			}
			return 1
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

func (s *AdminService) snapshot(ctx context.Context) (adminSnapshot, error) {
	var snap adminSnapshot

	loaders := pool.New().WithErrors().WithContext(ctx)
	loaders.Go(func(ctx context.Context) (err error) {
		snap.summaries, err = s.ledger.Summaries(ctx)
		return wrapLoad("ledger summaries", err)
	})
	loaders.Go(func(ctx context.Context) (err error) {
		snap.profiles, err = s.profiles.List(ctx)
		return wrapLoad("profiles", err)
	})
	loaders.Go(func(ctx context.Context) (err error) {
		snap.tickets, err = s.tickets.List(ctx, "")
		return wrapLoad("tickets", err)
	})
	if err := loaders.Wait(); err != nil {
		return adminSnapshot{}, err
	}
	return snap, nil
}
