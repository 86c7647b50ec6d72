package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/leaderboard"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

const defaultBadgeWorkers = 8

type RecalculateBadgesResult struct {
	TotalUsers    int `json:"total_users"`
	BadgesAwarded int `json:"badges_awarded"`
	Failed        int `json:"failed"`
	WorkerCount   int `json:"worker_count"`
}

type BadgeService struct {
	repo       badge.Repository
	ledger     points.Repository
	checkins   *CheckinService
	idGen      id.Generator
	thresholds badge.Thresholds
	workers    int
	metrics    *metrics.Registry
	logger     *logging.Logger
	now        func() time.Time
}

func NewBadgeService(
	repo badge.Repository,
	ledger points.Repository,
	checkins *CheckinService,
	idGen id.Generator,
	thresholds badge.Thresholds,
	workers int,
	metricsRegistry *metrics.Registry,
	logger *logging.Logger,
) *BadgeService {
	if workers < 1 {
		workers = defaultBadgeWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &BadgeService{
		repo:       repo,
		ledger:     ledger,
		checkins:   checkins,
		idGen:      idGen,
		thresholds: thresholds,
		workers:    workers,
		metrics:    metricsRegistry,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *BadgeService) ListByUser(ctx context.Context, userID string) ([]badge.Badge, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	badges, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badge.SortForDisplay(badges), nil
}

// EvaluateUser grants every badge the user newly qualifies for and returns
// only those.
func (s *BadgeService) EvaluateUser(ctx context.Context, userID string) ([]badge.Badge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BadgeService.EvaluateUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	standings, err := s.standings(ctx)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, userID, standings)
}

// RecalculateAll re-evaluates every user that has ledger activity on a
// bounded worker pool.
func (s *BadgeService) RecalculateAll(ctx context.Context) (RecalculateBadgesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BadgeService.RecalculateAll")
	defer span.End()

	standings, err := s.standings(ctx)
	if err != nil {
		return RecalculateBadgesResult{}, err
	}

	result := RecalculateBadgesResult{
		TotalUsers:  len(standings.ranked),
		WorkerCount: min(s.workers, max(1, len(standings.ranked))),
	}
	if len(standings.ranked) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(result.WorkerCount)
	if err != nil {
		return RecalculateBadgesResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var awarded atomic.Int32
	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, entry := range standings.ranked {
		userID := entry.UserID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			granted, err := s.evaluate(ctx, userID, standings)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "badge evaluation failed", "user_id", userID, "error", err)
				return
			}
			awarded.Add(int32(len(granted)))
		}); err != nil {
			workers.Done()
			return RecalculateBadgesResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.BadgesAwarded = int(awarded.Load())
	result.Failed = int(failed.Load())
	s.logger.InfoContext(ctx, "badge recalculation finished",
		"total_users", result.TotalUsers,
		"badges_awarded", result.BadgesAwarded,
		"failed", result.Failed,
	)
	return result, nil
}

type badgeStandings struct {
	ranked []leaderboard.Entry
	rank   map[string]int
}

// standings ranks all users by ledger total for the percentile badges.
func (s *BadgeService) standings(ctx context.Context) (badgeStandings, error) {
	summaries, err := s.ledger.Summaries(ctx)
	if err != nil {
		return badgeStandings{}, fmt.Errorf("load ledger summaries: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(summaries))
	for _, sum := range summaries {
		entries = append(entries, leaderboard.Entry{
			UserID:       sum.UserID,
			TotalPoints:  sum.TotalPoints,
			LastActivity: sum.LastActivity,
		})
	}
	ranked := leaderboard.Sort(entries)

	rank := make(map[string]int, len(ranked))
	for i, e := range ranked {
		rank[e.UserID] = i + 1
	}
	return badgeStandings{ranked: ranked, rank: rank}, nil
}

func (s *BadgeService) evaluate(ctx context.Context, userID string, standings badgeStandings) ([]badge.Badge, error) {
	entries, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	now := s.now()
	streak, totalCheckins := s.checkins.ActiveStreak(entries, now)
	input := badge.Input{
		TotalPoints:   points.Total(entries),
		TotalCheckins: totalCheckins,
		ActiveStreak:  streak,
		RecentPoints:  points.SumSince(entries, now.Add(-s.thresholds.RisingStarWindow)),
		Rank:          standings.rank[userID],
		RankedUsers:   len(standings.ranked),
	}

	held, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	fresh := badge.NewTypes(held, badge.Evaluate(input, s.thresholds))
	if len(fresh) == 0 {
		return []badge.Badge{}, nil
	}

	candidates := make([]badge.Badge, 0, len(fresh))
	for _, typ := range fresh {
		badgeID, err := s.idGen.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate badge id: %w", err)
		}
		candidates = append(candidates, badge.Badge{
			ID:       badgeID,
			UserID:   userID,
			Type:     typ,
			EarnedAt: now.UTC(),
			Metadata: input.Snapshot(),
		})
	}

	inserted, err := s.repo.Insert(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("insert badges: %w", err)
	}
	for _, b := range inserted {
		s.metrics.BadgeAwarded(string(b.Type))
		s.logger.InfoContext(ctx, "badge earned", "user_id", userID, "badge_type", b.Type)
	}
	return inserted, nil
}
