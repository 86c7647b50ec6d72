package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

const checkinKeyTTL = 48 * time.Hour

type CheckinInput struct {
	UserID string
	// TeamType only labels the ledger entry.
	TeamType string
}

type CheckinResult struct {
	Status        checkin.Status
	Awarded       bool
	PointsAwarded int64
	Entry         *points.Entry
}

type CheckinService struct {
	points  *PointsService
	idem    IdempotencyStore
	policy  checkin.Policy
	metrics *metrics.Registry
	logger  *logging.Logger
	now     func() time.Time
}

func NewCheckinService(
	pointsService *PointsService,
	idem IdempotencyStore,
	policy checkin.Policy,
	metricsRegistry *metrics.Registry,
	logger *logging.Logger,
) *CheckinService {
	if logger == nil {
		logger = logging.Default()
	}
	if policy.RewardPoints <= 0 {
		policy.RewardPoints = checkin.DefaultPolicy().RewardPoints
	}

	return &CheckinService{
		points:  pointsService,
		idem:    idem,
		policy:  policy,
		metrics: metricsRegistry,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *CheckinService) Policy() checkin.Policy {
	return s.policy
}

func (s *CheckinService) Status(ctx context.Context, userID string) (checkin.Status, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckinService.Status")
	defer span.End()

	history, err := s.history(ctx, userID)
	if err != nil {
		return checkin.Status{}, err
	}
	return checkin.Derive(history, s.now(), s.policy), nil
}

// PerformCheckin awards the daily reward once per calendar day. Repeat calls
// on the same day return the current status with Awarded=false.
func (s *CheckinService) PerformCheckin(ctx context.Context, input CheckinInput) (CheckinResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckinService.PerformCheckin")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamType = strings.TrimSpace(input.TeamType)
	if input.UserID == "" {
		return CheckinResult{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	now := s.now()
	history, err := s.history(ctx, input.UserID)
	if err != nil {
		return CheckinResult{}, err
	}
	status := checkin.Derive(history, now, s.policy)
	if !status.CanCheckin {
		s.metrics.Checkin("duplicate")
		return CheckinResult{Status: status}, nil
	}

	day := checkin.DayKey(now, s.policy.Location)
	key := "checkin:" + input.UserID + ":" + day
	acquired, err := s.idem.Acquire(ctx, key, checkinKeyTTL)
	if err != nil {
		return CheckinResult{}, fmt.Errorf("%w: acquire checkin key: %v", ErrDependencyUnavailable, err)
	}
	if !acquired {
		s.metrics.Checkin("duplicate")
		s.logger.InfoContext(ctx, "checkin already in progress", "user_id", input.UserID, "day", day)
		return CheckinResult{Status: status}, nil
	}

	reward := s.policy.RewardPoints

	entry, err := s.points.AddPoints(ctx, AddPointsInput{
		UserID:     input.UserID,
		ActionType: points.ActionDailyCheckin,
		Points:     reward,
		Metadata: points.CheckinMetadata{
			Date:     day,
			TeamType: input.TeamType,
		},
	})
	if err != nil {
		s.release(ctx, key)
		return CheckinResult{}, fmt.Errorf("award checkin points: %w", err)
	}
	s.metrics.Checkin("awarded")

	nextStatus := checkin.Derive(append(history, entry.CreatedAt), now, s.policy)
	return CheckinResult{
		Status:        nextStatus,
		Awarded:       true,
		PointsAwarded: reward,
		Entry:         &entry,
	}, nil
}

// ActiveStreak is the streak still alive at now.
func (s *CheckinService) ActiveStreak(entries []points.Entry, now time.Time) (streak, total int) {
	status := checkin.Derive(checkinTimes(entries), now, s.policy)
	return status.Streak, status.TotalCheckins
}

func (s *CheckinService) history(ctx context.Context, userID string) ([]time.Time, error) {
	entries, err := s.points.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	return checkinTimes(entries), nil
}

func (s *CheckinService) release(ctx context.Context, key string) {
	if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.WarnContext(ctx, "release checkin key failed", "key", key, "error", err)
	}
}

func checkinTimes(entries []points.Entry) []time.Time {
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		if e.ActionType == points.ActionDailyCheckin {
			out = append(out, e.CreatedAt)
		}
	}
	return out
}
