package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

const defaultRecentLimit = 20

type AddPointsInput struct {
	UserID     string
	ActionType points.ActionType
	Points     int64
	Metadata   points.Metadata
}

type PointsSummary struct {
	TotalPoints int64
	Recent      []points.Entry
}

type PointsService struct {
	repo      points.Repository
	idGen     id.Generator
	publisher EventPublisher
	metrics   *metrics.Registry
	logger    *logging.Logger
	now       func() time.Time
}

func NewPointsService(
	repo points.Repository,
	idGen id.Generator,
	publisher EventPublisher,
	metricsRegistry *metrics.Registry,
	logger *logging.Logger,
) *PointsService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PointsService{
		repo:      repo,
		idGen:     idGen,
		publisher: publisher,
		metrics:   metricsRegistry,
		logger:    logger,
		now:       time.Now,
	}
}

// AddPoints appends a ledger entry and announces it on the event bus.
func (s *PointsService) AddPoints(ctx context.Context, input AddPointsInput) (points.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.AddPoints",
		attribute.String("action_type", string(input.ActionType)),
	)
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return points.Entry{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return points.Entry{}, fmt.Errorf("generate entry id: %w", err)
	}

	entry := points.Entry{
		ID:         entryID,
		UserID:     input.UserID,
		ActionType: input.ActionType,
		Points:     input.Points,
		Metadata:   input.Metadata,
		CreatedAt:  s.now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return points.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return points.Entry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	s.metrics.PointsAwarded(string(entry.ActionType), entry.Points)

	total, err := s.TotalPoints(ctx, entry.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "compute total after award failed", "user_id", entry.UserID, "error", err)
	}

	event := points.AwardedEvent{
		EntryID:     entry.ID,
		UserID:      entry.UserID,
		ActionType:  entry.ActionType,
		Points:      entry.Points,
		TotalPoints: total,
		CreatedAt:   entry.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, points.TopicAwarded, event); err != nil {
		s.logger.WarnContext(ctx, "publish points awarded failed",
			"user_id", entry.UserID,
			"entry_id", entry.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "points awarded",
		"user_id", entry.UserID,
		"action_type", entry.ActionType,
		"points", entry.Points,
		"total_points", total,
	)
	return entry, nil
}

func (s *PointsService) TotalPoints(ctx context.Context, userID string) (int64, error) {
	entries, err := s.Ledger(ctx, userID)
	if err != nil {
		return 0, err
	}
	return points.Total(entries), nil
}

// Ledger returns the user's full ledger in storage order.
func (s *PointsService) Ledger(ctx context.Context, userID string) ([]points.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

func (s *PointsService) ListRecent(ctx context.Context, userID string, limit int) ([]points.Entry, error) {
	entries, err := s.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return points.Recent(entries, limit), nil
}

func (s *PointsService) Summary(ctx context.Context, userID string, limit int) (PointsSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.Summary")
	defer span.End()

	entries, err := s.Ledger(ctx, userID)
	if err != nil {
		return PointsSummary{}, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return PointsSummary{
		TotalPoints: points.Total(entries),
		Recent:      points.Recent(entries, limit),
	}, nil
}

// Adjust records a manual admin_adjustment entry.
func (s *PointsService) Adjust(ctx context.Context, adminID, userID string, amount int64, reason string) (points.Entry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return points.Entry{}, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return points.Entry{}, fmt.Errorf("%w: points must be greater than zero", ErrInvalidInput)
	}

	return s.AddPoints(ctx, AddPointsInput{
		UserID:     userID,
		ActionType: points.ActionAdminAdjustment,
		Points:     amount,
		Metadata:   points.AdjustmentMetadata{Reason: reason, AdminID: adminID},
	})
}
