package subscriber

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/platform/eventbus"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type leaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

type badgeEvaluator interface {
	EvaluateUser(ctx context.Context, userID string) ([]badge.Badge, error)
}

// PointsAwarded refreshes read models derived from the ledger.
type PointsAwarded struct {
	leaderboard leaderboardInvalidator
	badges      badgeEvaluator
	logger      *logging.Logger
}

func NewPointsAwarded(leaderboard leaderboardInvalidator, badges badgeEvaluator, logger *logging.Logger) *PointsAwarded {
	if logger == nil {
		logger = logging.Default()
	}
	return &PointsAwarded{
		leaderboard: leaderboard,
		badges:      badges,
		logger:      logger,
	}
}

func (h *PointsAwarded) Register(ctx context.Context, bus *eventbus.Bus) error {
	return bus.Subscribe(ctx, points.TopicAwarded, h.Handle)
}

func (h *PointsAwarded) Handle(ctx context.Context, msg *message.Message) error {
	event, err := eventbus.Decode[points.AwardedEvent](msg)
	if err != nil {
		return err
	}

	if h.leaderboard != nil {
		h.leaderboard.Invalidate(ctx)
	}
	if h.badges == nil {
		return nil
	}

	granted, err := h.badges.EvaluateUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("evaluate badges for %s: %w", event.UserID, err)
	}
	if len(granted) > 0 && h.leaderboard != nil {
		h.leaderboard.Invalidate(ctx)
	}

	h.logger.DebugContext(ctx, "points awarded handled",
		"user_id", event.UserID,
		"entry_id", event.EntryID,
		"badges_granted", len(granted),
	)
	return nil
}
