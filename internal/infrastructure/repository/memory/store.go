package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
)

// Store bundles every in-memory repository.
type Store struct {
	Tags        *TagRepository
	UserTags    *UserTagRepository
	Points      *PointsRepository
	Badges      *BadgeRepository
	Markets     *MarketRepository
	Predictions *PredictionRepository
	Tickets     *TicketRepository
	Profiles    *ProfileRepository
	Waitlist    *WaitlistRepository
}

func NewStore(seed Seed) (*Store, error) {
	if err := tag.ValidateCatalog(seed.Tags); err != nil {
		return nil, fmt.Errorf("validate tag catalog: %w", err)
	}

	store := &Store{
		Tags:        NewTagRepository(seed.Tags),
		UserTags:    NewUserTagRepository(),
		Points:      NewPointsRepository(),
		Badges:      NewBadgeRepository(),
		Markets:     NewMarketRepository(seed.Markets),
		Predictions: NewPredictionRepository(),
		Tickets:     NewTicketRepository(),
		Profiles:    NewProfileRepository(seed.Profiles),
		Waitlist:    NewWaitlistRepository(),
	}

	ctx := context.Background()
	for _, e := range seed.Ledger {
		if err := store.Points.Append(ctx, e); err != nil {
			return nil, fmt.Errorf("seed ledger: %w", err)
		}
	}

	byUser := make(map[string][]tag.UserTag)
	for _, ut := range seed.UserTags {
		byUser[ut.UserID] = append(byUser[ut.UserID], ut)
	}
	for userID, items := range byUser {
		if err := store.UserTags.ReplaceForUser(ctx, userID, items); err != nil {
			return nil, fmt.Errorf("seed user tags: %w", err)
		}
	}
	return store, nil
}

var (
	_ tag.Repository              = (*TagRepository)(nil)
	_ tag.UserTagRepository       = (*UserTagRepository)(nil)
	_ points.Repository           = (*PointsRepository)(nil)
	_ badge.Repository            = (*BadgeRepository)(nil)
	_ prediction.MarketRepository = (*MarketRepository)(nil)
	_ prediction.Repository       = (*PredictionRepository)(nil)
	_ ticket.Repository           = (*TicketRepository)(nil)
	_ profile.Repository          = (*ProfileRepository)(nil)
	_ waitlist.Repository         = (*WaitlistRepository)(nil)
)
