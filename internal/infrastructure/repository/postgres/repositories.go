package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
)

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

// Repositories groups every postgres-backed store sharing one pool.
type Repositories struct {
	Tags        *TagRepository
	UserTags    *UserTagRepository
	Ledger      *PointsRepository
	Badges      *BadgeRepository
	Markets     *MarketRepository
	Predictions *PredictionRepository
	Tickets     *TicketRepository
	Profiles    *ProfileRepository
	Waitlist    *WaitlistRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Tags:        NewTagRepository(db),
		UserTags:    NewUserTagRepository(db),
		Ledger:      NewPointsRepository(db),
		Badges:      NewBadgeRepository(db),
		Markets:     NewMarketRepository(db),
		Predictions: NewPredictionRepository(db),
		Tickets:     NewTicketRepository(db),
		Profiles:    NewProfileRepository(db),
		Waitlist:    NewWaitlistRepository(db),
	}
}
