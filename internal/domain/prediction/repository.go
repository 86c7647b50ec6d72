package prediction

import (
	"context"
	"time"
)

type MarketRepository interface {
	List(ctx context.Context, filter MarketFilter) ([]Market, error)
	GetByID(ctx context.Context, marketID string) (Market, bool, error)
	MarkResolved(ctx context.Context, marketID string, winningOutcome int, resolvedAt time.Time) error
}

type Repository interface {
	Create(ctx context.Context, p Prediction) error
	Delete(ctx context.Context, predictionID string) error
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	GetByUserAndMarket(ctx context.Context, userID, marketID string) (Prediction, bool, error)
	// SettleMarket sets IsWinningPrediction on every prediction of the market
	// and returns how many rows changed.
	SettleMarket(ctx context.Context, marketID string, winningOutcome int, updatedAt time.Time) (int, error)
}
