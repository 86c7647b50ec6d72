package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
)

type MarketRepository struct {
	mu     sync.RWMutex
	items  map[string]prediction.Market
	orders []string
}

func NewMarketRepository(markets []prediction.Market) *MarketRepository {
	items := make(map[string]prediction.Market, len(markets))
	orders := make([]string, 0, len(markets))
	for _, m := range markets {
		items[m.ID] = m
		orders = append(orders, m.ID)
	}

	return &MarketRepository{items: items, orders: orders}
}

func (r *MarketRepository) List(_ context.Context, filter prediction.MarketFilter) ([]prediction.Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Market, 0, len(r.orders))
	for _, id := range r.orders {
		if m := r.items[id]; filter.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MarketRepository) GetByID(_ context.Context, marketID string) (prediction.Market, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[marketID]
	return m, ok, nil
}

func (r *MarketRepository) MarkResolved(_ context.Context, marketID string, winningOutcome int, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[marketID]
	if !ok {
		return fmt.Errorf("market %s not found", marketID)
	}
	m.Status = prediction.StatusResolved
	m.WinningOutcome = &winningOutcome
	m.ResolvedAt = &resolvedAt
	m.UpdatedAt = resolvedAt
	r.items[marketID] = m
	return nil
}

type PredictionRepository struct {
	mu    sync.RWMutex
	items []prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{}
}

func (r *PredictionRepository) Create(_ context.Context, p prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.UserID == p.UserID && existing.MarketID == p.MarketID {
			return fmt.Errorf("prediction for user %s market %s already exists", p.UserID, p.MarketID)
		}
	}
	r.items = append(r.items, p)
	return nil
}

func (r *PredictionRepository) Delete(_ context.Context, predictionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = slices.DeleteFunc(r.items, func(p prediction.Prediction) bool {
		return p.ID == predictionID
	})
	return nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b prediction.Prediction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *PredictionRepository) GetByUserAndMarket(_ context.Context, userID, marketID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.UserID == userID && p.MarketID == marketID {
			return p, true, nil
		}
	}
	return prediction.Prediction{}, false, nil
}

func (r *PredictionRepository) SettleMarket(_ context.Context, marketID string, winningOutcome int, updatedAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settled := 0
	for i, p := range r.items {
		if p.MarketID != marketID {
			continue
		}
		won := prediction.IsWinning(p, winningOutcome)
		r.items[i].IsWinningPrediction = &won
		r.items[i].UpdatedAt = updatedAt
		settled++
	}
	return settled, nil
}
