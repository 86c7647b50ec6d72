package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/riskibarqy/fan-identity/internal/domain/points"
)

// PointsRepository is an append-only ledger keyed by user.
type PointsRepository struct {
	mu     sync.RWMutex
	byUser map[string][]points.Entry
	ids    map[string]struct{}
}

func NewPointsRepository() *PointsRepository {
	return &PointsRepository{
		byUser: make(map[string][]points.Entry),
		ids:    make(map[string]struct{}),
	}
}

func (r *PointsRepository) Append(_ context.Context, entry points.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[entry.ID]; exists {
		return fmt.Errorf("ledger entry %s already exists", entry.ID)
	}
	r.ids[entry.ID] = struct{}{}
	r.byUser[entry.UserID] = append(r.byUser[entry.UserID], entry)
	return nil
}

func (r *PointsRepository) ListByUser(_ context.Context, userID string) ([]points.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.byUser[userID]), nil
}

func (r *PointsRepository) Summaries(_ context.Context) ([]points.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]points.Summary, 0, len(r.byUser))
	for userID, entries := range r.byUser {
		out = append(out, points.Summarize(userID, entries))
	}
	slices.SortFunc(out, func(a, b points.Summary) int {
		switch {
		case a.UserID < b.UserID:
			return -1
		case a.UserID > b.UserID:
			return 1
		}
		return 0
	})
	return out, nil
}
