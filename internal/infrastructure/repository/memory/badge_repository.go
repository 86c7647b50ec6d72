package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
)

type BadgeRepository struct {
	mu     sync.RWMutex
	byUser map[string][]badge.Badge
}

func NewBadgeRepository() *BadgeRepository {
	return &BadgeRepository{byUser: make(map[string][]badge.Badge)}
}

func (r *BadgeRepository) ListByUser(_ context.Context, userID string) ([]badge.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.byUser[userID]), nil
}

func (r *BadgeRepository) Insert(_ context.Context, badges []badge.Badge) ([]badge.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := make([]badge.Badge, 0, len(badges))
	for _, b := range badges {
		held := r.byUser[b.UserID]
		if slices.ContainsFunc(held, func(existing badge.Badge) bool { return existing.Type == b.Type }) {
			continue
		}
		r.byUser[b.UserID] = append(held, b)
		inserted = append(inserted, b)
	}
	return inserted, nil
}

func (r *BadgeRepository) CountByUser(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(r.byUser))
	for userID, items := range r.byUser {
		out[userID] = len(items)
	}
	return out, nil
}
