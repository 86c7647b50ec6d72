package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/riskibarqy/fan-identity/internal/domain/profile"
)

type ProfileRepository struct {
	mu     sync.RWMutex
	byUser map[string]profile.Profile
}

func NewProfileRepository(profiles []profile.Profile) *ProfileRepository {
	byUser := make(map[string]profile.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}
	return &ProfileRepository{byUser: byUser}
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[userID]
	return p, ok, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byUser[p.UserID] = p
	return nil
}

func (r *ProfileRepository) List(_ context.Context) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.Profile, 0, len(r.byUser))
	for _, p := range r.byUser {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b profile.Profile) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return out, nil
}
