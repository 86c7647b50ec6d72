package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/fan-identity/internal/domain/tag"
)

type TagRepository struct {
	mu     sync.RWMutex
	items  map[string]tag.Tag
	orders []string
}

func NewTagRepository(tags []tag.Tag) *TagRepository {
	items := make(map[string]tag.Tag, len(tags))
	orders := make([]string, 0, len(tags))

	for _, t := range tags {
		items[t.ID] = t
		orders = append(orders, t.ID)
	}

	return &TagRepository{
		items:  items,
		orders: orders,
	}
}

func (r *TagRepository) List(_ context.Context) ([]tag.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tag.Tag, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *TagRepository) GetByID(_ context.Context, tagID string) (tag.Tag, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[tagID]
	if !ok {
		return tag.Tag{}, false, nil
	}

	return t, true, nil
}

type UserTagRepository struct {
	mu    sync.RWMutex
	items map[string][]tag.UserTag
}

func NewUserTagRepository() *UserTagRepository {
	return &UserTagRepository{items: make(map[string][]tag.UserTag)}
}

func (r *UserTagRepository) ListByUser(_ context.Context, userID string) ([]tag.UserTag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.items[userID]), nil
}

func (r *UserTagRepository) ReplaceForUser(_ context.Context, userID string, tags []tag.UserTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(tags) == 0 {
		delete(r.items, userID)
		return nil
	}
	r.items[userID] = slices.Clone(tags)
	return nil
}

func (r *UserTagRepository) ListAll(_ context.Context) ([]tag.UserTag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.items))
	for userID := range r.items {
		users = append(users, userID)
	}
	slices.Sort(users)

	out := make([]tag.UserTag, 0)
	for _, userID := range users {
		out = append(out, r.items[userID]...)
	}
	return out, nil
}
