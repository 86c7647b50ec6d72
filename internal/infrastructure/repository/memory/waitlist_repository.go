package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
)

type WaitlistRepository struct {
	mu      sync.RWMutex
	items   map[string]waitlist.Signup
	byEmail map[string]string
}

func NewWaitlistRepository() *WaitlistRepository {
	return &WaitlistRepository{
		items:   make(map[string]waitlist.Signup),
		byEmail: make(map[string]string),
	}
}

func (r *WaitlistRepository) Create(_ context.Context, s waitlist.Signup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[s.Email]; exists {
		return fmt.Errorf("signup for %s already exists", s.Email)
	}
	r.items[s.ID] = s
	r.byEmail[s.Email] = s.ID
	return nil
}

func (r *WaitlistRepository) GetByEmail(_ context.Context, email string) (waitlist.Signup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return waitlist.Signup{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *WaitlistRepository) MarkForwarded(_ context.Context, id string, forwardErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok {
		return fmt.Errorf("signup %s not found", id)
	}
	s.Forwarded = forwardErr == ""
	s.ForwardError = forwardErr
	r.items[id] = s
	return nil
}
