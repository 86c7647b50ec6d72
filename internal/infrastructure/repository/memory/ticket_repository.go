package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
)

type TicketRepository struct {
	mu     sync.RWMutex
	items  map[string]ticket.Ticket
	orders []string
}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{items: make(map[string]ticket.Ticket)}
}

func (r *TicketRepository) Create(_ context.Context, t ticket.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[t.ID]; exists {
		return fmt.Errorf("ticket %s already exists", t.ID)
	}
	for _, existing := range r.items {
		if existing.FileHash == t.FileHash {
			return fmt.Errorf("%w: hash %s", ticket.ErrDuplicate, t.FileHash)
		}
	}
	r.items[t.ID] = t
	r.orders = append(r.orders, t.ID)
	return nil
}

func (r *TicketRepository) Transition(_ context.Context, t ticket.Ticket, from ticket.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[t.ID]
	if !exists {
		return fmt.Errorf("ticket %s not found", t.ID)
	}
	if current.Status != from {
		return fmt.Errorf("%w: ticket %s is %s", ticket.ErrStatusChanged, t.ID, current.Status)
	}
	r.items[t.ID] = t
	return nil
}

func (r *TicketRepository) GetByID(_ context.Context, ticketID string) (ticket.Ticket, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[ticketID]
	return t, ok, nil
}

func (r *TicketRepository) GetByHash(_ context.Context, fileHash string) (ticket.Ticket, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if t.FileHash == fileHash {
			return t, true, nil
		}
	}
	return ticket.Ticket{}, false, nil
}

func (r *TicketRepository) ListByUser(_ context.Context, userID string) ([]ticket.Ticket, error) {
	return r.filter(func(t ticket.Ticket) bool { return t.UserID == userID }), nil
}

func (r *TicketRepository) List(_ context.Context, status ticket.Status) ([]ticket.Ticket, error) {
	return r.filter(func(t ticket.Ticket) bool { return status == "" || t.Status == status }), nil
}

// filter returns matches newest first.
func (r *TicketRepository) filter(keep func(ticket.Ticket) bool) []ticket.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ticket.Ticket, 0)
	for _, id := range slices.Backward(r.orders) {
		if t := r.items[id]; keep(t) {
			out = append(out, t)
		}
	}
	return out
}
