package ticket

import "context"

type Repository interface {
	Create(ctx context.Context, t Ticket) error
	// Transition stores t only while the stored ticket still has status from.
	// It returns ErrStatusChanged otherwise.
	Transition(ctx context.Context, t Ticket, from Status) error
	GetByID(ctx context.Context, ticketID string) (Ticket, bool, error)
	GetByHash(ctx context.Context, fileHash string) (Ticket, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Ticket, error)
	List(ctx context.Context, status Status) ([]Ticket, error)
}
