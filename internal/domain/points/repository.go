package points

import "context"

// Repository is the append-only ledger store.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	Summaries(ctx context.Context) ([]Summary, error)
}
