package badge

import "context"

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Badge, error)
	// Insert adds badges, skipping any (user, type) pair already stored.
	// It returns the badges that were actually inserted.
	Insert(ctx context.Context, badges []Badge) ([]Badge, error)
	CountByUser(ctx context.Context) (map[string]int, error)
}
