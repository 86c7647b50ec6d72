package tag

import "context"

// Repository exposes the read-only tag catalog.
type Repository interface {
	List(ctx context.Context) ([]Tag, error)
	GetByID(ctx context.Context, tagID string) (Tag, bool, error)
}

// UserTagRepository persists a user's selected tags.
type UserTagRepository interface {
	ListByUser(ctx context.Context, userID string) ([]UserTag, error)
	// ReplaceForUser atomically swaps the user's whole selection.
	ReplaceForUser(ctx context.Context, userID string, tags []UserTag) error
	ListAll(ctx context.Context) ([]UserTag, error)
}
