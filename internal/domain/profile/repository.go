package profile

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Profile, bool, error)
	Upsert(ctx context.Context, p Profile) error
	List(ctx context.Context) ([]Profile, error)
}
