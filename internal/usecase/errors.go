package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrStateConflict         = errors.New("state conflict")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
