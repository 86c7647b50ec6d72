package waitlist

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Signup struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Forwarded    bool
	ForwardError string
	CreatedAt    time.Time
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid email: %w", err)
	}
	return strings.ToLower(addr.Address), nil
}

type Repository interface {
	Create(ctx context.Context, s Signup) error
	GetByEmail(ctx context.Context, email string) (Signup, bool, error)
	MarkForwarded(ctx context.Context, id string, forwardErr string) error
}

// Forwarder delivers a signup to the external CTA endpoint.
type Forwarder interface {
	Forward(ctx context.Context, s Signup) error
}
