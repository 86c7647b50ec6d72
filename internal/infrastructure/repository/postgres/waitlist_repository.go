package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

type WaitlistRepository struct {
	db *sqlx.DB
}

func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) Create(ctx context.Context, s waitlist.Signup) error {
	query, args, err := qb.InsertInto("waitlist_signups").
		Columns("id", "first_name", "last_name", "email", "forwarded", "created_at").
		Values(s.ID, s.FirstName, s.LastName, s.Email, s.Forwarded, s.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert waitlist signup query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("signup for %s already exists: %w", s.Email, err)
		}
		return fmt.Errorf("insert waitlist signup: %w", err)
	}
	return nil
}

func (r *WaitlistRepository) GetByEmail(ctx context.Context, email string) (waitlist.Signup, bool, error) {
	query, args, err := qb.Select("*").From("waitlist_signups").Where(qb.Eq("email", email)).ToSQL()
	if err != nil {
		return waitlist.Signup{}, false, fmt.Errorf("build get waitlist signup query: %w", err)
	}

	var row waitlistSignupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return waitlist.Signup{}, false, nil
		}
		return waitlist.Signup{}, false, fmt.Errorf("get waitlist signup: %w", err)
	}

	return waitlist.Signup{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		Forwarded:    row.Forwarded,
		ForwardError: row.ForwardError.String,
		CreatedAt:    row.CreatedAt,
	}, true, nil
}

func (r *WaitlistRepository) MarkForwarded(ctx context.Context, id string, forwardErr string) error {
	query, args, err := qb.Update("waitlist_signups").
		Set("forwarded", forwardErr == "").
		Set("forward_error", nullString(forwardErr)).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark waitlist forwarded query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark waitlist signup %s forwarded: %w", id, err)
	}
	return nil
}
