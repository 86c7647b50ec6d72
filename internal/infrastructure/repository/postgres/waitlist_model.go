package postgres

import (
	"database/sql"
	"time"
)

type waitlistSignupTableModel struct {
	ID           string         `db:"id"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Email        string         `db:"email"`
	Forwarded    bool           `db:"forwarded"`
	ForwardError sql.NullString `db:"forward_error"`
	CreatedAt    time.Time      `db:"created_at"`
}
