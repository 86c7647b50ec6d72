package postgres

import (
	"database/sql"
	"time"
)

type profileTableModel struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Email          string         `db:"email"`
	DisplayName    string         `db:"display_name"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Country        string         `db:"country"`
	WalletAddress  sql.NullString `db:"wallet_address"`
	WalletProvider sql.NullString `db:"wallet_provider"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}
