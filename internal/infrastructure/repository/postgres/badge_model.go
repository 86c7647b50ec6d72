package postgres

import "time"

type badgeTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	BadgeType string    `db:"badge_type"`
	Metadata  []byte    `db:"metadata"`
	EarnedAt  time.Time `db:"earned_at"`
}

type badgeCountRowModel struct {
	UserID string `db:"user_id"`
	Count  int    `db:"badge_count"`
}
