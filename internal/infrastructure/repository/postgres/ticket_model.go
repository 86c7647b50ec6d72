package postgres

import (
	"database/sql"
	"time"
)

type ticketTableModel struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	FileName        string         `db:"file_name"`
	FileURL         string         `db:"file_url"`
	FileHash        string         `db:"file_hash"`
	ContentType     string         `db:"content_type"`
	OCR             []byte         `db:"ocr"`
	Status          string         `db:"status"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	PointsAwarded   int64          `db:"points_awarded"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
