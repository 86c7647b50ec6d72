package postgres

import (
	"database/sql"
	"time"
)

type tagTableModel struct {
	ID        string         `db:"id"`
	TagType   string         `db:"tag_type"`
	Name      string         `db:"name"`
	ParentID  sql.NullString `db:"parent_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// userTagRowModel is a user_tags row joined with its tag.
type userTagRowModel struct {
	UserID       string         `db:"user_id"`
	TagID        string         `db:"tag_id"`
	CreatedAt    time.Time      `db:"created_at"`
	TagType      string         `db:"tag_type"`
	TagName      string         `db:"tag_name"`
	TagParentID  sql.NullString `db:"tag_parent_id"`
	TagCreatedAt time.Time      `db:"tag_created_at"`
}
