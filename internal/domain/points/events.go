package points

import "time"

const TopicAwarded = "points.awarded"

// AwardedEvent is published after an entry is appended.
type AwardedEvent struct {
	EntryID     string     `json:"entry_id"`
	UserID      string     `json:"user_id"`
	ActionType  ActionType `json:"action_type"`
	Points      int64      `json:"points"`
	TotalPoints int64      `json:"total_points"`
	CreatedAt   time.Time  `json:"created_at"`
}
