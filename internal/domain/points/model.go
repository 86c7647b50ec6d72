package points

import (
	"fmt"
	"time"
)

// ActionType identifies what earned a ledger entry.
type ActionType string

const (
	ActionDailyCheckin    ActionType = "daily_checkin"
	ActionTicketUpload    ActionType = "ticket_upload"
	ActionPrediction      ActionType = "prediction"
	ActionAdminAdjustment ActionType = "admin_adjustment"
)

var AllActionTypes = map[ActionType]struct{}{
	ActionDailyCheckin:    {},
	ActionTicketUpload:    {},
	ActionPrediction:      {},
	ActionAdminAdjustment: {},
}

func ParseActionType(raw string) (ActionType, bool) {
	a := ActionType(raw)
	_, ok := AllActionTypes[a]
	return a, ok
}

// Metadata is the per-action payload attached to an entry. Each action type
// has exactly one variant.
type Metadata interface {
	ActionType() ActionType
}

type CheckinMetadata struct {
	Date     string
	TeamType string
}

func (CheckinMetadata) ActionType() ActionType { return ActionDailyCheckin }

type TicketMetadata struct {
	TicketID     string
	AutoApproved bool
}

func (TicketMetadata) ActionType() ActionType { return ActionTicketUpload }

type PredictionMetadata struct {
	MarketID     string
	PredictionID string
}

func (PredictionMetadata) ActionType() ActionType { return ActionPrediction }

type AdjustmentMetadata struct {
	Reason  string
	AdminID string
}

func (AdjustmentMetadata) ActionType() ActionType { return ActionAdminAdjustment }

// Entry is one immutable ledger row.
type Entry struct {
	ID         string
	UserID     string
	ActionType ActionType
	Points     int64
	Metadata   Metadata
	CreatedAt  time.Time
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, ok := AllActionTypes[e.ActionType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, e.ActionType)
	}
	if e.Points < 0 {
		return fmt.Errorf("%w: %d", ErrNegativePoints, e.Points)
	}
	if e.Metadata != nil && e.Metadata.ActionType() != e.ActionType {
		return fmt.Errorf("%w: %s entry carries %s metadata", ErrMetadataMismatch, e.ActionType, e.Metadata.ActionType())
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("entry created_at is required")
	}
	return nil
}

// Summary is the per-user aggregate used for ranking and admin views.
type Summary struct {
	UserID       string
	TotalPoints  int64
	EntryCount   int
	LastActivity *time.Time
}
