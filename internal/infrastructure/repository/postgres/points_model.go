package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
)

type pointsLedgerTableModel struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	ActionType string    `db:"action_type"`
	Points     int64     `db:"points"`
	Metadata   []byte    `db:"metadata"`
	CreatedAt  time.Time `db:"created_at"`
}

type pointsSummaryRowModel struct {
	UserID       string       `db:"user_id"`
	TotalPoints  int64        `db:"total_points"`
	EntryCount   int          `db:"entry_count"`
	LastActivity sql.NullTime `db:"last_activity"`
}

// ledgerMetadata is the JSONB shape stored in points_ledger.metadata. Only
// the fields of the entry's action type are set.
type ledgerMetadata struct {
	Date         string `json:"date,omitempty"`
	TeamType     string `json:"team_type,omitempty"`
	TicketID     string `json:"ticket_id,omitempty"`
	AutoApproved bool   `json:"auto_approved,omitempty"`
	MarketID     string `json:"market_id,omitempty"`
	PredictionID string `json:"prediction_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
	AdminID      string `json:"admin_id,omitempty"`
}

func encodeLedgerMetadata(meta points.Metadata) ([]byte, error) {
	var out ledgerMetadata
	switch m := meta.(type) {
	case nil:
		return []byte("{}"), nil
	case points.CheckinMetadata:
		out = ledgerMetadata{Date: m.Date, TeamType: m.TeamType}
	case points.TicketMetadata:
		out = ledgerMetadata{TicketID: m.TicketID, AutoApproved: m.AutoApproved}
	case points.PredictionMetadata:
		out = ledgerMetadata{MarketID: m.MarketID, PredictionID: m.PredictionID}
	case points.AdjustmentMetadata:
		out = ledgerMetadata{Reason: m.Reason, AdminID: m.AdminID}
	default:
		return nil, fmt.Errorf("unsupported ledger metadata %T", meta)
	}

	raw, err := sonic.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode ledger metadata: %w", err)
	}
	return raw, nil
}

func decodeLedgerMetadata(action points.ActionType, raw []byte) (points.Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var in ledgerMetadata
	if err := sonic.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode ledger metadata: %w", err)
	}

	switch action {
	case points.ActionDailyCheckin:
		return points.CheckinMetadata{Date: in.Date, TeamType: in.TeamType}, nil
	case points.ActionTicketUpload:
		return points.TicketMetadata{TicketID: in.TicketID, AutoApproved: in.AutoApproved}, nil
	case points.ActionPrediction:
		return points.PredictionMetadata{MarketID: in.MarketID, PredictionID: in.PredictionID}, nil
	case points.ActionAdminAdjustment:
		return points.AdjustmentMetadata{Reason: in.Reason, AdminID: in.AdminID}, nil
	default:
		return nil, fmt.Errorf("%w: %s", points.ErrUnknownAction, action)
	}
}
