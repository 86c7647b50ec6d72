package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

// PointsRepository stores the ledger in points_ledger. Rows are never
// updated or deleted.
type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) Append(ctx context.Context, entry points.Entry) error {
	metadata, err := encodeLedgerMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto("points_ledger").
		Columns("id", "user_id", "action_type", "points", "metadata", "created_at").
		Values(entry.ID, entry.UserID, string(entry.ActionType), entry.Points, metadata, entry.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert ledger entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ledger entry %s: %w", entry.ID, err)
	}
	return nil
}

func (r *PointsRepository) ListByUser(ctx context.Context, userID string) ([]points.Entry, error) {
	query, args, err := qb.Select("*").From("points_ledger").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ledger query: %w", err)
	}

	var rows []pointsLedgerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ledger for user %s: %w", userID, err)
	}

	out := make([]points.Entry, 0, len(rows))
	for _, row := range rows {
		action := points.ActionType(row.ActionType)
		meta, err := decodeLedgerMetadata(action, row.Metadata)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", row.ID, err)
		}
		out = append(out, points.Entry{
			ID:         row.ID,
			UserID:     row.UserID,
			ActionType: action,
			Points:     row.Points,
			Metadata:   meta,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func (r *PointsRepository) Summaries(ctx context.Context) ([]points.Summary, error) {
	query, args, err := qb.Select(
		"user_id",
		"COALESCE(SUM(points), 0) AS total_points",
		"COUNT(1) AS entry_count",
		"MAX(created_at) AS last_activity",
	).From("points_ledger").
		GroupBy("user_id").
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ledger summaries query: %w", err)
	}

	var rows []pointsSummaryRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ledger summaries: %w", err)
	}

	out := make([]points.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, points.Summary{
			UserID:       row.UserID,
			TotalPoints:  row.TotalPoints,
			EntryCount:   row.EntryCount,
			LastActivity: timePtr(row.LastActivity),
		})
	}
	return out, nil
}
