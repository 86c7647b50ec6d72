package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

type BadgeRepository struct {
	db *sqlx.DB
}

func NewBadgeRepository(db *sqlx.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

func (r *BadgeRepository) ListByUser(ctx context.Context, userID string) ([]badge.Badge, error) {
	query, args, err := qb.Select("*").From("user_badges").
		Where(qb.Eq("user_id", userID)).
		OrderBy("earned_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select badges query: %w", err)
	}

	var rows []badgeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select badges for user %s: %w", userID, err)
	}

	out := make([]badge.Badge, 0, len(rows))
	for _, row := range rows {
		b, err := badgeFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Insert relies on the (user_id, badge_type) unique key; RETURNING only
// yields rows that were new.
func (r *BadgeRepository) Insert(ctx context.Context, badges []badge.Badge) ([]badge.Badge, error) {
	if len(badges) == 0 {
		return nil, nil
	}

	insert := qb.InsertInto("user_badges").Columns("id", "user_id", "badge_type", "metadata", "earned_at")
	for _, b := range badges {
		meta, err := sonic.Marshal(b.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode badge metadata: %w", err)
		}
		insert.Values(b.ID, b.UserID, string(b.Type), meta, b.EarnedAt)
	}
	query, args, err := insert.Suffix("ON CONFLICT (user_id, badge_type) DO NOTHING RETURNING id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert badges query: %w", err)
	}

	var inserted []string
	if err := r.db.SelectContext(ctx, &inserted, query, args...); err != nil {
		return nil, fmt.Errorf("insert badges: %w", err)
	}

	ids := make(map[string]struct{}, len(inserted))
	for _, id := range inserted {
		ids[id] = struct{}{}
	}
	out := make([]badge.Badge, 0, len(inserted))
	for _, b := range badges {
		if _, ok := ids[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BadgeRepository) CountByUser(ctx context.Context) (map[string]int, error) {
	query, args, err := qb.Select("user_id", "COUNT(1) AS badge_count").From("user_badges").
		GroupBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count badges query: %w", err)
	}

	var rows []badgeCountRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Count
	}
	return out, nil
}

func badgeFromRow(row badgeTableModel) (badge.Badge, error) {
	var snapshot badge.Snapshot
	if len(row.Metadata) > 0 {
		if err := sonic.Unmarshal(row.Metadata, &snapshot); err != nil {
			return badge.Badge{}, fmt.Errorf("decode badge %s metadata: %w", row.ID, err)
		}
	}
	return badge.Badge{
		ID:       row.ID,
		UserID:   row.UserID,
		Type:     badge.Type(row.BadgeType),
		EarnedAt: row.EarnedAt,
		Metadata: snapshot,
	}, nil
}
