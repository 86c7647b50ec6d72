package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

const userTagJoin = "user_tags ut JOIN tags t ON t.id = ut.tag_id"

var userTagColumns = []string{
	"ut.user_id",
	"ut.tag_id",
	"ut.created_at",
	"t.tag_type",
	"t.name AS tag_name",
	"t.parent_id AS tag_parent_id",
	"t.created_at AS tag_created_at",
}

type TagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context) ([]tag.Tag, error) {
	query, args, err := qb.Select("*").From("tags").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tags query: %w", err)
	}

	var rows []tagTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}

	out := make([]tag.Tag, 0, len(rows))
	for _, row := range rows {
		out = append(out, tagFromRow(row))
	}
	return out, nil
}

func (r *TagRepository) GetByID(ctx context.Context, tagID string) (tag.Tag, bool, error) {
	query, args, err := qb.Select("*").From("tags").Where(qb.Eq("id", tagID)).ToSQL()
	if err != nil {
		return tag.Tag{}, false, fmt.Errorf("build get tag query: %w", err)
	}

	var row tagTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tag.Tag{}, false, nil
		}
		return tag.Tag{}, false, fmt.Errorf("get tag %s: %w", tagID, err)
	}
	return tagFromRow(row), true, nil
}

// Seed inserts the catalog, leaving existing ids alone.
func (r *TagRepository) Seed(ctx context.Context, catalog []tag.Tag) error {
	if len(catalog) == 0 {
		return nil
	}

	insert := qb.InsertInto("tags").Columns("id", "tag_type", "name", "parent_id", "created_at")
	for _, t := range catalog {
		insert.Values(t.ID, string(t.Type), t.Name, nullString(t.ParentID), t.CreatedAt)
	}
	query, args, err := insert.Suffix("ON CONFLICT (id) DO NOTHING").ToSQL()
	if err != nil {
		return fmt.Errorf("build seed tags query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	return nil
}

type UserTagRepository struct {
	db *sqlx.DB
}

func NewUserTagRepository(db *sqlx.DB) *UserTagRepository {
	return &UserTagRepository{db: db}
}

func (r *UserTagRepository) ListByUser(ctx context.Context, userID string) ([]tag.UserTag, error) {
	query, args, err := qb.Select(userTagColumns...).From(userTagJoin).
		Where(qb.Eq("ut.user_id", userID)).
		OrderBy("ut.created_at", "ut.tag_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select user tags query: %w", err)
	}
	return r.selectUserTags(ctx, query, args)
}

func (r *UserTagRepository) ListAll(ctx context.Context) ([]tag.UserTag, error) {
	query, args, err := qb.Select(userTagColumns...).From(userTagJoin).
		OrderBy("ut.user_id", "ut.created_at", "ut.tag_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select all user tags query: %w", err)
	}
	return r.selectUserTags(ctx, query, args)
}

func (r *UserTagRepository) ReplaceForUser(ctx context.Context, userID string, tags []tag.UserTag) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace user tags: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("user_tags").Where(qb.Eq("user_id", userID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user tags query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete user tags: %w", err)
	}

	if len(tags) > 0 {
		insert := qb.InsertInto("user_tags").Columns("user_id", "tag_id", "created_at")
		for _, ut := range tags {
			insert.Values(userID, ut.TagID, ut.CreatedAt)
		}
		insertQuery, insertArgs, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert user tags query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert user tags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace user tags tx: %w", err)
	}
	return nil
}

func (r *UserTagRepository) selectUserTags(ctx context.Context, query string, args []any) ([]tag.UserTag, error) {
	var rows []userTagRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select user tags: %w", err)
	}

	out := make([]tag.UserTag, 0, len(rows))
	for _, row := range rows {
		out = append(out, tag.UserTag{
			UserID:    row.UserID,
			TagID:     row.TagID,
			CreatedAt: row.CreatedAt,
			Tag: tagFromRow(tagTableModel{
				ID:        row.TagID,
				TagType:   row.TagType,
				Name:      row.TagName,
				ParentID:  row.TagParentID,
				CreatedAt: row.TagCreatedAt,
			}),
		})
	}
	return out, nil
}

func tagFromRow(row tagTableModel) tag.Tag {
	return tag.Tag{
		ID:        row.ID,
		Type:      tag.Type(row.TagType),
		Name:      row.Name,
		ParentID:  row.ParentID.String,
		CreatedAt: row.CreatedAt,
	}
}
