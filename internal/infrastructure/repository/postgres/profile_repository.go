package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	query, args, err := qb.Select("*").From("profiles").Where(qb.Eq("user_id", userID)).ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile for user %s: %w", userID, err)
	}
	return profileFromRow(row), true, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p profile.Profile) error {
	query, args, err := qb.InsertInto("profiles").
		Columns("id", "user_id", "email", "display_name", "first_name", "last_name", "country", "wallet_address", "wallet_provider", "created_at", "updated_at").
		Values(p.ID, p.UserID, p.Email, p.DisplayName, p.FirstName, p.LastName, p.Country, nullString(p.WalletAddress), nullString(p.WalletProvider), p.CreatedAt, p.UpdatedAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
email = EXCLUDED.email,
display_name = EXCLUDED.display_name,
first_name = EXCLUDED.first_name,
last_name = EXCLUDED.last_name,
country = EXCLUDED.country,
wallet_address = EXCLUDED.wallet_address,
wallet_provider = EXCLUDED.wallet_provider,
updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile for user %s: %w", p.UserID, err)
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	query, args, err := qb.Select("*").From("profiles").OrderBy("user_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select profiles query: %w", err)
	}

	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}

	out := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, profileFromRow(row))
	}
	return out, nil
}

func profileFromRow(row profileTableModel) profile.Profile {
	return profile.Profile{
		ID:             row.ID,
		UserID:         row.UserID,
		Email:          row.Email,
		DisplayName:    row.DisplayName,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Country:        row.Country,
		WalletAddress:  row.WalletAddress.String,
		WalletProvider: row.WalletProvider.String,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
