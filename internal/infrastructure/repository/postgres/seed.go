package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the tag catalog and the demo markets into an empty
// database. It is a no-op once any tag exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM tags`); err != nil {
		return fmt.Errorf("count tags for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	catalog := tag.DefaultCatalog(now)
	if err := tag.ValidateCatalog(catalog); err != nil {
		return fmt.Errorf("validate seed catalog: %w", err)
	}
	if err := NewTagRepository(db).Seed(ctx, catalog); err != nil {
		return err
	}
	if err := NewMarketRepository(db).Upsert(ctx, memory.SeedMarkets(now)); err != nil {
		return err
	}
	return nil
}
