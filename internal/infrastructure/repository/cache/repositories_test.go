package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/fan-identity/internal/platform/cache"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type countingTags struct {
	tag.Repository
	lists atomic.Int32
	gets  atomic.Int32
}

func (c *countingTags) List(ctx context.Context) ([]tag.Tag, error) {
	c.lists.Add(1)
	return c.Repository.List(ctx)
}

func (c *countingTags) GetByID(ctx context.Context, tagID string) (tag.Tag, bool, error) {
	c.gets.Add(1)
	return c.Repository.GetByID(ctx, tagID)
}

type countingMarkets struct {
	prediction.MarketRepository
	gets atomic.Int32
}

func (c *countingMarkets) GetByID(ctx context.Context, marketID string) (prediction.Market, bool, error) {
	c.gets.Add(1)
	return c.MarketRepository.GetByID(ctx, marketID)
}

func TestTagRepository_CachesCatalogAndMisses(t *testing.T) {
	t.Parallel()

	next := &countingTags{Repository: memory.NewTagRepository(tag.DefaultCatalog(testNow))}
	repo := NewTagRepository(next, basecache.NewStore(time.Minute))
	ctx := t.Context()

	for range 3 {
		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list tags: %v", err)
		}
		if len(items) != 9 {
			t.Fatalf("expected 9 tags, got %d", len(items))
		}
	}
	if got := next.lists.Load(); got != 1 {
		t.Fatalf("expected one underlying list, got %d", got)
	}

	for range 2 {
		if _, exists, err := repo.GetByID(ctx, "club-404"); err != nil || exists {
			t.Fatalf("expected cached miss, exists=%v err=%v", exists, err)
		}
	}
	if got := next.gets.Load(); got != 1 {
		t.Fatalf("expected misses to be cached, got %d lookups", got)
	}
}

func TestMarketRepository_ResolveDropsCachedMarket(t *testing.T) {
	t.Parallel()

	next := &countingMarkets{MarketRepository: memory.NewMarketRepository(memory.SeedMarkets(testNow))}
	repo := NewMarketRepository(next, basecache.NewStore(time.Minute))
	ctx := t.Context()

	before, exists, err := repo.GetByID(ctx, "market-1")
	if err != nil || !exists {
		t.Fatalf("get market: exists=%v err=%v", exists, err)
	}
	if before.Status != prediction.StatusActive {
		t.Fatalf("expected active market, got %s", before.Status)
	}

	if err := repo.MarkResolved(ctx, "market-1", prediction.OutcomeB, testNow); err != nil {
		t.Fatalf("resolve market: %v", err)
	}

	after, _, err := repo.GetByID(ctx, "market-1")
	if err != nil {
		t.Fatalf("get market after resolve: %v", err)
	}
	if after.Status != prediction.StatusResolved || after.WinningOutcome == nil || *after.WinningOutcome != prediction.OutcomeB {
		t.Fatalf("expected resolved market, got %+v", after)
	}
	if got := next.gets.Load(); got != 2 {
		t.Fatalf("expected reload after resolve, got %d lookups", got)
	}

	*after.WinningOutcome = prediction.OutcomeA
	again, _, _ := repo.GetByID(ctx, "market-1")
	if *again.WinningOutcome != prediction.OutcomeB {
		t.Fatalf("cached market was mutated through a returned copy")
	}
}

func TestProfileRepository_UpsertInvalidates(t *testing.T) {
	t.Parallel()

	repo := NewProfileRepository(memory.NewProfileRepository(nil), basecache.NewStore(time.Minute))
	ctx := t.Context()

	if _, exists, err := repo.GetByUserID(ctx, "user-9"); err != nil || exists {
		t.Fatalf("expected no profile, exists=%v err=%v", exists, err)
	}

	if err := repo.Upsert(ctx, profile.Profile{ID: "p-9", UserID: "user-9", DisplayName: "Nine", CreatedAt: testNow, UpdatedAt: testNow}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}

	got, exists, err := repo.GetByUserID(ctx, "user-9")
	if err != nil || !exists {
		t.Fatalf("expected profile after upsert, exists=%v err=%v", exists, err)
	}
	if got.DisplayName != "Nine" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}
