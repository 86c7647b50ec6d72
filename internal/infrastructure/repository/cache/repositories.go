package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	basecache "github.com/riskibarqy/fan-identity/internal/platform/cache"
)

const (
	tagKeyPrefix     = "tag:"
	marketKeyPrefix  = "market:"
	profileKeyPrefix = "profile:"
)

// TagRepository caches the catalog. Tags are never mutated at runtime so
// entries only leave the store on TTL expiry.
type TagRepository struct {
	next  tag.Repository
	cache *basecache.Store
}

func NewTagRepository(next tag.Repository, cache *basecache.Store) *TagRepository {
	return &TagRepository{next: next, cache: cache}
}

func (r *TagRepository) List(ctx context.Context) ([]tag.Tag, error) {
	items, err := basecache.Load(ctx, r.cache, tagKeyPrefix+"list", func(ctx context.Context) ([]tag.Tag, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]tag.Tag(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]tag.Tag(nil), items...), nil
}

func (r *TagRepository) GetByID(ctx context.Context, tagID string) (tag.Tag, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, tagKeyPrefix+"id:"+tagID, func(ctx context.Context) (cachedTagByID, error) {
		item, exists, err := r.next.GetByID(ctx, tagID)
		if err != nil {
			return cachedTagByID{}, err
		}
		return cachedTagByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return tag.Tag{}, false, err
	}
	return cached.value, cached.exists, nil
}

type cachedTagByID struct {
	value  tag.Tag
	exists bool
}

// MarketRepository caches market reads and drops every market key when a
// market is resolved.
type MarketRepository struct {
	next  prediction.MarketRepository
	cache *basecache.Store
}

func NewMarketRepository(next prediction.MarketRepository, cache *basecache.Store) *MarketRepository {
	return &MarketRepository{next: next, cache: cache}
}

func (r *MarketRepository) List(ctx context.Context, filter prediction.MarketFilter) ([]prediction.Market, error) {
	key := marketKeyPrefix + "list:" + strings.Join([]string{filter.SportID, filter.LeagueID, filter.ClubID}, "|")
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]prediction.Market, error) {
		items, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return cloneMarkets(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneMarkets(items), nil
}

func (r *MarketRepository) GetByID(ctx context.Context, marketID string) (prediction.Market, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, marketKeyPrefix+"id:"+marketID, func(ctx context.Context) (cachedMarketByID, error) {
		item, exists, err := r.next.GetByID(ctx, marketID)
		if err != nil {
			return cachedMarketByID{}, err
		}
		return cachedMarketByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return prediction.Market{}, false, err
	}
	return cloneMarket(cached.value), cached.exists, nil
}

func (r *MarketRepository) MarkResolved(ctx context.Context, marketID string, winningOutcome int, resolvedAt time.Time) error {
	if err := r.next.MarkResolved(ctx, marketID, winningOutcome, resolvedAt); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, marketKeyPrefix)
	return nil
}

type cachedMarketByID struct {
	value  prediction.Market
	exists bool
}

func cloneMarkets(items []prediction.Market) []prediction.Market {
	out := make([]prediction.Market, 0, len(items))
	for _, m := range items {
		out = append(out, cloneMarket(m))
	}
	return out
}

// cloneMarket copies the pointer fields so callers cannot mutate a cached value.
func cloneMarket(m prediction.Market) prediction.Market {
	if m.ResolvedAt != nil {
		resolvedAt := *m.ResolvedAt
		m.ResolvedAt = &resolvedAt
	}
	if m.WinningOutcome != nil {
		outcome := *m.WinningOutcome
		m.WinningOutcome = &outcome
	}
	return m
}

type ProfileRepository struct {
	next  profile.Repository
	cache *basecache.Store
}

func NewProfileRepository(next profile.Repository, cache *basecache.Store) *ProfileRepository {
	return &ProfileRepository{next: next, cache: cache}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, profileKeyPrefix+userID, func(ctx context.Context) (cachedProfile, error) {
		item, exists, err := r.next.GetByUserID(ctx, userID)
		if err != nil {
			return cachedProfile{}, err
		}
		return cachedProfile{value: item, exists: exists}, nil
	})
	if err != nil {
		return profile.Profile{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p profile.Profile) error {
	if err := r.next.Upsert(ctx, p); err != nil {
		return err
	}
	r.cache.Delete(ctx, profileKeyPrefix+p.UserID)
	return nil
}

// List always reads through; it only serves admin views.
func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	return r.next.List(ctx)
}

type cachedProfile struct {
	value  profile.Profile
	exists bool
}
