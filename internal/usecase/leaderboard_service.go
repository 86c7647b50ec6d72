package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/leaderboard"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/platform/cache"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

const (
	leaderboardCachePrefix   = "leaderboard:"
	leaderboardProjectionKey = leaderboardCachePrefix + "projection"
	leaderboardFanout        = 8
)

type UserRank struct {
	Rank       int
	TotalUsers int
	Entry      leaderboard.Entry
}

type LeaderboardService struct {
	ledger   points.Repository
	profiles profile.Repository
	userTags tag.UserTagRepository
	badges   badge.Repository
	checkins *CheckinService
	cache    *cache.Store
	logger   *logging.Logger
	now      func() time.Time
}

func NewLeaderboardService(
	ledger points.Repository,
	profiles profile.Repository,
	userTags tag.UserTagRepository,
	badges badge.Repository,
	checkins *CheckinService,
	store *cache.Store,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeaderboardService{
		ledger:   ledger,
		profiles: profiles,
		userTags: userTags,
		badges:   badges,
		checkins: checkins,
		cache:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *LeaderboardService) Rank(ctx context.Context, filter leaderboard.Filter) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Rank")
	defer span.End()

	filter = normalizeLeaderboardFilter(filter)
	filtered, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := filter.NormalizedLimit()
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// GetUserRank positions the user in the filtered board, ignoring the limit.
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID string, filter leaderboard.Filter) (UserRank, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetUserRank")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserRank{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	filtered, err := s.filtered(ctx, normalizeLeaderboardFilter(filter))
	if err != nil {
		return UserRank{}, err
	}

	rank, ok := leaderboard.UserRank(filtered, userID)
	if !ok {
		return UserRank{}, fmt.Errorf("%w: user is not on this leaderboard", ErrNotFound)
	}
	return UserRank{
		Rank:       rank,
		TotalUsers: len(filtered),
		Entry:      filtered[rank-1],
	}, nil
}

// Invalidate drops every cached board.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	removed := s.cache.DeletePrefix(ctx, leaderboardCachePrefix)
	s.logger.DebugContext(ctx, "leaderboard cache invalidated", "removed", removed)
}

func (s *LeaderboardService) filtered(ctx context.Context, filter leaderboard.Filter) ([]leaderboard.Entry, error) {
	key := leaderboardCachePrefix + "rank:" + filter.CacheKey()
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) ([]leaderboard.Entry, error) {
		all, err := cache.Load(ctx, s.cache, leaderboardProjectionKey, s.project)
		if err != nil {
			return nil, err
		}
		return leaderboard.Apply(all, filter), nil
	})
}

// project builds one entry per known fan from ledger, profile, tag and
// badge data.
func (s *LeaderboardService) project(ctx context.Context) ([]leaderboard.Entry, error) {
	var (
		summaries   []points.Summary
		profiles    []profile.Profile
		userTags    []tag.UserTag
		badgeCounts map[string]int
	)

	loaders := pool.New().WithErrors().WithContext(ctx)
	loaders.Go(func(ctx context.Context) (err error) {
		summaries, err = s.ledger.Summaries(ctx)
		return wrapLoad("ledger summaries", err)
	})
	loaders.Go(func(ctx context.Context) (err error) {
		profiles, err = s.profiles.List(ctx)
		return wrapLoad("profiles", err)
	})
	loaders.Go(func(ctx context.Context) (err error) {
		userTags, err = s.userTags.ListAll(ctx)
		return wrapLoad("user tags", err)
	})
	loaders.Go(func(ctx context.Context) (err error) {
		badgeCounts, err = s.badges.CountByUser(ctx)
		return wrapLoad("badge counts", err)
	})
	if err := loaders.Wait(); err != nil {
		return nil, err
	}

	profileByUser := make(map[string]profile.Profile, len(profiles))
	for _, p := range profiles {
		profileByUser[p.UserID] = p
	}
	tagsByUser := make(map[string][]tag.UserTag)
	for _, ut := range userTags {
		tagsByUser[ut.UserID] = append(tagsByUser[ut.UserID], ut)
	}

	now := s.now()
	var mu sync.Mutex
	entries := make([]leaderboard.Entry, 0, len(summaries))

	streaks := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(leaderboardFanout)
	for _, sum := range summaries {
		streaks.Go(func(ctx context.Context) error {
			ledger, err := s.ledger.ListByUser(ctx, sum.UserID)
			if err != nil {
				return fmt.Errorf("list ledger for %s: %w", sum.UserID, err)
			}
			streak, _ := s.checkins.ActiveStreak(ledger, now)

			prefs := tag.ResolvePreferences(tagsByUser[sum.UserID])
			p, ok := profileByUser[sum.UserID]
			if !ok {
				p = profile.Profile{UserID: sum.UserID}
			}

			entry := leaderboard.Entry{
				UserID:        sum.UserID,
				DisplayName:   p.Name(),
				Country:       p.Country,
				TotalPoints:   sum.TotalPoints,
				CheckinStreak: streak,
				SportName:     tagName(prefs.Sport),
				LeagueName:    tagName(prefs.League),
				ClubName:      tagName(prefs.Club),
				BadgeCount:    badgeCounts[sum.UserID],
				LastActivity:  sum.LastActivity,
			}

			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := streaks.Wait(); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "leaderboard projection built", "entries", len(entries))
	return leaderboard.Sort(entries), nil
}

func normalizeLeaderboardFilter(f leaderboard.Filter) leaderboard.Filter {
	f.Sport = strings.TrimSpace(f.Sport)
	f.League = strings.TrimSpace(f.League)
	f.Club = strings.TrimSpace(f.Club)
	return f
}

func tagName(t *tag.Tag) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func wrapLoad(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s: %w", what, err)
}
