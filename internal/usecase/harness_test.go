package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/idempotency"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fan-identity/internal/platform/cache"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n), nil
}

type testClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.at = c.at.Add(d)
	c.mu.Unlock()
}

type publishedEvent struct {
	topic string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
	return p.err
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

var harnessStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fanHarness struct {
	store       *memory.Store
	clock       *testClock
	ids         *sequenceIDs
	idem        *idempotency.MemoryStore
	publisher   *recordingPublisher
	invalidator *countingInvalidator
	metrics     *metrics.Registry

	points      *PointsService
	checkins    *CheckinService
	badges      *BadgeService
	leaderboard *LeaderboardService
	tags        *TagService
	predictions *PredictionService
	tickets     *TicketService
	profiles    *ProfileService
	admin       *AdminService
	waitlist    *WaitlistService
}

func emptySeed() memory.Seed {
	return memory.Seed{
		Tags:    tag.DefaultCatalog(harnessStart),
		Markets: memory.SeedMarkets(harnessStart),
	}
}

func newFanHarness(t *testing.T, seed memory.Seed, policy checkin.Policy) *fanHarness {
	t.Helper()

	store, err := memory.NewStore(seed)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}

	h := &fanHarness{
		store:       store,
		clock:       &testClock{at: harnessStart},
		ids:         &sequenceIDs{prefix: "id"},
		idem:        idempotency.NewMemoryStore(),
		publisher:   &recordingPublisher{},
		invalidator: &countingInvalidator{},
		metrics:     metrics.New(),
	}
	logger := logging.NewNop()

	h.points = NewPointsService(store.Points, h.ids, h.publisher, h.metrics, logger)
	h.points.now = h.clock.now
	h.checkins = NewCheckinService(h.points, h.idem, policy, h.metrics, logger)
	h.checkins.now = h.clock.now
	h.badges = NewBadgeService(store.Badges, store.Points, h.checkins, h.ids, badge.DefaultThresholds(), 4, h.metrics, logger)
	h.badges.now = h.clock.now
	h.leaderboard = NewLeaderboardService(store.Points, store.Profiles, store.UserTags, store.Badges, h.checkins, cache.NewStore(time.Minute), logger)
	h.leaderboard.now = h.clock.now
	h.tags = NewTagService(store.Tags, store.UserTags, true, h.invalidator, logger)
	h.tags.now = h.clock.now
	h.predictions = NewPredictionService(store.Markets, store.Predictions, h.points, h.idem, h.ids, 0, h.metrics, logger)
	h.predictions.now = h.clock.now
	h.tickets = NewTicketService(store.Tickets, h.points, nil, h.ids, h.metrics, logger)
	h.tickets.now = h.clock.now
	h.profiles = NewProfileService(store.Profiles, nil, h.ids, h.invalidator, logger)
	h.profiles.now = h.clock.now
	h.admin = NewAdminService(store.Points, store.Profiles, store.Tickets, logger)
	h.waitlist = NewWaitlistService(store.Waitlist, nil, h.ids, h.metrics, logger)
	h.waitlist.now = h.clock.now
	return h
}

var errLedgerDown = errors.New("ledger unavailable")

// flakyLedger fails every Append while down is set.
type flakyLedger struct {
	points.Repository
	down atomic.Bool
}

func (l *flakyLedger) Append(ctx context.Context, entry points.Entry) error {
	if l.down.Load() {
		return errLedgerDown
	}
	return l.Repository.Append(ctx, entry)
}

// useFlakyLedger rebuilds the services that award points on top of a ledger
// that can be switched off.
func (h *fanHarness) useFlakyLedger() *flakyLedger {
	ledger := &flakyLedger{Repository: h.store.Points}
	logger := logging.NewNop()

	h.points = NewPointsService(ledger, h.ids, h.publisher, h.metrics, logger)
	h.points.now = h.clock.now
	h.predictions = NewPredictionService(h.store.Markets, h.store.Predictions, h.points, h.idem, h.ids, 0, h.metrics, logger)
	h.predictions.now = h.clock.now
	h.tickets = NewTicketService(h.store.Tickets, h.points, nil, h.ids, h.metrics, logger)
	h.tickets.now = h.clock.now
	return ledger
}
