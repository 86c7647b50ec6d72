package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/fan-identity/external/cta"
	"github.com/riskibarqy/fan-identity/internal/config"
	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/idempotency"
	cacherepo "github.com/riskibarqy/fan-identity/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/wallet"
	"github.com/riskibarqy/fan-identity/internal/interfaces/httpapi"
	"github.com/riskibarqy/fan-identity/internal/interfaces/subscriber"
	"github.com/riskibarqy/fan-identity/internal/platform/cache"
	"github.com/riskibarqy/fan-identity/internal/platform/eventbus"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
	"github.com/riskibarqy/fan-identity/internal/usecase"
)

const (
	eventBusBuffer    = 256
	demoFakerSeed     = 20260301
	ctaRetryBackoff   = 200 * time.Millisecond
	idempotencyPrefix = "fan-identity:idem:"
)

// App owns the HTTP server and every resource that must be released on
// shutdown.
type App struct {
	Server *http.Server

	logger  *logging.Logger
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

type repositories struct {
	tags        tag.Repository
	userTags    tag.UserTagRepository
	ledger      points.Repository
	badges      badge.Repository
	markets     prediction.MarketRepository
	predictions prediction.Repository
	tickets     ticket.Repository
	profiles    profile.Repository
	waitlist    waitlist.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	built := false
	defer func() {
		if !built {
			_ = a.Close()
		}
	}()

	now := time.Now().UTC()
	repos, err := a.openStorage(ctx, cfg, now)
	if err != nil {
		return nil, err
	}

	idem, err := a.openIdempotency(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var reg *metrics.Registry
	if cfg.MetricsEnabled {
		reg = metrics.New()
	}

	bus := eventbus.New(logger.Named("eventbus"), eventBusBuffer)
	a.addCloser("eventbus", bus.Close)

	readCache := cache.NewStore(cfg.CacheTTL)
	tags := cacherepo.NewTagRepository(repos.tags, readCache)
	markets := cacherepo.NewMarketRepository(repos.markets, readCache)
	profiles := cacherepo.NewProfileRepository(repos.profiles, readCache)

	ids := id.NewUUIDGenerator()
	pointsSvc := usecase.NewPointsService(repos.ledger, ids, bus, reg, logger)
	checkinSvc := usecase.NewCheckinService(pointsSvc, idem, cfg.Checkin, reg, logger)
	badgeSvc := usecase.NewBadgeService(repos.badges, repos.ledger, checkinSvc, ids, cfg.BadgeThresholds, cfg.BadgeWorkers, reg, logger)
	leaderboardSvc := usecase.NewLeaderboardService(repos.ledger, profiles, repos.userTags, repos.badges, checkinSvc, readCache, logger)

	if err := subscriber.NewPointsAwarded(leaderboardSvc, badgeSvc, logger.Named("subscriber")).Register(ctx, bus); err != nil {
		return nil, fmt.Errorf("register points subscriber: %w", err)
	}

	forwarder, err := a.buildForwarder(cfg)
	if err != nil {
		return nil, err
	}
	wallets, err := a.buildWallets(cfg)
	if err != nil {
		return nil, err
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Points:      pointsSvc,
		Checkins:    checkinSvc,
		Badges:      badgeSvc,
		Leaderboard: leaderboardSvc,
		Tags:        usecase.NewTagService(tags, repos.userTags, cfg.TagRemoveCascade, leaderboardSvc, logger),
		Predictions: usecase.NewPredictionService(markets, repos.predictions, pointsSvc, idem, ids, cfg.PredictionRewardPoints, reg, logger),
		Tickets:     usecase.NewTicketService(repos.tickets, pointsSvc, nil, ids, reg, logger),
		Profiles:    usecase.NewProfileService(profiles, wallets, ids, leaderboardSvc, logger),
		Admin:       usecase.NewAdminService(repos.ledger, profiles, repos.tickets, logger),
		Waitlist:    usecase.NewWaitlistService(repos.waitlist, forwarder, ids, reg, logger),
	}, logger)

	router := httpapi.NewRouter(handler, buildVerifier(cfg, logger), httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthDevBypass:      cfg.AuthDevBypass,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		TrustedProxies:     cfg.TrustedProxies,
		Metrics:            reg,
	}, logger)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	built = true
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var combined error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("close resource failed", "resource", c.name, "error", err)
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "close %s", c.name))
		}
	}
	a.closers = nil
	return combined
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

func (a *App) openStorage(ctx context.Context, cfg config.Config, now time.Time) (repositories, error) {
	if cfg.StorageDriver == config.StoragePostgres {
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.addCloser("postgres", db.Close)

		if cfg.SeedDemoData {
			if err := postgres.BootstrapSeed(ctx, db, now); err != nil {
				return repositories{}, fmt.Errorf("bootstrap postgres seed: %w", err)
			}
		}

		r := postgres.NewRepositories(db)
		a.logger.Info("storage ready", "driver", config.StoragePostgres, "db", dbNameFromURL(cfg.DBURL))
		return repositories{
			tags:        r.Tags,
			userTags:    r.UserTags,
			ledger:      r.Ledger,
			badges:      r.Badges,
			markets:     r.Markets,
			predictions: r.Predictions,
			tickets:     r.Tickets,
			profiles:    r.Profiles,
			waitlist:    r.Waitlist,
		}, nil
	}

	seed := memory.Seed{
		Tags:    tag.DefaultCatalog(now),
		Markets: memory.SeedMarkets(now),
	}
	if cfg.SeedDemoData {
		seed = memory.SeedDemo(now, cfg.SeedDemoExtraFans, demoFakerSeed)
	}
	store, err := memory.NewStore(seed)
	if err != nil {
		return repositories{}, fmt.Errorf("build memory store: %w", err)
	}

	a.logger.Info("storage ready", "driver", config.StorageMemory, "demo_data", cfg.SeedDemoData)
	return repositories{
		tags:        store.Tags,
		userTags:    store.UserTags,
		ledger:      store.Points,
		badges:      store.Badges,
		markets:     store.Markets,
		predictions: store.Predictions,
		tickets:     store.Tickets,
		profiles:    store.Profiles,
		waitlist:    store.Waitlist,
	}, nil
}

func (a *App) openIdempotency(ctx context.Context, cfg config.Config) (usecase.IdempotencyStore, error) {
	if cfg.RedisURL == "" {
		return idempotency.NewMemoryStore(), nil
	}

	client, err := idempotency.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.addCloser("redis", client.Close)
	a.logger.Info("idempotency store ready", "backend", "redis")

	return idempotency.NewRedisStore(client, idempotencyPrefix), nil
}

// buildForwarder returns a nil interface when forwarding is disabled so the
// waitlist service can tell "no forwarder" apart from a typed nil.
func (a *App) buildForwarder(cfg config.Config) (waitlist.Forwarder, error) {
	if !cfg.CTAEnabled {
		return nil, nil
	}

	fwd, err := cta.NewForwarder(cta.Config{
		BaseURL:        cfg.CTABaseURL,
		Retries:        cfg.CTARetries,
		RetryBackoff:   ctaRetryBackoff,
		Timeout:        cfg.CTATimeout,
		CircuitBreaker: cfg.CTACircuit,
	}, a.logger.Named("cta"))
	if err != nil {
		return nil, fmt.Errorf("build cta forwarder: %w", err)
	}
	return fwd, nil
}

// buildWallets returns a nil interface when no keystore is configured, which
// leaves only wallet linking available.
func (a *App) buildWallets(cfg config.Config) (profile.WalletGenerator, error) {
	if cfg.WalletKeystoreDir == "" {
		return nil, nil
	}

	ks, err := wallet.NewKeystore(wallet.Config{
		Dir:         cfg.WalletKeystoreDir,
		Passphrase:  cfg.WalletKeystorePassphrase,
		LightScrypt: cfg.WalletLightScrypt,
	}, a.logger.Named("wallet"))
	if err != nil {
		return nil, fmt.Errorf("build wallet keystore: %w", err)
	}
	a.logger.Info("custodial wallets ready", "dir", cfg.WalletKeystoreDir)
	return ks, nil
}

func buildVerifier(cfg config.Config, logger *logging.Logger) httpapi.TokenVerifier {
	if cfg.AnubisBaseURL == "" {
		return nil
	}

	return anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.Config{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectPath,
			AdminKey:       cfg.AnubisAdminKey,
			PrincipalTTL:   cfg.AnubisPrincipalTTL,
			CircuitBreaker: cfg.AnubisCircuit,
		},
		logger.Named("anubis"),
	)
}
