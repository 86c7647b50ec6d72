package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/user"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type ProfileService struct {
	repo        profile.Repository
	wallets     profile.WalletGenerator
	idGen       id.Generator
	invalidator cacheInvalidator
	locks       userLocks
	logger      *logging.Logger
	now         func() time.Time
}

func NewProfileService(
	repo profile.Repository,
	wallets profile.WalletGenerator,
	idGen id.Generator,
	invalidator cacheInvalidator,
	logger *logging.Logger,
) *ProfileService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ProfileService{
		repo:        repo,
		wallets:     wallets,
		idGen:       idGen,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// GetOrCreate returns the principal's profile, creating an empty one on
// first sight.
func (s *ProfileService) GetOrCreate(ctx context.Context, principal user.Principal) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.GetOrCreate")
	defer span.End()

	userID := strings.TrimSpace(principal.UserID)
	if userID == "" {
		return profile.Profile{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	existing, ok, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if ok {
		return existing, nil
	}

	profileID, err := s.idGen.NewID()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("generate profile id: %w", err)
	}
	now := s.now().UTC()
	created := profile.Profile{
		ID:        profileID,
		UserID:    userID,
		Email:     strings.TrimSpace(principal.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, created); err != nil {
		return profile.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile created", "user_id", userID)
	return created, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (profile.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.Profile{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	item, ok, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: profile user_id=%s", ErrNotFound, userID)
	}
	return item, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, update profile.Update) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Update")
	defer span.End()

	if update.Country != nil && len(strings.TrimSpace(*update.Country)) > 2 {
		return profile.Profile{}, fmt.Errorf("%w: country must be an ISO 3166 alpha-2 code", ErrInvalidInput)
	}

	unlock := s.locks.lock(strings.TrimSpace(userID))
	defer unlock()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}

	next := current.Apply(update, s.now().UTC())
	if err := s.repo.Upsert(ctx, next); err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	s.invalidator.Invalidate(ctx)
	return next, nil
}

// CreateWallet provisions a custodial address. A profile that already has a
// wallet keeps it. Without a wallet generator only linking is available.
func (s *ProfileService) CreateWallet(ctx context.Context, userID string) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.CreateWallet")
	defer span.End()

	unlock := s.locks.lock(strings.TrimSpace(userID))
	defer unlock()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if current.HasWallet() {
		return current, nil
	}

	if s.wallets == nil {
		return profile.Profile{}, fmt.Errorf("%w: custodial wallets are not configured", ErrDependencyUnavailable)
	}
	address, err := s.wallets.NewAddress()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("create wallet: %w", err)
	}
	current.WalletAddress = address
	current.WalletProvider = profile.WalletProviderCustodial
	current.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, current); err != nil {
		return profile.Profile{}, fmt.Errorf("save wallet: %w", err)
	}

	s.logger.InfoContext(ctx, "wallet created", "user_id", current.UserID, "address", address)
	return current, nil
}

// LinkWallet attaches an externally held address.
func (s *ProfileService) LinkWallet(ctx context.Context, userID, address, provider string) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.LinkWallet")
	defer span.End()

	normalized, err := profile.NormalizeAddress(address)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidWalletAddress) {
			return profile.Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return profile.Profile{}, err
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = profile.WalletProviderExternal
	}

	unlock := s.locks.lock(strings.TrimSpace(userID))
	defer unlock()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	current.WalletAddress = normalized
	current.WalletProvider = provider
	current.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, current); err != nil {
		return profile.Profile{}, fmt.Errorf("save wallet: %w", err)
	}

	s.logger.InfoContext(ctx, "wallet linked", "user_id", current.UserID, "provider", provider)
	return current, nil
}
