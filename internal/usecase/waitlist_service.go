package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

type JoinWaitlistInput struct {
	FirstName string
	LastName  string
	Email     string
}

type WaitlistService struct {
	repo      waitlist.Repository
	forwarder waitlist.Forwarder
	idGen     id.Generator
	metrics   *metrics.Registry
	logger    *logging.Logger
	now       func() time.Time
}

// NewWaitlistService builds the service. A nil forwarder disables CTA
// forwarding.
func NewWaitlistService(
	repo waitlist.Repository,
	forwarder waitlist.Forwarder,
	idGen id.Generator,
	metricsRegistry *metrics.Registry,
	logger *logging.Logger,
) *WaitlistService {
	if logger == nil {
		logger = logging.Default()
	}

	return &WaitlistService{
		repo:      repo,
		forwarder: forwarder,
		idGen:     idGen,
		metrics:   metricsRegistry,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *WaitlistService) Join(ctx context.Context, input JoinWaitlistInput) (waitlist.Signup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaitlistService.Join")
	defer span.End()

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return waitlist.Signup{}, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	email, err := waitlist.NormalizeEmail(input.Email)
	if err != nil {
		return waitlist.Signup{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return waitlist.Signup{}, fmt.Errorf("get signup by email: %w", err)
	} else if exists {
		return waitlist.Signup{}, fmt.Errorf("%w: email already on the waitlist", ErrStateConflict)
	}

	signupID, err := s.idGen.NewID()
	if err != nil {
		return waitlist.Signup{}, fmt.Errorf("generate signup id: %w", err)
	}
	signup := waitlist.Signup{
		ID:        signupID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, signup); err != nil {
		return waitlist.Signup{}, fmt.Errorf("create signup: %w", err)
	}

	if s.forwarder == nil {
		return signup, nil
	}

	forwardErr := ""
	if err := s.forwarder.Forward(ctx, signup); err != nil {
		forwardErr = err.Error()
		s.logger.WarnContext(ctx, "forward waitlist signup failed", "signup_id", signup.ID, "error", err)
	}
	s.metrics.WaitlistForwarded(forwardErr == "")

	if err := s.repo.MarkForwarded(context.WithoutCancel(ctx), signup.ID, forwardErr); err != nil {
		s.logger.WarnContext(ctx, "record waitlist forward failed", "signup_id", signup.ID, "error", err)
		return signup, nil
	}
	signup.Forwarded = forwardErr == ""
	signup.ForwardError = forwardErr
	return signup, nil
}
