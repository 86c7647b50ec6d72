package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

const ticketStoragePrefix = "tickets/"

type UploadTicketInput struct {
	UserID      string
	FileName    string
	ContentType string
	Content     []byte
}

type TicketService struct {
	repo         ticket.Repository
	points       *PointsService
	scanner      ticket.Scanner
	idGen        id.Generator
	rewardPoints int64
	metrics      *metrics.Registry
	logger       *logging.Logger
	now          func() time.Time
}

func NewTicketService(
	repo ticket.Repository,
	pointsService *PointsService,
	scanner ticket.Scanner,
	idGen id.Generator,
	metricsRegistry *metrics.Registry,
	logger *logging.Logger,
) *TicketService {
	if scanner == nil {
		scanner = ticket.NewKeywordScanner()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &TicketService{
		repo:         repo,
		points:       pointsService,
		scanner:      scanner,
		idGen:        idGen,
		rewardPoints: ticket.DefaultRewardPoints,
		metrics:      metricsRegistry,
		logger:       logger,
		now:          time.Now,
	}
}

// Upload stores a ticket and auto-approves it when the scan recognises a
// valid ticket. Anything else waits for admin review.
func (s *TicketService) Upload(ctx context.Context, input UploadTicketInput) (ticket.Ticket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TicketService.Upload",
		attribute.String("content_type", input.ContentType),
		attribute.Int("size", len(input.Content)),
	)
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.ContentType = strings.ToLower(strings.TrimSpace(input.ContentType))
	if input.UserID == "" {
		return ticket.Ticket{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if err := ticket.ValidateUpload(input.FileName, input.ContentType, len(input.Content)); err != nil {
		return ticket.Ticket{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash := ticket.Hash(input.Content)
	if _, exists, err := s.repo.GetByHash(ctx, hash); err != nil {
		return ticket.Ticket{}, fmt.Errorf("get ticket by hash: %w", err)
	} else if exists {
		s.metrics.TicketUploaded("duplicate")
		return ticket.Ticket{}, fmt.Errorf("%w: %v", ErrStateConflict, ticket.ErrDuplicate)
	}

	ticketID, err := s.idGen.NewID()
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("generate ticket id: %w", err)
	}

	now := s.now().UTC()
	item := ticket.Ticket{
		ID:          ticketID,
		UserID:      input.UserID,
		FileName:    input.FileName,
		FileURL:     ticketStoragePrefix + ticket.StoragePath(input.UserID, input.FileName, now),
		FileHash:    hash,
		ContentType: input.ContentType,
		Status:      ticket.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if ticket.IsImage(input.ContentType) {
		result, err := s.scanner.Scan(ctx, input.ContentType, input.Content)
		if err != nil {
			s.logger.WarnContext(ctx, "ticket scan failed", "user_id", input.UserID, "error", err)
		} else {
			item.OCR = &result
		}
	}

	autoApprove := item.OCR != nil && item.OCR.IsValidTicket
	if autoApprove {
		item, err = item.Approve(s.rewardPoints, now)
		if err != nil {
			return ticket.Ticket{}, fmt.Errorf("approve ticket: %w", err)
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return ticket.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	if autoApprove {
		if err := s.award(ctx, item, true); err != nil {
			// Keep the upload and queue it for review instead.
			s.logger.WarnContext(ctx, "ticket auto approval not recorded", "ticket_id", item.ID, "error", err)
			if item, err = s.revertToPending(ctx, item); err != nil {
				return ticket.Ticket{}, err
			}
		}
	}
	s.metrics.TicketUploaded(string(item.Status))

	s.logger.InfoContext(ctx, "ticket uploaded",
		"user_id", item.UserID,
		"ticket_id", item.ID,
		"status", item.Status,
	)
	return item, nil
}

func (s *TicketService) ListByUser(ctx context.Context, userID string) ([]ticket.Ticket, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return items, nil
}

// List returns tickets in any status when status is empty.
func (s *TicketService) List(ctx context.Context, status ticket.Status) ([]ticket.Ticket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TicketService.List")
	defer span.End()

	switch status {
	case "", ticket.StatusPending, ticket.StatusApproved, ticket.StatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown ticket status %q", ErrInvalidInput, status)
	}

	items, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return items, nil
}

// Approve accepts a pending ticket. points <= 0 uses the default reward.
func (s *TicketService) Approve(ctx context.Context, ticketID string, pts int64) (ticket.Ticket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TicketService.Approve",
		attribute.String("ticket_id", ticketID),
	)
	defer span.End()

	item, err := s.get(ctx, ticketID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if pts <= 0 {
		pts = s.rewardPoints
	}

	approved, err := item.Approve(pts, s.now().UTC())
	if err != nil {
		return ticket.Ticket{}, mapTicketTransition(err)
	}
	if err := s.repo.Transition(ctx, approved, ticket.StatusPending); err != nil {
		return ticket.Ticket{}, mapTicketWrite(err)
	}
	if err := s.award(ctx, approved, false); err != nil {
		if _, revertErr := s.revertToPending(ctx, approved); revertErr != nil {
			s.logger.ErrorContext(ctx, "ticket left approved without points", "ticket_id", approved.ID, "error", revertErr)
		}
		return ticket.Ticket{}, err
	}

	s.logger.InfoContext(ctx, "ticket approved", "ticket_id", approved.ID, "user_id", approved.UserID, "points", pts)
	return approved, nil
}

func (s *TicketService) Reject(ctx context.Context, ticketID, reason string) (ticket.Ticket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TicketService.Reject",
		attribute.String("ticket_id", ticketID),
	)
	defer span.End()

	item, err := s.get(ctx, ticketID)
	if err != nil {
		return ticket.Ticket{}, err
	}

	rejected, err := item.Reject(reason, s.now().UTC())
	if err != nil {
		return ticket.Ticket{}, mapTicketTransition(err)
	}
	if err := s.repo.Transition(ctx, rejected, ticket.StatusPending); err != nil {
		return ticket.Ticket{}, mapTicketWrite(err)
	}

	s.logger.InfoContext(ctx, "ticket rejected", "ticket_id", rejected.ID, "user_id", rejected.UserID)
	return rejected, nil
}

func (s *TicketService) get(ctx context.Context, ticketID string) (ticket.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return ticket.Ticket{}, fmt.Errorf("%w: ticket_id is required", ErrInvalidInput)
	}

	item, ok, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	if !ok {
		return ticket.Ticket{}, fmt.Errorf("%w: ticket id=%s", ErrNotFound, ticketID)
	}
	return item, nil
}

func (s *TicketService) award(ctx context.Context, item ticket.Ticket, auto bool) error {
	if item.PointsAwarded == 0 {
		return nil
	}
	_, err := s.points.AddPoints(ctx, AddPointsInput{
		UserID:     item.UserID,
		ActionType: points.ActionTicketUpload,
		Points:     item.PointsAwarded,
		Metadata:   points.TicketMetadata{TicketID: item.ID, AutoApproved: auto},
	})
	if err != nil {
		return fmt.Errorf("award ticket points: %w", err)
	}
	return nil
}

// revertToPending undoes an approval whose ledger entry could not be
// written.
func (s *TicketService) revertToPending(ctx context.Context, approved ticket.Ticket) (ticket.Ticket, error) {
	pending := approved
	pending.Status = ticket.StatusPending
	pending.PointsAwarded = 0
	pending.UpdatedAt = s.now().UTC()

	if err := s.repo.Transition(context.WithoutCancel(ctx), pending, ticket.StatusApproved); err != nil {
		return ticket.Ticket{}, fmt.Errorf("revert ticket %s to pending: %w", approved.ID, err)
	}
	return pending, nil
}

func mapTicketTransition(err error) error {
	if errors.Is(err, ticket.ErrNotPending) {
		return fmt.Errorf("%w: %v", ErrStateConflict, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func mapTicketWrite(err error) error {
	if errors.Is(err, ticket.ErrStatusChanged) {
		return fmt.Errorf("%w: %v", ErrStateConflict, err)
	}
	return fmt.Errorf("update ticket: %w", err)
}
