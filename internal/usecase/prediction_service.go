package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

const (
	DefaultPredictionRewardPoints = 50
	predictionKeyTTL              = 24 * time.Hour
)

type SubmitPredictionResult struct {
	Prediction prediction.Prediction
	// Created is false when an earlier prediction was returned unchanged.
	Created bool
}

type ResolutionResult struct {
	Market  prediction.Market
	Settled int
}

type PredictionService struct {
	markets      prediction.MarketRepository
	predictions  prediction.Repository
	points       *PointsService
	idem         IdempotencyStore
	idGen        id.Generator
	rewardPoints int64
	metrics      *metrics.Registry
	logger       *logging.Logger
	now          func() time.Time
}

func NewPredictionService(
	markets prediction.MarketRepository,
	predictions prediction.Repository,
	pointsService *PointsService,
	idem IdempotencyStore,
	idGen id.Generator,
	rewardPoints int64,
	metricsRegistry *metrics.Registry,
	logger *logging.Logger,
) *PredictionService {
	if rewardPoints <= 0 {
		rewardPoints = DefaultPredictionRewardPoints
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		markets:      markets,
		predictions:  predictions,
		points:       pointsService,
		idem:         idem,
		idGen:        idGen,
		rewardPoints: rewardPoints,
		metrics:      metricsRegistry,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *PredictionService) ListMarkets(ctx context.Context, filter prediction.MarketFilter) ([]prediction.Market, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListMarkets")
	defer span.End()

	filter.SportID = strings.TrimSpace(filter.SportID)
	filter.LeagueID = strings.TrimSpace(filter.LeagueID)
	filter.ClubID = strings.TrimSpace(filter.ClubID)

	markets, err := s.markets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return markets, nil
}

func (s *PredictionService) GetMarket(ctx context.Context, marketID string) (prediction.Market, error) {
	marketID = strings.TrimSpace(marketID)
	if marketID == "" {
		return prediction.Market{}, fmt.Errorf("%w: market_id is required", ErrInvalidInput)
	}

	market, ok, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return prediction.Market{}, fmt.Errorf("get market: %w", err)
	}
	if !ok {
		return prediction.Market{}, fmt.Errorf("%w: market id=%s", ErrNotFound, marketID)
	}
	return market, nil
}

// SubmitPrediction records one prediction per user and market and awards
// the fixed participation reward. A repeat submission returns the stored
// prediction.
func (s *PredictionService) SubmitPrediction(ctx context.Context, sub prediction.Submission) (SubmitPredictionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitPrediction",
		attribute.String("market_id", sub.MarketID),
	)
	defer span.End()

	sub.UserID = strings.TrimSpace(sub.UserID)
	sub.MarketID = strings.TrimSpace(sub.MarketID)
	if sub.UserID == "" {
		return SubmitPredictionResult{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	market, err := s.GetMarket(ctx, sub.MarketID)
	if err != nil {
		return SubmitPredictionResult{}, err
	}

	if existing, ok, err := s.predictions.GetByUserAndMarket(ctx, sub.UserID, market.ID); err != nil {
		return SubmitPredictionResult{}, fmt.Errorf("get existing prediction: %w", err)
	} else if ok {
		s.metrics.Prediction("duplicate")
		return SubmitPredictionResult{Prediction: existing}, nil
	}

	now := s.now()
	if err := prediction.ValidateSubmission(market, sub, now); err != nil {
		s.metrics.Prediction("rejected")
		return SubmitPredictionResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	txHash, _ := prediction.NormalizeTxHash(sub.TxHash)

	key := "prediction:" + sub.UserID + ":" + market.ID
	acquired, err := s.idem.Acquire(ctx, key, predictionKeyTTL)
	if err != nil {
		return SubmitPredictionResult{}, fmt.Errorf("%w: acquire prediction key: %v", ErrDependencyUnavailable, err)
	}
	if !acquired {
		existing, ok, err := s.predictions.GetByUserAndMarket(ctx, sub.UserID, market.ID)
		if err != nil {
			return SubmitPredictionResult{}, fmt.Errorf("get existing prediction: %w", err)
		}
		if !ok {
			return SubmitPredictionResult{}, fmt.Errorf("%w: prediction for market %s is already being submitted", ErrStateConflict, market.ID)
		}
		s.metrics.Prediction("duplicate")
		return SubmitPredictionResult{Prediction: existing}, nil
	}

	predictionID, err := s.idGen.NewID()
	if err != nil {
		s.release(ctx, key)
		return SubmitPredictionResult{}, fmt.Errorf("generate prediction id: %w", err)
	}

	item := prediction.Prediction{
		ID:            predictionID,
		UserID:        sub.UserID,
		MarketID:      market.ID,
		Outcome:       sub.Outcome,
		Amount:        sub.Amount,
		TxHash:        txHash,
		BlockNumber:   sub.BlockNumber,
		PointsAwarded: s.rewardPoints,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if err := s.predictions.Create(ctx, item); err != nil {
		s.release(ctx, key)
		return SubmitPredictionResult{}, fmt.Errorf("create prediction: %w", err)
	}

	if _, err := s.points.AddPoints(ctx, AddPointsInput{
		UserID:     sub.UserID,
		ActionType: points.ActionPrediction,
		Points:     s.rewardPoints,
		Metadata: points.PredictionMetadata{
			MarketID:     market.ID,
			PredictionID: item.ID,
		},
	}); err != nil {
		// A stored prediction always has its ledger entry.
		if delErr := s.predictions.Delete(context.WithoutCancel(ctx), item.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "remove unpaid prediction failed", "prediction_id", item.ID, "error", delErr)
		}
		s.release(ctx, key)
		return SubmitPredictionResult{}, fmt.Errorf("award prediction points: %w", err)
	}
	s.metrics.Prediction("created")

	s.logger.InfoContext(ctx, "prediction submitted",
		"user_id", item.UserID,
		"market_id", item.MarketID,
		"outcome", market.OutcomeLabel(item.Outcome),
		"amount", item.Amount,
	)
	return SubmitPredictionResult{Prediction: item, Created: true}, nil
}

func (s *PredictionService) ListUserPredictions(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListUserPredictions")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	items, err := s.predictions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return items, nil
}

func (s *PredictionService) GetUserPredictionForMarket(ctx context.Context, userID, marketID string) (prediction.Prediction, error) {
	userID = strings.TrimSpace(userID)
	marketID = strings.TrimSpace(marketID)
	if userID == "" || marketID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user_id and market_id are required", ErrInvalidInput)
	}

	item, ok, err := s.predictions.GetByUserAndMarket(ctx, userID, marketID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction: %w", err)
	}
	if !ok {
		return prediction.Prediction{}, fmt.Errorf("%w: no prediction for market %s", ErrNotFound, marketID)
	}
	return item, nil
}

// RecordResolution stores the outcome reported by the settlement process
// and flags winning predictions. Payouts happen elsewhere.
func (s *PredictionService) RecordResolution(ctx context.Context, marketID string, winningOutcome int) (ResolutionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.RecordResolution",
		attribute.String("market_id", marketID),
	)
	defer span.End()

	market, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return ResolutionResult{}, err
	}
	if err := prediction.ValidateResolution(market, winningOutcome); err != nil {
		if market.Status != prediction.StatusActive {
			return ResolutionResult{}, fmt.Errorf("%w: %v", ErrStateConflict, err)
		}
		return ResolutionResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	if err := s.markets.MarkResolved(ctx, market.ID, winningOutcome, now); err != nil {
		return ResolutionResult{}, fmt.Errorf("mark market resolved: %w", err)
	}
	settled, err := s.predictions.SettleMarket(ctx, market.ID, winningOutcome, now)
	if err != nil {
		return ResolutionResult{}, fmt.Errorf("settle predictions: %w", err)
	}

	market.Status = prediction.StatusResolved
	market.WinningOutcome = &winningOutcome
	market.ResolvedAt = &now
	market.UpdatedAt = now

	s.logger.InfoContext(ctx, "market resolution recorded",
		"market_id", market.ID,
		"winning_outcome", winningOutcome,
		"settled", settled,
	)
	return ResolutionResult{Market: market, Settled: settled}, nil
}

func (s *PredictionService) release(ctx context.Context, key string) {
	if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.WarnContext(ctx, "release prediction key failed", "key", key, "error", err)
	}
}
