package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
)

const sampleTxHash = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"

func TestPredictionService_SubmitAwardsPointsOnce(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	sub := prediction.Submission{
		UserID:   "user-1",
		MarketID: "market-1",
		Outcome:  prediction.OutcomeB,
		Amount:   0.25,
		TxHash:   sampleTxHash,
	}

	first, err := h.predictions.SubmitPrediction(t.Context(), sub)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !first.Created || first.Prediction.PointsAwarded != DefaultPredictionRewardPoints {
		t.Fatalf("unexpected first result: %+v", first)
	}

	sub.Outcome = prediction.OutcomeA
	second, err := h.predictions.SubmitPrediction(t.Context(), sub)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.Created || second.Prediction.ID != first.Prediction.ID || second.Prediction.Outcome != prediction.OutcomeB {
		t.Fatalf("expected original prediction back, got %+v", second)
	}

	entries, _ := h.points.Ledger(t.Context(), "user-1")
	if len(entries) != 1 || entries[0].ActionType != points.ActionPrediction || entries[0].Points != 50 {
		t.Fatalf("unexpected ledger: %+v", entries)
	}
}

func TestPredictionService_SubmitValidation(t *testing.T) {
	t.Parallel()

	valid := prediction.Submission{UserID: "user-1", MarketID: "market-2", Outcome: 0, Amount: 1}

	tests := []struct {
		name      string
		mutate    func(*prediction.Submission)
		advance   time.Duration
		targetErr error
	}{
		{name: "unknown market", mutate: func(s *prediction.Submission) { s.MarketID = "market-404" }, targetErr: ErrNotFound},
		{name: "bad outcome", mutate: func(s *prediction.Submission) { s.Outcome = 2 }, targetErr: ErrInvalidInput},
		{name: "zero amount", mutate: func(s *prediction.Submission) { s.Amount = 0 }, targetErr: ErrInvalidInput},
		{name: "short tx hash", mutate: func(s *prediction.Submission) { s.TxHash = "0x1234" }, targetErr: ErrInvalidInput},
		{name: "after window", mutate: func(*prediction.Submission) {}, advance: 4 * 24 * time.Hour, targetErr: ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
			h.clock.advance(tc.advance)
			sub := valid
			tc.mutate(&sub)

			if _, err := h.predictions.SubmitPrediction(t.Context(), sub); !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
			total, _ := h.points.TotalPoints(t.Context(), "user-1")
			if total != 0 {
				t.Fatalf("expected no points on rejected submission, got %d", total)
			}
		})
	}
}

func TestPredictionService_RecordResolution(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	for userID, outcome := range map[string]int{"user-1": 0, "user-2": 1} {
		if _, err := h.predictions.SubmitPrediction(t.Context(), prediction.Submission{
			UserID: userID, MarketID: "market-1", Outcome: outcome, Amount: 1,
		}); err != nil {
			t.Fatalf("submit %s: %v", userID, err)
		}
	}

	result, err := h.predictions.RecordResolution(t.Context(), "market-1", prediction.OutcomeB)
	if err != nil {
		t.Fatalf("record resolution: %v", err)
	}
	if result.Settled != 2 || result.Market.Status != prediction.StatusResolved {
		t.Fatalf("unexpected resolution: %+v", result)
	}

	loser, _ := h.predictions.GetUserPredictionForMarket(t.Context(), "user-1", "market-1")
	winner, _ := h.predictions.GetUserPredictionForMarket(t.Context(), "user-2", "market-1")
	if loser.IsWinningPrediction == nil || *loser.IsWinningPrediction {
		t.Fatalf("expected user-1 to lose: %+v", loser)
	}
	if winner.IsWinningPrediction == nil || !*winner.IsWinningPrediction {
		t.Fatalf("expected user-2 to win: %+v", winner)
	}

	if _, err := h.predictions.RecordResolution(t.Context(), "market-1", prediction.OutcomeA); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected conflict on second resolution, got %v", err)
	}
	if _, err := h.predictions.SubmitPrediction(t.Context(), prediction.Submission{
		UserID: "user-3", MarketID: "market-1", Outcome: 0, Amount: 1,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected resolved market to reject submissions, got %v", err)
	}
}

func TestPredictionService_ListMarketsByFilter(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())

	all, err := h.predictions.ListMarkets(t.Context(), prediction.MarketFilter{})
	if err != nil {
		t.Fatalf("list markets: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 markets, got %d", len(all))
	}

	nba, _ := h.predictions.ListMarkets(t.Context(), prediction.MarketFilter{LeagueID: "league-2"})
	if len(nba) != 1 || nba[0].ID != "market-2" {
		t.Fatalf("unexpected filtered markets: %+v", nba)
	}
}

func TestPredictionService_SubmitRetriesAfterLedgerFailure(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	ledger := h.useFlakyLedger()
	sub := prediction.Submission{
		UserID:   "user-1",
		MarketID: "market-1",
		Outcome:  prediction.OutcomeA,
		Amount:   0.1,
		TxHash:   sampleTxHash,
	}

	ledger.down.Store(true)
	if _, err := h.predictions.SubmitPrediction(t.Context(), sub); !errors.Is(err, errLedgerDown) {
		t.Fatalf("expected ledger failure, got %v", err)
	}
	if _, ok, _ := h.store.Predictions.GetByUserAndMarket(t.Context(), "user-1", "market-1"); ok {
		t.Fatalf("expected no prediction stored without its ledger entry")
	}

	ledger.down.Store(false)
	retry, err := h.predictions.SubmitPrediction(t.Context(), sub)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !retry.Created {
		t.Fatalf("expected retry to create the prediction, got %+v", retry)
	}

	total, _ := h.points.TotalPoints(t.Context(), "user-1")
	if total != DefaultPredictionRewardPoints {
		t.Fatalf("expected %d points after retry, got %d", DefaultPredictionRewardPoints, total)
	}
}
