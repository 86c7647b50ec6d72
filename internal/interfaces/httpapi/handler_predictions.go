package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
)

// ListMyPredictions returns every prediction of the caller, or the single
// prediction for ?market_id= when given.
func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if marketID := queryString(r, "market_id"); marketID != "" {
		item, err := h.svc.Predictions.GetUserPredictionForMarket(ctx, principal.UserID, marketID)
		if err != nil {
			h.fail(ctx, w, "get prediction failed", err, "user_id", principal.UserID, "market_id", marketID)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
		return
	}

	items, err := h.svc.Predictions.ListUserPredictions(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "list predictions failed", err, "user_id", principal.UserID)
		return
	}

	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req submitPredictionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.svc.Predictions.SubmitPrediction(ctx, prediction.Submission{
		UserID:      principal.UserID,
		MarketID:    req.MarketID,
		Outcome:     *req.Outcome,
		Amount:      req.Amount,
		TxHash:      req.TxHash,
		BlockNumber: req.BlockNumber,
	})
	if err != nil {
		h.fail(ctx, w, "submit prediction failed", err, "user_id", principal.UserID, "market_id", req.MarketID)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, predictionToDTO(result.Prediction))
}
