package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fan-identity/internal/usecase"
)

func (h *Handler) GetMyPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPoints")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultRecentLedgerLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.svc.Points.Summary(ctx, principal.UserID, limit)
	if err != nil {
		h.fail(ctx, w, "get points summary failed", err, "user_id", principal.UserID)
		return
	}

	recent := make([]ledgerEntryDTO, 0, len(summary.Recent))
	for _, entry := range summary.Recent {
		recent = append(recent, ledgerEntryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, pointsSummaryDTO{TotalPoints: summary.TotalPoints, Recent: recent})
}

func (h *Handler) GetCheckinStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCheckinStatus")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.svc.Checkins.Status(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "get checkin status failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, checkinStatusToDTO(status))
}

func (h *Handler) PerformCheckin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PerformCheckin")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req checkinRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.svc.Checkins.PerformCheckin(ctx, usecase.CheckinInput{
		UserID:   principal.UserID,
		TeamType: req.TeamType,
	})
	if err != nil {
		h.fail(ctx, w, "perform checkin failed", err, "user_id", principal.UserID)
		return
	}

	status := http.StatusOK
	if result.Awarded {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, checkinResultDTO{
		Status:        checkinStatusToDTO(result.Status),
		Awarded:       result.Awarded,
		PointsAwarded: result.PointsAwarded,
	})
}

func (h *Handler) ListMyBadges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyBadges")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	badges, err := h.svc.Badges.ListByUser(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "list badges failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, badgesToDTO(badges))
}

func (h *Handler) EvaluateMyBadges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateMyBadges")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	earned, err := h.svc.Badges.EvaluateUser(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "evaluate badges failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"new_badges": badgesToDTO(earned),
	})
}

func (h *Handler) GetMyRank(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRank")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter, err := leaderboardFilterFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rank, err := h.svc.Leaderboard.GetUserRank(ctx, principal.UserID, filter)
	if err != nil {
		h.fail(ctx, w, "get user rank failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userRankToDTO(rank))
}
