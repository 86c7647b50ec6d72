package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
)

func (h *Handler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAdminStats")
	defer span.End()

	stats, err := h.svc.Admin.Stats(ctx)
	if err != nil {
		h.fail(ctx, w, "get admin stats failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) ListAdminUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAdminUsers")
	defer span.End()

	users, err := h.svc.Admin.ListUsers(ctx)
	if err != nil {
		h.fail(ctx, w, "list admin users failed", err)
		return
	}

	out := make([]adminUserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserToDTO(u))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) AdjustUserPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdjustUserPoints")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req adjustPointsRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	userID := r.PathValue("userID")

	entry, err := h.svc.Points.Adjust(ctx, principal.UserID, userID, req.Points, req.Reason)
	if err != nil {
		h.fail(ctx, w, "adjust user points failed", err, "user_id", userID)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, ledgerEntryToDTO(entry))
}

func (h *Handler) ListAdminTickets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAdminTickets")
	defer span.End()

	status := ticket.Status(queryString(r, "status"))
	items, err := h.svc.Tickets.List(ctx, status)
	if err != nil {
		h.fail(ctx, w, "list admin tickets failed", err, "status", status)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, ticketsToDTO(items))
}

func (h *Handler) ApproveTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveTicket")
	defer span.End()

	var req approveTicketRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	ticketID := r.PathValue("ticketID")

	item, err := h.svc.Tickets.Approve(ctx, ticketID, req.Points)
	if err != nil {
		h.fail(ctx, w, "approve ticket failed", err, "ticket_id", ticketID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, ticketToDTO(item))
}

func (h *Handler) RejectTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectTicket")
	defer span.End()

	var req rejectTicketRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	ticketID := r.PathValue("ticketID")

	item, err := h.svc.Tickets.Reject(ctx, ticketID, req.Reason)
	if err != nil {
		h.fail(ctx, w, "reject ticket failed", err, "ticket_id", ticketID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, ticketToDTO(item))
}

func (h *Handler) RecalculateBadges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateBadges")
	defer span.End()

	result, err := h.svc.Badges.RecalculateAll(ctx)
	if err != nil {
		h.fail(ctx, w, "recalculate badges failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RecordMarketResolution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMarketResolution")
	defer span.End()

	var req recordResolutionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	marketID := r.PathValue("marketID")

	result, err := h.svc.Predictions.RecordResolution(ctx, marketID, *req.WinningOutcome)
	if err != nil {
		h.fail(ctx, w, "record market resolution failed", err, "market_id", marketID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, resolutionDTO{Market: marketToDTO(result.Market), Settled: result.Settled})
}
