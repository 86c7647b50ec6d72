package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fan-identity/internal/domain/profile"
)

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.svc.Profiles.GetOrCreate(ctx, principal)
	if err != nil {
		h.fail(ctx, w, "get profile failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileToDTO(item))
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyProfile")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateProfileRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.svc.Profiles.GetOrCreate(ctx, principal); err != nil {
		h.fail(ctx, w, "get profile failed", err, "user_id", principal.UserID)
		return
	}
	if req.Country != nil {
		upper := strings.ToUpper(*req.Country)
		req.Country = &upper
	}

	item, err := h.svc.Profiles.Update(ctx, principal.UserID, profile.Update{
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Country:     req.Country,
	})
	if err != nil {
		h.fail(ctx, w, "update profile failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileToDTO(item))
}

// SetupWallet links the given address, or provisions a custodial wallet
// when no address is sent.
func (h *Handler) SetupWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetupWallet")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req walletRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.svc.Profiles.GetOrCreate(ctx, principal); err != nil {
		h.fail(ctx, w, "get profile failed", err, "user_id", principal.UserID)
		return
	}

	var item profile.Profile
	if strings.TrimSpace(req.Address) == "" {
		item, err = h.svc.Profiles.CreateWallet(ctx, principal.UserID)
	} else {
		item, err = h.svc.Profiles.LinkWallet(ctx, principal.UserID, req.Address, req.Provider)
	}
	if err != nil {
		h.fail(ctx, w, "setup wallet failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileToDTO(item))
}
