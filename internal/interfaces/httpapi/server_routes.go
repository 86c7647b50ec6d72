package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

type authMiddleware struct {
	verifier  TokenVerifier
	devBypass bool
}

func (a authMiddleware) user(fn http.HandlerFunc) http.Handler {
	return RequireAuth(a.verifier, a.devBypass, fn)
}

func (a authMiddleware) admin(fn http.HandlerFunc) http.Handler {
	return RequireAuth(a.verifier, a.devBypass, RequireAdmin(fn))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, reg *metrics.Registry) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if reg != nil {
		mux.Handle("GET /metrics", reg.Handler())
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.Handle("POST /v1/cta", RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies, http.HandlerFunc(handler.JoinWaitlist)))
	mux.HandleFunc("GET /v1/tags", handler.ListTags)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/markets", handler.ListMarkets)
}

func registerFanRoutes(mux *http.ServeMux, handler *Handler, auth authMiddleware) {
	mux.Handle("GET /v1/me/points", auth.user(handler.GetMyPoints))
	mux.Handle("GET /v1/me/checkin", auth.user(handler.GetCheckinStatus))
	mux.Handle("POST /v1/me/checkin", auth.user(handler.PerformCheckin))
	mux.Handle("GET /v1/me/badges", auth.user(handler.ListMyBadges))
	mux.Handle("POST /v1/me/badges/evaluate", auth.user(handler.EvaluateMyBadges))
	mux.Handle("GET /v1/me/rank", auth.user(handler.GetMyRank))
	mux.Handle("GET /v1/me/tags", auth.user(handler.ListMyTags))
	mux.Handle("POST /v1/me/tags", auth.user(handler.SelectTag))
	mux.Handle("DELETE /v1/me/tags/{tagID}", auth.user(handler.RemoveTag))
	mux.Handle("GET /v1/me/preferences", auth.user(handler.GetMyPreferences))
	mux.Handle("GET /v1/me/predictions", auth.user(handler.ListMyPredictions))
	mux.Handle("POST /v1/me/predictions", auth.user(handler.SubmitPrediction))
	mux.Handle("GET /v1/me/tickets", auth.user(handler.ListMyTickets))
	mux.Handle("POST /v1/me/tickets", auth.user(handler.UploadTicket))
	mux.Handle("GET /v1/me/profile", auth.user(handler.GetMyProfile))
	mux.Handle("PATCH /v1/me/profile", auth.user(handler.UpdateMyProfile))
	mux.Handle("POST /v1/me/wallet", auth.user(handler.SetupWallet))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, auth authMiddleware) {
	mux.Handle("GET /v1/admin/stats", auth.admin(handler.GetAdminStats))
	mux.Handle("GET /v1/admin/users", auth.admin(handler.ListAdminUsers))
	mux.Handle("POST /v1/admin/users/{userID}/points", auth.admin(handler.AdjustUserPoints))
	mux.Handle("GET /v1/admin/tickets", auth.admin(handler.ListAdminTickets))
	mux.Handle("POST /v1/admin/tickets/{ticketID}/approve", auth.admin(handler.ApproveTicket))
	mux.Handle("POST /v1/admin/tickets/{ticketID}/reject", auth.admin(handler.RejectTicket))
	mux.Handle("POST /v1/admin/badges/recalculate", auth.admin(handler.RecalculateBadges))
	mux.Handle("POST /v1/admin/markets/{marketID}/resolution", auth.admin(handler.RecordMarketResolution))
}
