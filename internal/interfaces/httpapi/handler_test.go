package httpapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/idempotency"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/wallet"
	"github.com/riskibarqy/fan-identity/internal/platform/cache"
	"github.com/riskibarqy/fan-identity/internal/platform/id"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
	"github.com/riskibarqy/fan-identity/internal/usecase"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       any            `json:"data"`
	Error      map[string]any `json:"error"`
}

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()

	now := time.Now().UTC()
	store, err := memory.NewStore(memory.Seed{
		Tags:    tag.DefaultCatalog(now),
		Markets: memory.SeedMarkets(now),
	})
	require.NoError(t, err)

	logger := logging.NewNop()
	ids := id.NewUUIDGenerator()
	idem := idempotency.NewMemoryStore()
	reg := cfg.Metrics
	wallets, err := wallet.NewKeystore(wallet.Config{Dir: t.TempDir(), Passphrase: "router-test", LightScrypt: true}, logger)
	require.NoError(t, err)

	pointsSvc := usecase.NewPointsService(store.Points, ids, nil, reg, logger)
	checkinSvc := usecase.NewCheckinService(pointsSvc, idem, checkin.DefaultPolicy(), reg, logger)
	leaderboardSvc := usecase.NewLeaderboardService(store.Points, store.Profiles, store.UserTags, store.Badges, checkinSvc, cache.NewStore(time.Minute), logger)

	handler := NewHandler(Services{
		Points:      pointsSvc,
		Checkins:    checkinSvc,
		Badges:      usecase.NewBadgeService(store.Badges, store.Points, checkinSvc, ids, badge.DefaultThresholds(), 2, reg, logger),
		Leaderboard: leaderboardSvc,
		Tags:        usecase.NewTagService(store.Tags, store.UserTags, true, leaderboardSvc, logger),
		Predictions: usecase.NewPredictionService(store.Markets, store.Predictions, pointsSvc, idem, ids, 50, reg, logger),
		Tickets:     usecase.NewTicketService(store.Tickets, pointsSvc, nil, ids, reg, logger),
		Profiles:    usecase.NewProfileService(store.Profiles, wallets, ids, leaderboardSvc, logger),
		Admin:       usecase.NewAdminService(store.Points, store.Profiles, store.Tickets, logger),
		Waitlist:    usecase.NewWaitlistService(store.Waitlist, nil, ids, reg, logger),
	}, logger)

	cfg.AuthDevBypass = true
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
		cfg.RateLimitBurst = 100
	}
	return NewRouter(handler, nil, cfg, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, userID, body string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(devUserHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	}
	return rec.Code, out
}

func dataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", env.Data)
	return m
}

func dataList(t *testing.T, env envelope) []any {
	t.Helper()
	items, ok := env.Data.([]any)
	require.True(t, ok, "expected array data, got %T", env.Data)
	return items
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})
	status, body := doJSON(t, router, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", dataMap(t, body)["status"])
}

func TestRouter_MeRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})
	status, body := doJSON(t, router, http.MethodGet, "/v1/me/points", "", "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHENTICATED", body.Error["status"])
}

func TestRouter_CheckinIsIdempotentWithinDay(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})

	status, body := doJSON(t, router, http.MethodPost, "/v1/me/checkin", "fan-a", "")
	require.Equal(t, http.StatusCreated, status)
	first := dataMap(t, body)
	require.Equal(t, true, first["awarded"])
	require.EqualValues(t, 10, first["points_awarded"])
	firstStatus := first["status"].(map[string]any)
	require.EqualValues(t, 1, firstStatus["streak"])
	require.Equal(t, false, firstStatus["can_checkin"])
	require.Equal(t, string(checkin.StateAlreadyCheckedToday), firstStatus["state"])

	status, body = doJSON(t, router, http.MethodPost, "/v1/me/checkin", "fan-a", `{"team_type":"club"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, dataMap(t, body)["awarded"])

	status, body = doJSON(t, router, http.MethodGet, "/v1/me/points", "fan-a", "")
	require.Equal(t, http.StatusOK, status)
	summary := dataMap(t, body)
	require.EqualValues(t, 10, summary["total_points"])
	require.Len(t, summary["recent"], 1)
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})

	status, body := doJSON(t, router, http.MethodGet, "/v1/admin/stats", "fan-a", "")
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "PERMISSION_DENIED", body.Error["status"])

	status, body = doJSON(t, router, http.MethodGet, "/v1/admin/stats", "admin:ops-1", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, dataMap(t, body), "total_users")
}

func TestRouter_AdminAdjustsUserPoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})

	status, _ := doJSON(t, router, http.MethodPost, "/v1/admin/users/fan-z/points", "fan-a", `{"points":50,"reason":"promo"}`)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, router, http.MethodPost, "/v1/admin/users/fan-z/points", "admin:ops-1", `{"points":0,"reason":"promo"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, body := doJSON(t, router, http.MethodPost, "/v1/admin/users/fan-z/points", "admin:ops-1", `{"points":50,"reason":"promo"}`)
	require.Equal(t, http.StatusCreated, status)
	entry := dataMap(t, body)
	require.Equal(t, "admin_adjustment", entry["action_type"])
	require.Equal(t, "ops-1", entry["metadata"].(map[string]any)["admin_id"])

	status, body = doJSON(t, router, http.MethodGet, "/v1/me/points", "fan-z", "")
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 50, dataMap(t, body)["total_points"])
}

func TestRouter_SelectClubFillsChainAndFiltersLeaderboard(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})

	status, body := doJSON(t, router, http.MethodPost, "/v1/me/tags", "fan-b", `{"tag_id":"club-2"}`)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, dataList(t, body), 3)

	status, body = doJSON(t, router, http.MethodGet, "/v1/me/preferences", "fan-b", "")
	require.Equal(t, http.StatusOK, status)
	prefs := dataMap(t, body)
	require.Equal(t, true, prefs["has_complete_preferences"])
	require.Equal(t, "Basketball", prefs["sport"].(map[string]any)["name"])

	status, _ = doJSON(t, router, http.MethodPost, "/v1/me/checkin", "fan-b", "")
	require.Equal(t, http.StatusCreated, status)
	status, _ = doJSON(t, router, http.MethodPost, "/v1/me/checkin", "fan-c", "")
	require.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, router, http.MethodGet, "/v1/leaderboard?sport=Basketball", "", "")
	require.Equal(t, http.StatusOK, status)
	entries := dataList(t, body)
	require.Len(t, entries, 1)
	require.Equal(t, "fan-b", entries[0].(map[string]any)["user_id"])
	require.EqualValues(t, 1, entries[0].(map[string]any)["rank"])

	status, body = doJSON(t, router, http.MethodGet, "/v1/me/rank?sport=Basketball", "fan-b", "")
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, dataMap(t, body)["rank"])

	status, body = doJSON(t, router, http.MethodGet, "/v1/leaderboard?limit=abc", "", "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_ARGUMENT", body.Error["status"])
}

func TestRouter_SubmitPredictionIsIdempotent(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})
	payload := `{"market_id":"market-1","outcome":1,"amount":5}`

	status, body := doJSON(t, router, http.MethodPost, "/v1/me/predictions", "fan-a", payload)
	require.Equal(t, http.StatusCreated, status)
	first := dataMap(t, body)
	require.EqualValues(t, 50, first["points_awarded"])

	status, body = doJSON(t, router, http.MethodPost, "/v1/me/predictions", "fan-a", payload)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, first["id"], dataMap(t, body)["id"])

	status, _ = doJSON(t, router, http.MethodPost, "/v1/me/predictions", "fan-a", `{"market_id":"market-2","amount":5}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, router, http.MethodPost, "/v1/me/predictions", "fan-a", `{"market_id":"missing","outcome":0,"amount":5}`)
	require.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, router, http.MethodPost, "/v1/admin/markets/market-1/resolution", "admin:ops-1", `{"winning_outcome":1}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, dataMap(t, body)["settled"])

	status, body = doJSON(t, router, http.MethodGet, "/v1/me/predictions?market_id=market-1", "fan-a", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, dataMap(t, body)["is_winning_prediction"])
}

func TestRouter_UploadTicketAutoApproves(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="ticket.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nADMIT ONE TICKET Section 112 Row C Seat 14\x00\x00"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/me/tickets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(devUserHeader, "fan-a")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body envelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	item := dataMap(t, body)
	require.Equal(t, "approved", item["status"])
	require.EqualValues(t, 100, item["points_awarded"])

	status, _ := doJSON(t, router, http.MethodPost, "/v1/me/tickets", "fan-a", `{}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_ProfileAndWallet(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{})

	status, body := doJSON(t, router, http.MethodPatch, "/v1/me/profile", "fan-a", `{"display_name":"Ultra","country":"id"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Ultra", dataMap(t, body)["display_name"])
	require.Equal(t, "ID", dataMap(t, body)["country"])

	status, body = doJSON(t, router, http.MethodPost, "/v1/me/wallet", "fan-a", "")
	require.Equal(t, http.StatusOK, status)
	address := dataMap(t, body)["wallet_address"]
	require.NotEmpty(t, address)
	require.Equal(t, "custodial", dataMap(t, body)["wallet_provider"])

	status, body = doJSON(t, router, http.MethodPost, "/v1/me/wallet", "fan-a", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, address, dataMap(t, body)["wallet_address"])

	status, _ = doJSON(t, router, http.MethodPost, "/v1/me/wallet", "fan-a", `{"address":"not-a-wallet"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_WaitlistRejectsDuplicatesAndRateLimits(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 2})
	payload := `{"firstname":"Ana","lastname":"Lee","email":"Ana@Example.com"}`

	status, body := doJSON(t, router, http.MethodPost, "/v1/cta", "", payload)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "ana@example.com", dataMap(t, body)["email"])

	status, _ = doJSON(t, router, http.MethodPost, "/v1/cta", "", payload)
	require.Equal(t, http.StatusConflict, status)

	status, body = doJSON(t, router, http.MethodPost, "/v1/cta", "", payload)
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, "RESOURCE_EXHAUSTED", body.Error["status"])
}

func TestRouter_WaitlistRateLimitKeysOnPeerAddress(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 2})
	join := func(i int) int {
		payload := fmt.Sprintf(`{"firstname":"Fan","lastname":"Number%d","email":"fan%d@example.com"}`, i, i)
		req := httptest.NewRequest(http.MethodPost, "/v1/cta", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("Fly-Client-IP", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusCreated, join(1))
	require.Equal(t, http.StatusCreated, join(2))
	require.Equal(t, http.StatusTooManyRequests, join(3))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, RouterConfig{Metrics: metrics.New()})
	status, _ := doJSON(t, router, http.MethodGet, "/v1/tags?type=sport", "", "")
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `fan_http_requests_total{method="GET",route="GET /v1/tags",status="200"} 1`)
}
