package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/fan-identity/internal/domain/user"
	"github.com/riskibarqy/fan-identity/internal/usecase"
)

type stubVerifier struct {
	principal user.Principal
	err       error
	tokens    []string
}

func (s *stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	s.tokens = append(s.tokens, token)
	return s.principal, s.err
}

func principalEcho(t *testing.T, got *user.Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFromContext(r.Context())
		if !ok {
			t.Fatalf("expected principal in context")
		}
		*got = p
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth_BearerToken(t *testing.T) {
	verifier := &stubVerifier{principal: user.Principal{UserID: "user-1", Roles: []string{"fan"}}}
	var got user.Principal
	handler := RequireAuth(verifier, false, principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/v1/me/points", nil)
	req.Header.Set("Authorization", "Bearer  token-abc ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got.UserID != "user-1" {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if len(verifier.tokens) != 1 || verifier.tokens[0] != "token-abc" {
		t.Fatalf("unexpected verified tokens: %v", verifier.tokens)
	}
}

func TestRequireAuth_RejectsMalformedHeader(t *testing.T) {
	verifier := &stubVerifier{}
	handler := RequireAuth(verifier, false, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("next handler must not run")
	}))

	for _, header := range []string{"", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/v1/me/points", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
	if len(verifier.tokens) != 0 {
		t.Fatalf("verifier should not be called, got %v", verifier.tokens)
	}
}

func TestRequireAuth_VerifierErrorIsMapped(t *testing.T) {
	verifier := &stubVerifier{err: usecase.ErrDependencyUnavailable}
	handler := RequireAuth(verifier, false, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/me/points", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRequireAuth_DevHeaderOnlyWithBypass(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/me/points", nil)
	req.Header.Set(devUserHeader, "admin:ops-1")

	rec := httptest.NewRecorder()
	RequireAuth(nil, false, http.NotFoundHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bypass, got %d", rec.Code)
	}

	var got user.Principal
	rec = httptest.NewRecorder()
	RequireAuth(nil, true, principalEcho(t, &got)).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with bypass, got %d", rec.Code)
	}
	if got.UserID != "ops-1" || !got.IsAdmin() {
		t.Fatalf("unexpected dev principal: %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		principal *user.Principal
		want      int
	}{
		{name: "missing principal", want: http.StatusUnauthorized},
		{name: "fan", principal: &user.Principal{UserID: "u1"}, want: http.StatusForbidden},
		{name: "admin", principal: &user.Principal{UserID: "u2", Roles: []string{user.RoleAdmin}}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
			if tt.principal != nil {
				req = req.WithContext(withPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
