package httpapi

import (
	"net/http"
	"net/netip"

	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/metrics"
)

// RouterConfig carries the transport settings for NewRouter.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthDevBypass      bool
	RateLimitRPS       float64
	RateLimitBurst     int
	TrustedProxies     []netip.Prefix
	Metrics            *metrics.Registry
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	cfg RouterConfig,
	logger *logging.Logger,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	auth := authMiddleware{verifier: verifier, devBypass: cfg.AuthDevBypass}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.Metrics)
	registerPublicRoutes(mux, handler, cfg)
	registerFanRoutes(mux, handler, auth)
	registerAdminRoutes(mux, handler, auth)

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, RequestMetrics(cfg.Metrics, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
