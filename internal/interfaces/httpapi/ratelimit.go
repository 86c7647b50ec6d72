package httpapi

import (
	"errors"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepSize = 4096
)

// clientRateLimiter hands out one token bucket per client IP.
type clientRateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientLimiter
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientRateLimiter(rps float64, burst int) *clientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientRateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (l *clientRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) >= limiterSweepSize {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
	}

	client, ok := l.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// RateLimit rejects requests once a client IP exhausts its bucket. The client
// IP comes from forwarded headers only when the peer is in trustedProxies.
func RateLimit(rps float64, burst int, trustedProxies []netip.Prefix, next http.Handler) http.Handler {
	limiter := newClientRateLimiter(rps, burst)
	return rateLimit(limiter, newClientIPResolver(trustedProxies), next)
}

func rateLimit(limiter *clientRateLimiter, clients clientIPResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RateLimit")
		defer span.End()

		if !limiter.allow(clients.resolve(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(ctx, w, errRateLimited)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
