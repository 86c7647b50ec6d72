package cta

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
	"github.com/riskibarqy/fan-identity/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errCTATransient = crerr.New("cta transient failure")

type Config struct {
	BaseURL        string
	Retries        int
	RetryBackoff   time.Duration
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Forwarder posts waitlist signups to the marketing CTA endpoint.
type Forwarder struct {
	client       *http.Client
	endpoint     string
	retries      int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
}

func NewForwarder(cfg Config, logger *logging.Logger) (*Forwarder, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid CTA_BASE_URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Forwarder{
		client:       &http.Client{Timeout: timeout},
		endpoint:     baseURL + "/cta",
		retries:      max(cfg.Retries, 0),
		retryBackoff: backoff,
		logger:       logger.Named("cta"),
		breaker:      resilience.NewCircuitBreaker("cta", cfg.CircuitBreaker),
	}, nil
}

type ctaPayload struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

func (f *Forwarder) Forward(ctx context.Context, s waitlist.Signup) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(ctaPayload{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}); err != nil {
		return crerr.Wrap(err, "marshal cta payload")
	}
	body := buf.Bytes()

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("cta.endpoint", f.endpoint),
			attribute.String("cta.signup_id", s.ID),
		)
	}

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return crerr.Wrap(ctx.Err(), "forward cta signup")
			case <-time.After(f.retryBackoff * time.Duration(attempt)):
			}
		}

		lastErr = f.breaker.Do(ctx, func(ctx context.Context) error {
			return f.post(ctx, body)
		})
		if lastErr == nil {
			f.logger.InfoContext(ctx, "cta signup forwarded", "signup_id", s.ID, "attempt", attempt+1)
			return nil
		}
		if stderrors.Is(lastErr, resilience.ErrCircuitOpen) {
			f.logger.WarnContext(ctx, "cta circuit breaker rejected request", "state", string(f.breaker.State()))
			return crerr.Wrap(lastErr, "cta endpoint is temporarily unavailable")
		}
		if !crerr.Is(lastErr, errCTATransient) {
			return lastErr
		}
		f.logger.WarnContext(ctx, "cta forward attempt failed", "signup_id", s.ID, "attempt", attempt+1, "error", lastErr)
	}

	return crerr.Wrapf(lastErr, "forward cta signup after %d attempts", f.retries+1)
}

func (f *Forwarder) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create cta request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return crerr.Mark(crerr.Wrapf(err, "post cta endpoint=%s", f.endpoint), errCTATransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	callErr := crerr.Newf("post cta status=%d endpoint=%s body=%s", resp.StatusCode, f.endpoint, strings.TrimSpace(string(raw)))
	if isRetryableStatus(resp.StatusCode) {
		return crerr.Mark(callErr, errCTATransient)
	}
	return callErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

var _ waitlist.Forwarder = (*Forwarder)(nil)
