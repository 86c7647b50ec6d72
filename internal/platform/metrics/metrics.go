package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fan"

// Registry owns the service collectors. All methods are safe on a nil
// receiver so callers can run without metrics in tests.
type Registry struct {
	registry *prometheus.Registry

	pointsAwarded   *prometheus.CounterVec
	pointsValue     *prometheus.CounterVec
	checkins        *prometheus.CounterVec
	predictions     *prometheus.CounterVec
	badgesAwarded   *prometheus.CounterVec
	ticketUploads   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	waitlistForward *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		pointsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Ledger entries appended, by action type.",
		}, []string{"action_type"}),
		pointsValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_value_total",
			Help:      "Sum of points appended to the ledger, by action type.",
		}, []string{"action_type"}),
		checkins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Check-in attempts, by result.",
		}, []string{"result"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction submissions, by result.",
		}, []string{"result"}),
		badgesAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_awarded_total",
			Help:      "Badges granted, by badge type.",
		}, []string{"badge_type"}),
		ticketUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_uploads_total",
			Help:      "Ticket uploads, by resulting status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		waitlistForward: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_forward_total",
			Help:      "Waitlist signups forwarded to the CTA endpoint, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		r.pointsAwarded,
		r.pointsValue,
		r.checkins,
		r.predictions,
		r.badgesAwarded,
		r.ticketUploads,
		r.httpRequests,
		r.httpDuration,
		r.waitlistForward,
	)
	return r
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

func (r *Registry) PointsAwarded(actionType string, points int64) {
	if r == nil {
		return
	}
	r.pointsAwarded.WithLabelValues(actionType).Inc()
	r.pointsValue.WithLabelValues(actionType).Add(float64(points))
}

func (r *Registry) Checkin(result string) {
	if r == nil {
		return
	}
	r.checkins.WithLabelValues(result).Inc()
}

func (r *Registry) Prediction(result string) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(result).Inc()
}

func (r *Registry) BadgeAwarded(badgeType string) {
	if r == nil {
		return
	}
	r.badgesAwarded.WithLabelValues(badgeType).Inc()
}

func (r *Registry) TicketUploaded(status string) {
	if r == nil {
		return
	}
	r.ticketUploads.WithLabelValues(status).Inc()
}

func (r *Registry) WaitlistForwarded(ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.waitlistForward.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
