package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatewarden_requests_total",
		Help: "Total number of requests evaluated by the inspection pipeline",
	})
	blockedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatewarden_blocked_total",
		Help: "Total number of requests blocked, by reason",
	}, []string{"reason"})
	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatewarden_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(requestsTotal, blockedTotal, rateLimitedTotal)
}

// IncRequest increments the evaluated requests counter.
func IncRequest() { requestsTotal.Inc() }

// IncBlocked increments the blocked requests counter for a reason.
func IncBlocked(reason string) { blockedTotal.WithLabelValues(reason).Inc() }

// IncRateLimited increments the rate-limited requests counter.
func IncRateLimited() { rateLimitedTotal.Inc() }
