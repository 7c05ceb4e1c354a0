// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "donationhub",
		Name:      "auth_attempts_total",
		Help:      "Signup and login attempts by outcome.",
	}, []string{"op", "outcome"})

	guardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "donationhub",
		Name:      "guard_rejections_total",
		Help:      "Requests stopped by the access guard.",
	}, []string{"reason"})

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "donationhub",
		Name:      "upstream_requests_total",
		Help:      "Calls forwarded to the donation API.",
	}, []string{"op", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "donationhub",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of calls to the donation API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)

// AuthAttempt counts a signup or login result.
func AuthAttempt(op, outcome string) {
	authAttempts.WithLabelValues(op, outcome).Inc()
}

// GuardRejected counts a request rejected by the access guard.
func GuardRejected(reason string) {
	guardRejections.WithLabelValues(reason).Inc()
}

// UpstreamRequest records one donation API call.
func UpstreamRequest(op string, err error, took time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequests.WithLabelValues(op, outcome).Inc()
	upstreamDuration.WithLabelValues(op).Observe(took.Seconds())
}
