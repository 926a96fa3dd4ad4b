package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "daydream_mcp_build_info",
			Help: "Build information",
		},
		[]string{"date", "sha", "version"},
	)

	toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daydream_mcp_tool_calls_total",
			Help: "Number of tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "daydream_mcp_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	keyRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "daydream_mcp_key_rejected_total",
			Help: "Requests rejected because upstream refused the API key",
		},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "daydream_mcp_upstream_request_duration_seconds",
			Help:    "Duration of upstream Daydream API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, toolCalls, rateLimited, keyRejected, upstreamDuration)
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordToolCall increments the tool call counter.
func RecordToolCall(tool string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordRateLimited counts a rate-limited request.
func RecordRateLimited() { rateLimited.Inc() }

// RecordKeyRejected counts a request with a key upstream refused.
func RecordKeyRejected() { keyRejected.Inc() }

// ObserveUpstreamRequest records the duration of an upstream call.
func ObserveUpstreamRequest(method string, d time.Duration) {
	upstreamDuration.WithLabelValues(method).Observe(d.Seconds())
}
