// Package metrics exposes Prometheus instruments for the settleup server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "settleup"

// Scope labels for summary metrics.
const (
	ScopeAll   = "all"
	ScopeGroup = "group"
)

// Metrics holds the server's instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	rpcRequests          *prometheus.CounterVec
	rpcDuration          *prometheus.HistogramVec
	summariesComputed    *prometheus.CounterVec
	summaryDuration      prometheus.Histogram
	droppedContributions prometheus.Counter
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
}

// New creates the instruments and registers them with reg. A nil reg
// creates unregistered instruments.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		summariesComputed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_computed_total",
			Help:      "Member settlement summaries computed, by scope.",
		}, []string{"scope"}),
		summaryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Time spent computing one member summary.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		droppedContributions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_contributions_total",
			Help:      "Counterparty contributions dropped because the counterparty is not a known member.",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_hits_total",
			Help:      "Summary cache hits.",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_misses_total",
			Help:      "Summary cache misses.",
		}),
	}
}

func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSummary(scope string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.summariesComputed.WithLabelValues(scope).Inc()
	m.summaryDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) AddDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedContributions.Add(float64(n))
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}
