package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/halloran/ap-gateway-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	remoteErrors    *prometheus.CounterVec
	onboardings     *prometheus.CounterVec
	documents       *prometheus.CounterVec
	tokenCache      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apgw_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		remoteErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apgw_remote_errors_total",
				Help: "Total errors from the remote ledger API.",
			},
			[]string{"operation"},
		),
		onboardings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apgw_onboardings_total",
				Help: "Onboarding completions by outcome.",
			},
			[]string{"outcome"},
		),
		documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apgw_documents_total",
				Help: "Onboarding document persistence results.",
			},
			[]string{"result"},
		),
		tokenCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apgw_token_cache_total",
				Help: "Session token cache lookups by result.",
			},
			[]string{"result"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apgw_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRemoteError increments the remote ledger error counter.
func (m *Metrics) IncrRemoteError(operation string) {
	m.remoteErrors.WithLabelValues(operation).Inc()
}

// IncrOnboarding records an onboarding outcome ("new" or "repeat").
func (m *Metrics) IncrOnboarding(outcome string) {
	m.onboardings.WithLabelValues(outcome).Inc()
}

// IncrDocumentSaved increments the saved-documents counter.
func (m *Metrics) IncrDocumentSaved() {
	m.documents.WithLabelValues("saved").Inc()
}

// IncrDocumentFailed increments the failed-documents counter.
func (m *Metrics) IncrDocumentFailed() {
	m.documents.WithLabelValues("failed").Inc()
}

// IncrTokenCacheHit records a session token served from cache.
func (m *Metrics) IncrTokenCacheHit() {
	m.tokenCache.WithLabelValues("hit").Inc()
}

// IncrTokenCacheMiss records a session token minted remotely.
func (m *Metrics) IncrTokenCacheMiss() {
	m.tokenCache.WithLabelValues("miss").Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetSnapshot computes the gateway metrics summary for the
// GET /v1/metrics/summary endpoint from the cumulative counters.
func (m *Metrics) GetSnapshot() *domain.GatewayMetrics {
	success := getCounterValue(m.requestsTotal, "success")
	failed := getCounterValue(m.requestsTotal, "error")
	total := success + failed

	hits := getCounterValue(m.tokenCache, "hit")
	misses := getCounterValue(m.tokenCache, "miss")

	errorRate := float64(0)
	if total > 0 {
		errorRate = failed / total
	}
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	remoteErrs := m.sumFamily("apgw_remote_errors_total")

	return &domain.GatewayMetrics{
		TotalRequests:     int64(total),
		ErrorRate:         errorRate,
		RemoteErrors:      int64(remoteErrs),
		OnboardingsNew:    int64(getCounterValue(m.onboardings, "new")),
		OnboardingsRepeat: int64(getCounterValue(m.onboardings, "repeat")),
		DocumentsSaved:    int64(getCounterValue(m.documents, "saved")),
		DocumentsFailed:   int64(getCounterValue(m.documents, "failed")),
		TokenCacheHitRate: hitRate,
		Period:            "all_time",
	}
}

// sumFamily totals a counter family across all label values.
func (m *Metrics) sumFamily(name string) float64 {
	families, err := m.Registry.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if metric.Counter != nil && metric.Counter.Value != nil {
				total += *metric.Counter.Value
			}
		}
	}
	return total
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
