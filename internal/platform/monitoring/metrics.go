package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels used with BackendCalls.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeCacheHit = "cache_hit"
)

var (
	BackendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virtual_doctor_backend_calls_total",
			Help: "Calls to external backends by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	BackendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "virtual_doctor_backend_call_duration_seconds",
			Help:    "Duration of calls to external backends",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	RecordsAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virtual_doctor_records_appended_total",
			Help: "Consultation records appended to the patient store",
		},
		[]string{"input_method", "persisted"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(BackendCalls)
		prometheus.MustRegister(BackendDuration)
		prometheus.MustRegister(RecordsAppended)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBackendCall counts one call and records its latency.
func ObserveBackendCall(backend, outcome string, started time.Time) {
	BackendCalls.WithLabelValues(backend, outcome).Inc()
	if !started.IsZero() {
		BackendDuration.WithLabelValues(backend).Observe(time.Since(started).Seconds())
	}
}
