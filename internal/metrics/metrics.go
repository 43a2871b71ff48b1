// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting botctl lifecycle metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 1. Internal State (Source of Truth)
var (
	starts        int64
	startsRefused int64
	updates       int64
	updatesFailed int64
	statusChecks  int64
	lastOperation int64
)

const counterInc int64 = 1

// 2. Prometheus Collectors
var (
	promStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botctl_starts_total",
			Help: "Total successful service starts",
		},
	)
	promStartsRefused = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botctl_starts_refused_total",
			Help: "Total starts refused by precondition checks",
		},
	)
	promUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botctl_updates_total",
			Help: "Total successful updates",
		},
	)
	promUpdatesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botctl_updates_failed_total",
			Help: "Total failed update attempts",
		},
	)
	promStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botctl_update_step_failures_total",
			Help: "Update failures by pipeline step",
		},
		[]string{"step"},
	)
	promStatusChecks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botctl_status_checks_total",
			Help: "Total status check invocations",
		},
	)
	promUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "botctl_update_duration_seconds",
			Help: "Duration of full update pipelines",
			Buckets: []float64{
				1,
				5,
				15,
				30,
				60,
				120,
				300,
				600,
			},
		},
	)
	promLastOperation = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "botctl_last_operation_timestamp_seconds",
			Help: "Unix timestamp of the last lifecycle operation",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promStarts,
		promStartsRefused,
		promUpdates,
		promUpdatesFailed,
		promStepFailures,
		promStatusChecks,
		promUpdateDuration,
		promLastOperation,
	)
}

// 3. Public API (updates both atomic counters and Prometheus)

// IncStart increments the counter for successful starts.
func IncStart() {
	atomic.AddInt64(&starts, counterInc)
	promStarts.Inc()
}

// IncStartRefused increments the counter for starts rejected by a
// precondition check (already running, missing env file).
func IncStartRefused() {
	atomic.AddInt64(&startsRefused, counterInc)
	promStartsRefused.Inc()
}

// IncUpdate increments the counter for successful updates.
func IncUpdate() {
	atomic.AddInt64(&updates, counterInc)
	promUpdates.Inc()
}

// IncUpdateFailed increments the counter for failed updates, attributing the
// failure to the named pipeline step.
func IncUpdateFailed(step string) {
	atomic.AddInt64(&updatesFailed, counterInc)
	promUpdatesFailed.Inc()
	promStepFailures.WithLabelValues(step).Inc()
}

// IncStatusCheck increments the status check counter.
func IncStatusCheck() {
	atomic.AddInt64(&statusChecks, counterInc)
	promStatusChecks.Inc()
}

// ObserveUpdateDuration records the duration (in seconds) of a full update
// pipeline in the Prometheus histogram.
func ObserveUpdateDuration(seconds float64) {
	promUpdateDuration.Observe(seconds)
}

// SetLastOperation stores the provided time as the last operation timestamp
// and updates the corresponding Prometheus gauge.
func SetLastOperation(t time.Time) {
	atomic.StoreInt64(&lastOperation, t.Unix())
	promLastOperation.Set(float64(t.Unix()))
}

// 4. JSON Snapshot (for scripts and dashboards without Prometheus)

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	Starts             int64  `json:"starts"`
	StartsRefused      int64  `json:"starts_refused"`
	Updates            int64  `json:"updates"`
	UpdatesFailed      int64  `json:"updates_failed"`
	StatusChecks       int64  `json:"status_checks"`
	LastOperation      int64  `json:"last_operation_timestamp"`
	LastOperationHuman string `json:"last_operation_human"`
}

// GetSnapshot returns a StatsSnapshot with the current values of all
// internal counters and timestamps.
func GetSnapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&lastOperation)
	return StatsSnapshot{
		Starts:             atomic.LoadInt64(&starts),
		StartsRefused:      atomic.LoadInt64(&startsRefused),
		Updates:            atomic.LoadInt64(&updates),
		UpdatesFailed:      atomic.LoadInt64(&updatesFailed),
		StatusChecks:       atomic.LoadInt64(&statusChecks),
		LastOperation:      ts,
		LastOperationHuman: time.Unix(ts, 0).Format(time.RFC3339),
	}
}

// 5. Handlers

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler returns an HTTP handler that serves the current metrics as a
// JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
