package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks whole-run metrics.
type RunMetrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastRunTime   prometheus.Gauge
	lastRunStatus prometheus.Gauge
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(namespace string, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of rule runs by outcome",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a rule run in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),

		lastRunTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the most recent run started",
			},
		),

		lastRunStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_success",
				Help:      "Whether the most recent run completed (1) or was aborted (0)",
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.lastRunTime,
		rm.lastRunStatus,
	)

	return rm
}

// RecordRun records one finished run.
func (rm *RunMetrics) RecordRun(outcome string, started time.Time, elapsed time.Duration) {
	rm.runsTotal.WithLabelValues(outcome).Inc()
	rm.runDuration.Observe(elapsed.Seconds())
	if !started.IsZero() {
		rm.lastRunTime.Set(float64(started.UnixNano()) / 1e9)
	}
	if outcome == "completed" {
		rm.lastRunStatus.Set(1)
	} else {
		rm.lastRunStatus.Set(0)
	}
}
