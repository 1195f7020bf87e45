package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleMetrics tracks per-rule metrics.
type RuleMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	violationsTotal    *prometheus.CounterVec
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(namespace string, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total number of processed rule declarations by final state",
			},
			[]string{"rule", "state"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rule_evaluation_duration_seconds",
				Help:      "Duration of rule construction and evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"rule"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_violations_total",
				Help:      "Total number of violations reported by rules",
			},
			[]string{"rule"},
		),
	}

	registry.MustRegister(
		rm.evaluationsTotal,
		rm.evaluationDuration,
		rm.violationsTotal,
	)

	return rm
}

// RecordEvaluation counts one processed declaration.
func (rm *RuleMetrics) RecordEvaluation(rule, state string) {
	rm.evaluationsTotal.WithLabelValues(rule, state).Inc()
}

// RecordDuration observes the time spent evaluating a rule.
func (rm *RuleMetrics) RecordDuration(rule string, d time.Duration) {
	rm.evaluationDuration.WithLabelValues(rule).Observe(d.Seconds())
}

// RecordViolations adds n violations for a rule.
func (rm *RuleMetrics) RecordViolations(rule string, n int) {
	rm.violationsTotal.WithLabelValues(rule).Add(float64(n))
}
