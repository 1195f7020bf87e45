package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"maps-workflow/mapcheck/pkg/engine"
)

// DefaultMaxRules is the number of distinct rule label values tracked
// before new names are folded into OverflowLabel.
const DefaultMaxRules = 1000

// OverflowLabel replaces rule names beyond the cardinality limit.
const OverflowLabel = "other"

// unnamedLabel is used for declarations that failed validation before a
// name could be read.
const unnamedLabel = "unnamed"

// Collector records rule and run metrics. It implements engine.Reporter.
type Collector struct {
	engine.NopReporter

	registry *prometheus.Registry

	rules *RuleMetrics
	runs  *RunMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics under the
// given namespace. If registry is nil, a new registry is created.
//
// Example:
//
//	collector := metrics.NewCollector("mapcheck", prometheus.NewRegistry())
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "mapcheck"
	}

	return &Collector{
		registry:           registry,
		rules:              NewRuleMetrics(namespace, registry),
		runs:               NewRunMetrics(namespace, registry),
		cardinalityLimiter: NewCardinalityLimiter(DefaultMaxRules),
	}
}

// Registry returns the registry the collector's metrics are registered in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RuleCompleted records the final state of one declaration.
func (c *Collector) RuleCompleted(res engine.RuleResult) {
	name := c.ruleLabel(res.Name)

	c.rules.RecordEvaluation(name, res.State.String())

	switch res.State {
	case engine.StatePassed, engine.StateViolated, engine.StateErrored:
		c.rules.RecordDuration(name, res.Elapsed)
	}

	if n := len(res.Violations); n > 0 {
		c.rules.RecordViolations(name, n)
	}
}

// RunFinished records the outcome of a run.
func (c *Collector) RunFinished(result *engine.Result) {
	if result == nil {
		return
	}
	c.runs.RecordRun(result.Outcome.String(), result.Started, result.Elapsed)
}

func (c *Collector) ruleLabel(name string) string {
	if name == "" {
		return unnamedLabel
	}
	if !c.cardinalityLimiter.Allow(name) {
		return OverflowLabel
	}
	return name
}

// CardinalityLimiter bounds the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value was
// already seen or if the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of tracked label values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
