package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/rules"
)

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector("test", registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}

	if NewCollector("", nil).Registry() == nil {
		t.Error("Expected a registry to be created")
	}
}

func TestCollector_RuleCompleted(t *testing.T) {
	collector := NewCollector("test", prometheus.NewRegistry())

	results := []engine.RuleResult{
		{Name: "size", State: engine.StatePassed, Elapsed: 2 * time.Millisecond},
		{Name: "size", State: engine.StatePassed, Elapsed: 3 * time.Millisecond},
		{Name: "layers", State: engine.StateViolated, Elapsed: time.Millisecond, Violations: []rules.Violation{
			{Message: "too many layers"},
			{Message: "empty layer"},
		}},
		{Name: "name", State: engine.StateErrored, Elapsed: time.Millisecond},
		{Name: "after", State: engine.StateBlocked},
		{Name: "", State: engine.StateInvalid},
	}
	for _, res := range results {
		collector.RuleCompleted(res)
	}

	tests := []struct {
		rule  string
		state string
		want  float64
	}{
		{rule: "size", state: "passed", want: 2},
		{rule: "layers", state: "violated", want: 1},
		{rule: "name", state: "errored", want: 1},
		{rule: "after", state: "blocked", want: 1},
		{rule: "unnamed", state: "invalid", want: 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(collector.rules.evaluationsTotal.WithLabelValues(tt.rule, tt.state))
		if got != tt.want {
			t.Errorf("rule_evaluations_total{%s,%s} = %v, want %v", tt.rule, tt.state, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(collector.rules.violationsTotal.WithLabelValues("layers")); got != 2 {
		t.Errorf("rule_violations_total{layers} = %v, want 2", got)
	}

	// Only evaluated rules observe a duration.
	if got := testutil.CollectAndCount(collector.rules.evaluationDuration); got != 3 {
		t.Errorf("rule_evaluation_duration_seconds series = %d, want 3", got)
	}
}

func TestCollector_RunFinished(t *testing.T) {
	collector := NewCollector("test", prometheus.NewRegistry())
	started := time.Unix(1700000000, 0)

	collector.RunFinished(&engine.Result{Outcome: engine.OutcomeCompleted, Started: started, Elapsed: time.Second})
	collector.RunFinished(&engine.Result{Outcome: engine.OutcomeAborted, Started: started.Add(time.Minute), Elapsed: time.Second})
	collector.RunFinished(nil)

	if got := testutil.ToFloat64(collector.runs.runsTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("runs_total{completed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.runs.runsTotal.WithLabelValues("aborted")); got != 1 {
		t.Errorf("runs_total{aborted} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.runs.lastRunStatus); got != 0 {
		t.Errorf("last_run_success = %v, want 0", got)
	}
	if got := testutil.ToFloat64(collector.runs.lastRunTime); got != 1700000060 {
		t.Errorf("last_run_timestamp_seconds = %v, want 1700000060", got)
	}
}

func TestCollector_ImplementsReporter(t *testing.T) {
	var _ engine.Reporter = NewCollector("test", nil)
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(2)

	if !limiter.Allow("a") || !limiter.Allow("b") {
		t.Fatal("Expected first two values to be allowed")
	}
	if limiter.Allow("c") {
		t.Error("Expected third value to be rejected")
	}
	if !limiter.Allow("a") {
		t.Error("Expected known value to be allowed")
	}
	if limiter.Count() != 2 {
		t.Errorf("Count() = %d, want 2", limiter.Count())
	}
}

func TestCollector_CardinalityOverflow(t *testing.T) {
	collector := NewCollector("test", prometheus.NewRegistry())
	collector.cardinalityLimiter = NewCardinalityLimiter(3)

	for i := 0; i < 5; i++ {
		collector.RuleCompleted(engine.RuleResult{Name: fmt.Sprintf("rule-%d", i), State: engine.StatePassed})
	}

	if got := testutil.ToFloat64(collector.rules.evaluationsTotal.WithLabelValues(OverflowLabel, "passed")); got != 2 {
		t.Errorf("overflow count = %v, want 2", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector("test", prometheus.NewRegistry())
	collector.RuleCompleted(engine.RuleResult{Name: "size", State: engine.StatePassed})

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !strings.Contains(string(body), `test_rule_evaluations_total{rule="size",state="passed"} 1`) {
		t.Errorf("metrics output missing evaluation counter:\n%s", body)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector("test", prometheus.NewRegistry())
	collector.RuleCompleted(engine.RuleResult{Name: "size", State: engine.StateViolated, Violations: []rules.Violation{{Message: "x"}}})

	path := filepath.Join(t.TempDir(), "nested", "mapcheck.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `test_rule_violations_total{rule="size"} 1`) {
		t.Errorf("textfile missing violation counter:\n%s", data)
	}
}
