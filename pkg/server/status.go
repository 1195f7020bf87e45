package server

import (
	"sync"
	"time"

	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/report"
)

// Status keeps the summary of the latest finished run. It implements
// engine.Reporter so it can be attached to the engine directly.
type Status struct {
	engine.NopReporter

	mu      sync.RWMutex
	last    *report.Summary
	runs    int64
	failed  int64
	loadErr string
	loadAt  time.Time
}

// NewStatus creates an empty status.
func NewStatus() *Status {
	return &Status{}
}

// RunFinished records the run summary.
func (s *Status) RunFinished(result *engine.Result) {
	if result == nil {
		return
	}
	summary := report.NewSummary(result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = summary
	s.runs++
	if !summary.Success {
		s.failed++
	}
	s.loadErr = ""
}

// RecordLoadError notes that declarations or the map could not be loaded,
// so no run took place. The next finished run clears it.
func (s *Status) RecordLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err.Error()
	s.loadAt = time.Now()
}

// Snapshot is the JSON document served by /status.
type Snapshot struct {
	Runs        int64           `json:"runs"`
	FailedRuns  int64           `json:"failed_runs"`
	LoadError   string          `json:"load_error,omitempty"`
	LoadErrorAt *time.Time      `json:"load_error_at,omitempty"`
	Last        *report.Summary `json:"last,omitempty"`
}

// Snapshot returns the current status.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Runs:       s.runs,
		FailedRuns: s.failed,
		LoadError:  s.loadErr,
		Last:       s.last,
	}
	if s.loadErr != "" {
		at := s.loadAt
		snap.LoadErrorAt = &at
	}
	return snap
}
