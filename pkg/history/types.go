package history

import (
	"context"
	"time"

	"maps-workflow/mapcheck/pkg/engine"
)

// Run is the stored record of one engine run.
type Run struct {
	ID          string        `json:"id" yaml:"id"`
	MapPath     string        `json:"map_path" yaml:"map_path"`
	MapChecksum string        `json:"map_checksum,omitempty" yaml:"map_checksum,omitempty"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Duration    time.Duration `json:"duration" yaml:"duration"`

	// Outcome is "completed" or "aborted"
	Outcome string `json:"outcome" yaml:"outcome"`

	// AbortedBy names the required rule that stopped the run
	AbortedBy string `json:"aborted_by,omitempty" yaml:"aborted_by,omitempty"`

	Rules []RuleRecord `json:"rules" yaml:"rules"`
}

// RuleRecord is the stored state of one declaration within a run.
type RuleRecord struct {
	Name       string        `json:"name" yaml:"name"`
	State      string        `json:"state" yaml:"state"`
	Policy     string        `json:"policy,omitempty" yaml:"policy,omitempty"`
	Violations []string      `json:"violations,omitempty" yaml:"violations,omitempty"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Succeeded reports whether the run completed without a required failure.
func (r *Run) Succeeded() bool {
	return r.Outcome == engine.OutcomeCompleted.String()
}

// Passed returns the number of rules that passed.
func (r *Run) Passed() int {
	n := 0
	for _, rule := range r.Rules {
		if rule.State == engine.StatePassed.String() {
			n++
		}
	}
	return n
}

// NewRun converts an engine result into a history record.
func NewRun(result *engine.Result, checksum string) *Run {
	run := &Run{
		ID:          result.RunID,
		MapPath:     result.Locator,
		MapChecksum: checksum,
		StartedAt:   result.Started.UTC(),
		Duration:    result.Elapsed,
		Outcome:     result.Outcome.String(),
		AbortedBy:   result.AbortedBy,
		Rules:       make([]RuleRecord, 0, len(result.Rules)),
	}

	for _, rr := range result.Rules {
		rec := RuleRecord{
			Name:    rr.Name,
			State:   rr.State.String(),
			Policy:  string(rr.Policy()),
			Elapsed: rr.Elapsed,
		}
		for _, v := range rr.Violations {
			rec.Violations = append(rec.Violations, v.String())
		}
		if rr.Err != nil {
			rec.Error = rr.Err.Error()
		}
		run.Rules = append(run.Rules, rec)
	}

	return run
}

// Query selects runs. Zero values match everything.
type Query struct {
	// Since and Until bound StartedAt (inclusive)
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	MapPath string `json:"map_path,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder is "asc" or "desc" by StartedAt. Default: "desc"
	SortOrder string `json:"sort_order,omitempty"`
}

// Store persists runs.
type Store interface {
	// Save stores a run. Saving an existing ID replaces it.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs matching the query.
	List(ctx context.Context, query *Query) ([]*Run, error)

	// Count returns the number of runs matching the query, ignoring
	// Limit and Offset.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteOlderThan removes runs that started before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the oldest runs until at most keep remain.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	Close() error
}
