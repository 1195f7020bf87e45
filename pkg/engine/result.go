package engine

import (
	"time"

	"maps-workflow/mapcheck/pkg/rules"
	"maps-workflow/mapcheck/pkg/ruleset"
)

// State is the final state of one rule in a run.
type State int

const (
	// StatePassed means the rule reported no violations
	StatePassed State = iota

	// StateViolated means the rule reported at least one violation
	StateViolated

	// StateErrored means constructing or evaluating the rule failed
	StateErrored

	// StateBlocked means a dependency was missing or failed
	StateBlocked

	// StateUnresolved means the module or class is not registered
	StateUnresolved

	// StateInvalid means the declaration failed validation
	StateInvalid
)

var stateNames = map[State]string{
	StatePassed:     "passed",
	StateViolated:   "violated",
	StateErrored:    "errored",
	StateBlocked:    "blocked",
	StateUnresolved: "unresolved",
	StateInvalid:    "invalid",
}

// String returns a string representation of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Succeeded reports whether the state counts as satisfied for gating.
func (s State) Succeeded() bool {
	return s == StatePassed
}

// Action is the policy decision taken for a failed, evaluated rule.
type Action int

const (
	// ActionNone means no policy was applied (passed or never evaluated)
	ActionNone Action = iota

	// ActionContinue means a fail-policy rule failed and the run continued
	ActionContinue

	// ActionSkip means a skip-policy rule failed and the run continued
	ActionSkip

	// ActionAbort means a require-policy rule failed and the run stopped
	ActionAbort
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "continue"
	case ActionSkip:
		return "skip"
	case ActionAbort:
		return "abort"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// actionFor maps a policy to the action taken when the rule fails.
func actionFor(p ruleset.Policy) Action {
	switch p {
	case ruleset.PolicyRequire:
		return ActionAbort
	case ruleset.PolicySkip:
		return ActionSkip
	default:
		return ActionContinue
	}
}

// RuleResult records what happened to one declaration.
type RuleResult struct {
	// Index is the position of the declaration in the run's sequence
	Index int

	// Name is the rule name, empty for declarations without a usable name
	Name string

	// Descriptor is nil for invalid declarations
	Descriptor *ruleset.Descriptor

	// Source locates the declaration
	Source ruleset.Source

	State  State
	Action Action

	// Violations reported by the rule (StateViolated only)
	Violations []rules.Violation

	// Unmet lists the dependencies that blocked the rule (StateBlocked only)
	Unmet []string

	// Err is the configuration, resolution or evaluation error
	Err error

	// Elapsed is the time spent constructing and evaluating the rule
	Elapsed time.Duration
}

// Policy returns the rule's policy, empty for invalid declarations.
func (r RuleResult) Policy() ruleset.Policy {
	if r.Descriptor == nil {
		return ""
	}
	return r.Descriptor.Type
}

// Outcome is the overall result of a run.
type Outcome int

const (
	// OutcomeCompleted means every declaration was processed without a
	// required failure
	OutcomeCompleted Outcome = iota

	// OutcomeAborted means a require-policy rule failed
	OutcomeAborted
)

// String returns a string representation of the outcome.
func (o Outcome) String() string {
	if o == OutcomeAborted {
		return "aborted"
	}
	return "completed"
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	ID      string
	Locator string
	Rules   int
	Started time.Time
}

// Result is the complete record of one run.
type Result struct {
	RunID   string
	Locator string
	Outcome Outcome

	// AbortedBy names the require-policy rule that stopped the run
	AbortedBy string

	Statuses *StatusTable
	Rules    []RuleResult

	Started time.Time
	Elapsed time.Duration
}

// Success reports whether the run completed without a required failure.
func (r *Result) Success() bool {
	return r.Outcome == OutcomeCompleted
}

// Count returns the number of rules that ended in state s.
func (r *Result) Count(s State) int {
	n := 0
	for _, rr := range r.Rules {
		if rr.State == s {
			n++
		}
	}
	return n
}

// Invalid returns the results of declarations that failed validation.
func (r *Result) Invalid() []RuleResult {
	var out []RuleResult
	for _, rr := range r.Rules {
		if rr.State == StateInvalid {
			out = append(out, rr)
		}
	}
	return out
}

// Rule returns the last result recorded for name.
func (r *Result) Rule(name string) (RuleResult, bool) {
	for i := len(r.Rules) - 1; i >= 0; i-- {
		if r.Rules[i].Name == name {
			return r.Rules[i], true
		}
	}
	return RuleResult{}, false
}
