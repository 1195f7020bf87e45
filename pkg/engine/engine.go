package engine

import (
	"errors"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"maps-workflow/mapcheck/pkg/rules"
	"maps-workflow/mapcheck/pkg/ruleset"
)

// Resolver looks up the factory for a module and class.
// *rules.Registry implements Resolver.
type Resolver interface {
	Resolve(module, class string) (rules.Factory, error)
}

// Engine runs rule sets. It holds no per-run state and may be reused,
// including from several goroutines.
type Engine struct {
	resolver Resolver
	reporter Reporter
	now      func() time.Time
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the sink that receives the run's decisions.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithClock replaces the time source used for timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) {
		if f != nil {
			e.newID = f
		}
	}
}

// New creates an engine that resolves rules through resolver.
func New(resolver Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		reporter: NopReporter{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes entries in order against in and returns the run's result.
//
// A require-policy failure stops the run immediately; the result then has
// OutcomeAborted and AbortedBy set, and later entries are not processed.
// Every other condition is recorded and the run continues.
func (e *Engine) Run(in rules.Input, entries []ruleset.Entry) *Result {
	started := e.now()
	result := &Result{
		RunID:    e.newID(),
		Locator:  in.Locator,
		Outcome:  OutcomeCompleted,
		Statuses: NewStatusTable(),
		Rules:    make([]RuleResult, 0, len(entries)),
		Started:  started,
	}

	e.reporter.RunStarted(RunInfo{
		ID:      result.RunID,
		Locator: in.Locator,
		Rules:   len(entries),
		Started: started,
	})

	for i, entry := range entries {
		rr := e.process(in, i, entry, result.Statuses)
		if rr.Name != "" {
			result.Statuses.Set(rr.Name, rr.State.Succeeded())
		}
		result.Rules = append(result.Rules, rr)
		e.reporter.RuleCompleted(rr)

		if rr.Action == ActionAbort {
			result.Outcome = OutcomeAborted
			result.AbortedBy = rr.Name
			break
		}
	}

	result.Elapsed = e.now().Sub(started)
	e.reporter.RunFinished(result)
	return result
}

// process handles one entry. It never panics.
func (e *Engine) process(in rules.Input, index int, entry ruleset.Entry, statuses *StatusTable) RuleResult {
	rr := RuleResult{Index: index, Source: entry.Source}

	d, err := ruleset.ParseDescriptor(entry)
	if err != nil {
		rr.Name, _ = entry.Name()
		rr.State = StateInvalid
		rr.Err = err
		return rr
	}
	rr.Name = d.Name
	rr.Descriptor = d

	if unmet := statuses.Unmet(d.DependsOn); len(unmet) > 0 {
		rr.State = StateBlocked
		rr.Unmet = unmet
		return rr
	}

	factory, err := e.resolver.Resolve(d.Module, d.ClassName)
	if err != nil {
		rr.State = StateUnresolved
		rr.Err = err
		return rr
	}

	e.reporter.RuleStarted(d)
	start := e.now()
	violations, err := evaluate(factory, in, d)
	rr.Elapsed = e.now().Sub(start)

	switch {
	case err != nil:
		rr.State = StateErrored
		rr.Err = err
	case len(violations) > 0:
		rr.State = StateViolated
		rr.Violations = violations
	default:
		rr.State = StatePassed
		return rr
	}

	rr.Action = actionFor(d.Type)
	return rr
}

// evaluate constructs the rule and runs it, converting construction
// failures, evaluation errors and panics into *EvaluationError.
func evaluate(factory rules.Factory, in rules.Input, d *ruleset.Descriptor) (violations []rules.Violation, err error) {
	phase := PhaseConstruct
	defer func() {
		if r := recover(); r != nil {
			violations = nil
			err = &EvaluationError{Rule: d.Name, Phase: phase, Panic: r, Stack: debug.Stack()}
		}
	}()

	rule, err := factory(in, rules.Params(d.Params))
	if err != nil {
		return nil, &EvaluationError{Rule: d.Name, Phase: phase, Cause: err}
	}
	if rule == nil {
		return nil, &EvaluationError{Rule: d.Name, Phase: phase, Cause: errors.New("factory returned no rule")}
	}

	phase = PhaseEvaluate
	violations, err = rule.Evaluate()
	if err != nil {
		return nil, &EvaluationError{Rule: d.Name, Phase: phase, Cause: err}
	}
	return violations, nil
}
