package engine

import "fmt"

// Phase tells where an evaluation error happened.
type Phase string

const (
	// PhaseConstruct is the rule factory call
	PhaseConstruct Phase = "construct"

	// PhaseEvaluate is the Evaluate call
	PhaseEvaluate Phase = "evaluate"
)

// EvaluationError is returned when a rule's own logic fails, either by
// returning an error or by panicking.
type EvaluationError struct {
	// Rule is the rule name
	Rule string

	// Phase is where the failure happened
	Phase Phase

	// Cause is the error returned by the rule, nil for panics
	Cause error

	// Panic holds the recovered value when the rule panicked
	Panic any

	// Stack is the goroutine stack captured at the panic
	Stack []byte
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("rule %q panicked during %s: %v", e.Rule, e.Phase, e.Panic)
	}
	return fmt.Sprintf("rule %q failed during %s: %v", e.Rule, e.Phase, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
