package rules

import (
	"fmt"
	"strings"

	"maps-workflow/mapcheck/pkg/mapfile"
)

// Rule is a single pluggable check evaluated against a map.
type Rule interface {
	// Evaluate runs the check and returns the violations found.
	// An empty result means the map satisfies the rule. A non-nil error
	// means the check itself could not complete.
	Evaluate() ([]Violation, error)

	// Explain returns a human-readable description of what the rule
	// checks, using its configured params.
	Explain() string
}

// Input is the artifact a rule is constructed for.
type Input struct {
	// Locator is the path of the map file as given on the command line
	Locator string

	// Map is the parsed map, nil when rules are built for documentation
	Map *mapfile.Map
}

// Factory constructs a rule from its input and declaration params.
type Factory func(in Input, params Params) (Rule, error)

// Violation is one problem reported by a rule.
type Violation struct {
	// Message describes the problem
	Message string `json:"message" yaml:"message"`

	// Location points at the offending part of the map, if known
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Details holds structured context for the problem
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Violationf builds a Violation with a formatted message.
func Violationf(format string, args ...any) Violation {
	return Violation{Message: fmt.Sprintf(format, args...)}
}

// String renders the violation for logs.
func (v Violation) String() string {
	var sb strings.Builder
	if v.Location != "" {
		sb.WriteString(v.Location)
		sb.WriteString(": ")
	}
	sb.WriteString(v.Message)
	return sb.String()
}
