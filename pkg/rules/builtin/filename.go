package builtin

import (
	"fmt"
	"regexp"

	"maps-workflow/mapcheck/pkg/rules"
)

// DefaultNamePattern accepts letters, digits, dashes and underscores.
const DefaultNamePattern = `^[A-Za-z0-9_-]+$`

// NamePattern checks the map name against a regular expression and an
// optional length limit.
type NamePattern struct {
	in        rules.Input
	pattern   *regexp.Regexp
	maxLength int64
}

// NewNamePattern builds a NamePattern rule.
func NewNamePattern(in rules.Input, params rules.Params) (rules.Rule, error) {
	expr, err := params.String("pattern", DefaultNamePattern)
	if err != nil {
		return nil, err
	}
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, &rules.ParamError{Key: "pattern", Message: err.Error()}
	}

	maxLength, err := params.Int("max_length", 0)
	if err != nil {
		return nil, err
	}
	if maxLength < 0 {
		return nil, &rules.ParamError{Key: "max_length", Message: "must not be negative"}
	}

	return &NamePattern{in: in, pattern: pattern, maxLength: maxLength}, nil
}

func (r *NamePattern) Evaluate() ([]rules.Violation, error) {
	if r.in.Map == nil {
		return nil, ErrNoMap
	}

	var violations []rules.Violation
	name := r.in.Map.Name
	if !r.pattern.MatchString(name) {
		violations = append(violations, rules.Violation{
			Message:  fmt.Sprintf("map name %q does not match %s", name, r.pattern),
			Location: r.in.Locator,
		})
	}
	if r.maxLength > 0 && int64(len(name)) > r.maxLength {
		violations = append(violations, rules.Violation{
			Message:  fmt.Sprintf("map name is %d characters long, limit is %d", len(name), r.maxLength),
			Location: r.in.Locator,
		})
	}
	return violations, nil
}

func (r *NamePattern) Explain() string {
	if r.maxLength > 0 {
		return fmt.Sprintf("The map name must match %s and be at most %d characters long.", r.pattern, r.maxLength)
	}
	return fmt.Sprintf("The map name must match %s.", r.pattern)
}
