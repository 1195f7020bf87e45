package builtin

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"maps-workflow/mapcheck/pkg/rules"
)

// celCostLimit bounds the work a single expression may do.
const celCostLimit = 1000000

// CEL evaluates a boolean CEL expression against the map's facts.
// The facts are bound to the variable "m", for example:
//
//	m.layers <= 64 && m.version == 4
type CEL struct {
	in         rules.Input
	expression string
	message    string
	program    cel.Program
}

// NewCEL compiles the expression param. A compile error is a param error.
func NewCEL(in rules.Input, params rules.Params) (rules.Rule, error) {
	expression, err := params.String("expression", "")
	if err != nil {
		return nil, err
	}
	if expression == "" {
		return nil, &rules.ParamError{Key: "expression", Message: "required"}
	}
	message, err := params.String("message", "")
	if err != nil {
		return nil, err
	}

	env, err := cel.NewEnv(cel.Variable("m", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, &rules.ParamError{Key: "expression", Message: issues.Err().Error()}
	}

	program, err := env.Program(ast, cel.CostLimit(celCostLimit))
	if err != nil {
		return nil, &rules.ParamError{Key: "expression", Message: err.Error()}
	}

	return &CEL{in: in, expression: expression, message: message, program: program}, nil
}

func (r *CEL) Evaluate() ([]rules.Violation, error) {
	if r.in.Map == nil {
		return nil, ErrNoMap
	}

	out, _, err := r.program.Eval(map[string]any{"m": r.in.Map.Facts()})
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", r.expression, err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return nil, fmt.Errorf("expression %q returned %s, want bool", r.expression, out.Type().TypeName())
	}
	if ok {
		return nil, nil
	}

	message := r.message
	if message == "" {
		message = fmt.Sprintf("expression %q is false", r.expression)
	}
	return []rules.Violation{{Message: message, Location: r.in.Locator}}, nil
}

func (r *CEL) Explain() string {
	if r.message != "" {
		return fmt.Sprintf("%s (%s)", r.message, r.expression)
	}
	return fmt.Sprintf("The map must satisfy %s.", r.expression)
}
