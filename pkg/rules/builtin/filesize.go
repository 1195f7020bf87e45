package builtin

import (
	"fmt"

	"maps-workflow/mapcheck/pkg/rules"
)

// MaxFileSize fails when the map file is larger than max_bytes.
type MaxFileSize struct {
	in       rules.Input
	maxBytes int64
}

// NewMaxFileSize builds a MaxFileSize rule.
func NewMaxFileSize(in rules.Input, params rules.Params) (rules.Rule, error) {
	maxBytes, err := params.Int("max_bytes", 0)
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		return nil, &rules.ParamError{Key: "max_bytes", Message: "must be a positive integer"}
	}
	return &MaxFileSize{in: in, maxBytes: maxBytes}, nil
}

func (r *MaxFileSize) Evaluate() ([]rules.Violation, error) {
	if r.in.Map == nil {
		return nil, ErrNoMap
	}
	if r.in.Map.Size <= r.maxBytes {
		return nil, nil
	}
	return []rules.Violation{{
		Message:  fmt.Sprintf("map is %d bytes, limit is %d bytes", r.in.Map.Size, r.maxBytes),
		Location: r.in.Locator,
		Details:  map[string]any{"size": r.in.Map.Size, "max_bytes": r.maxBytes},
	}}, nil
}

func (r *MaxFileSize) Explain() string {
	return fmt.Sprintf("The map file must not be larger than %d bytes.", r.maxBytes)
}
