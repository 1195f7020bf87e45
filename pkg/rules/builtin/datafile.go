package builtin

import (
	"fmt"
	"slices"
	"strings"

	"maps-workflow/mapcheck/pkg/mapfile"
	"maps-workflow/mapcheck/pkg/rules"
)

// Version fails when the datafile version is not in the allowed list.
type Version struct {
	in      rules.Input
	allowed []int64
}

// NewVersion builds a Version rule. allowed defaults to [4].
func NewVersion(in rules.Input, params rules.Params) (rules.Rule, error) {
	allowed, err := params.Ints("allowed", []int64{4})
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return nil, &rules.ParamError{Key: "allowed", Message: "must list at least one version"}
	}
	return &Version{in: in, allowed: allowed}, nil
}

func (r *Version) Evaluate() ([]rules.Violation, error) {
	if r.in.Map == nil {
		return nil, ErrNoMap
	}
	v := int64(r.in.Map.Version())
	if slices.Contains(r.allowed, v) {
		return nil, nil
	}
	return []rules.Violation{{
		Message:  fmt.Sprintf("datafile version %d is not allowed (allowed: %s)", v, joinInts(r.allowed)),
		Location: r.in.Locator,
		Details:  map[string]any{"version": v},
	}}, nil
}

func (r *Version) Explain() string {
	return fmt.Sprintf("The map must be saved as datafile version %s.", joinInts(r.allowed))
}

// ItemTypes checks which item types must or must not appear in the map.
type ItemTypes struct {
	in        rules.Input
	required  []int64
	forbidden []int64
}

// NewItemTypes builds an ItemTypes rule. At least one of required or
// forbidden must be set.
func NewItemTypes(in rules.Input, params rules.Params) (rules.Rule, error) {
	required, err := params.Ints("required", nil)
	if err != nil {
		return nil, err
	}
	forbidden, err := params.Ints("forbidden", nil)
	if err != nil {
		return nil, err
	}
	if len(required) == 0 && len(forbidden) == 0 {
		return nil, &rules.ParamError{Key: "required", Message: "one of required or forbidden must be set"}
	}
	for _, t := range required {
		if slices.Contains(forbidden, t) {
			return nil, &rules.ParamError{Key: "forbidden", Message: fmt.Sprintf("item type %d is also required", t)}
		}
	}
	return &ItemTypes{in: in, required: required, forbidden: forbidden}, nil
}

func (r *ItemTypes) Evaluate() ([]rules.Violation, error) {
	if r.in.Map == nil {
		return nil, ErrNoMap
	}

	var violations []rules.Violation
	for _, t := range r.required {
		if !r.in.Map.HasItemType(int(t)) {
			violations = append(violations, rules.Violation{
				Message:  fmt.Sprintf("map has no %s items", mapfile.ItemTypeName(int(t))),
				Location: r.in.Locator,
				Details:  map[string]any{"item_type": t},
			})
		}
	}
	for _, t := range r.forbidden {
		if n := r.in.Map.ItemCount(int(t)); n > 0 {
			violations = append(violations, rules.Violation{
				Message:  fmt.Sprintf("map has %d %s item(s), which are not allowed", n, mapfile.ItemTypeName(int(t))),
				Location: r.in.Locator,
				Details:  map[string]any{"item_type": t, "count": n},
			})
		}
	}
	return violations, nil
}

func (r *ItemTypes) Explain() string {
	var parts []string
	if len(r.required) > 0 {
		parts = append(parts, "must contain "+typeNames(r.required))
	}
	if len(r.forbidden) > 0 {
		parts = append(parts, "must not contain "+typeNames(r.forbidden))
	}
	return "The map " + strings.Join(parts, " and ") + "."
}

func typeNames(types []int64) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = mapfile.ItemTypeName(int(t))
	}
	return strings.Join(names, ", ")
}

func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " or ")
}
