package rules

import (
	"fmt"
)

// Params is the opaque parameter mapping of a rule declaration.
// Accessors return a *ParamError when a value has the wrong type.
type Params map[string]any

// ParamError reports a missing or mistyped rule parameter.
type ParamError struct {
	Key     string
	Message string
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("param %q: %s", e.Key, e.Message)
}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value of key, or def when unset.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ParamError{Key: key, Message: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// Int returns the integer value of key, or def when unset.
// YAML decoders produce int, int64, uint64 or float64 for numbers; all
// integral values are accepted.
func (p Params) Int(key string, def int64) (int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, &ParamError{Key: key, Message: fmt.Sprintf("expected integer, got %T", v)}
	}
	return n, nil
}

// Ints returns the integer list value of key, or def when unset.
func (p Params) Ints(key string, def []int64) ([]int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &ParamError{Key: key, Message: fmt.Sprintf("expected list, got %T", v)}
	}
	out := make([]int64, 0, len(list))
	for i, item := range list {
		n, ok := toInt64(item)
		if !ok {
			return nil, &ParamError{Key: key, Message: fmt.Sprintf("item %d: expected integer, got %T", i, item)}
		}
		out = append(out, n)
	}
	return out, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
