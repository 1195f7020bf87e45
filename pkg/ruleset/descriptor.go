package ruleset

import (
	"fmt"
	"strings"
)

// Policy is the severity policy applied when a rule reports violations or
// fails with an error.
type Policy string

const (
	// PolicyRequire aborts the whole run on failure
	PolicyRequire Policy = "require"

	// PolicyFail logs the failure and continues
	PolicyFail Policy = "fail"

	// PolicySkip logs the failure informationally and continues
	PolicySkip Policy = "skip"
)

// Policies lists the recognized policy values.
var Policies = []Policy{PolicyRequire, PolicyFail, PolicySkip}

// ParsePolicy converts s to a Policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown rule type %q (want one of require, fail, skip)", s)
}

// Required reports whether a failure under this policy aborts the run.
func (p Policy) Required() bool {
	return p == PolicyRequire
}

// Descriptor is a validated rule declaration.
type Descriptor struct {
	Name        string         `json:"name" yaml:"name"`
	Module      string         `json:"module" yaml:"module"`
	ClassName   string         `json:"class_name" yaml:"class_name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Type        Policy         `json:"type" yaml:"type"`
	DependsOn   []string       `json:"depends_on" yaml:"depends_on"`
	Params      map[string]any `json:"params" yaml:"params"`

	Source Source `json:"source" yaml:"-"`
}

// ParseDescriptor validates a raw entry and builds its descriptor.
// On failure it returns a *ConfigurationError naming every offending field.
func ParseDescriptor(entry Entry) (*Descriptor, error) {
	cfgErr := &ConfigurationError{Source: entry.Source}
	cfgErr.Name, _ = entry.Name()

	if entry.Fields == nil {
		cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: "rule", Message: "declaration is not a mapping"})
		return nil, cfgErr
	}

	d := &Descriptor{
		Source:    entry.Source,
		DependsOn: []string{},
		Params:    map[string]any{},
	}

	d.Name = requiredString(entry.Fields, "name", cfgErr)
	d.Module = requiredString(entry.Fields, "module", cfgErr)
	d.ClassName = requiredString(entry.Fields, "class_name", cfgErr)

	if typ := requiredString(entry.Fields, "type", cfgErr); typ != "" {
		p, err := ParsePolicy(typ)
		if err != nil {
			cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: "type", Message: err.Error()})
		}
		d.Type = p
	}

	if v, ok := entry.Fields["description"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: "description", Message: fmt.Sprintf("expected string, got %T", v)})
		}
		d.Description = s
	}

	if v, ok := entry.Fields["depends_on"]; ok && v != nil {
		deps, err := stringList(v)
		if err != nil {
			cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: "depends_on", Message: err.Error()})
		}
		d.DependsOn = deps
	}

	if v, ok := entry.Fields["params"]; ok && v != nil {
		params, ok := v.(map[string]any)
		if !ok {
			cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: "params", Message: fmt.Sprintf("expected mapping, got %T", v)})
		}
		d.Params = params
	}

	if len(cfgErr.Errors) > 0 {
		return nil, cfgErr
	}
	if d.Params == nil {
		d.Params = map[string]any{}
	}
	return d, nil
}

func requiredString(fields map[string]any, key string, cfgErr *ConfigurationError) string {
	v, ok := fields[key]
	if !ok || v == nil {
		cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: key, Message: "field required"})
		return ""
	}
	s, ok := v.(string)
	if !ok {
		cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: key, Message: fmt.Sprintf("expected string, got %T", v)})
		return ""
	}
	if strings.TrimSpace(s) == "" {
		cfgErr.Errors = append(cfgErr.Errors, FieldError{Field: key, Message: "must not be empty"})
		return ""
	}
	return s
}

func stringList(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list of rule names, got %T", v)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected string, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}
