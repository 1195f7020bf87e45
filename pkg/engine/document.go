package engine

import (
	"fmt"

	"maps-workflow/mapcheck/pkg/rules"
	"maps-workflow/mapcheck/pkg/ruleset"
)

// RuleDoc documents one rule of a rule set.
type RuleDoc struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc" yaml:"desc"`
	Explanation string `json:"explain" yaml:"explain"`
	Required    bool   `json:"required" yaml:"required"`
}

// Omission records a declaration left out of the documentation.
type Omission struct {
	Name   string
	Source ruleset.Source
	Err    error
}

// Document builds every rule without a map and collects its explanation.
// Declarations that fail validation, do not resolve or cannot be
// constructed are omitted and reported in the second return value.
// Statuses, dependencies and evaluation play no part.
func Document(resolver Resolver, entries []ruleset.Entry) ([]RuleDoc, []Omission) {
	docs := make([]RuleDoc, 0, len(entries))
	var omitted []Omission

	for _, entry := range entries {
		d, err := ruleset.ParseDescriptor(entry)
		if err != nil {
			name, _ := entry.Name()
			omitted = append(omitted, Omission{Name: name, Source: entry.Source, Err: err})
			continue
		}

		factory, err := resolver.Resolve(d.Module, d.ClassName)
		if err != nil {
			omitted = append(omitted, Omission{Name: d.Name, Source: d.Source, Err: err})
			continue
		}

		explain, err := explain(factory, d)
		if err != nil {
			omitted = append(omitted, Omission{Name: d.Name, Source: d.Source, Err: err})
			continue
		}

		docs = append(docs, RuleDoc{
			Name:        d.Name,
			Description: d.Description,
			Explanation: explain,
			Required:    d.Type.Required(),
		})
	}
	return docs, omitted
}

func explain(factory rules.Factory, d *ruleset.Descriptor) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EvaluationError{Rule: d.Name, Phase: PhaseConstruct, Panic: r}
		}
	}()

	rule, err := factory(rules.Input{}, rules.Params(d.Params))
	if err != nil {
		return "", &EvaluationError{Rule: d.Name, Phase: PhaseConstruct, Cause: err}
	}
	if rule == nil {
		return "", &EvaluationError{Rule: d.Name, Phase: PhaseConstruct, Cause: fmt.Errorf("factory returned no rule")}
	}
	return rule.Explain(), nil
}
