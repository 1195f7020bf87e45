package engine

import (
	"fmt"
	"sort"

	"maps-workflow/mapcheck/pkg/ruleset"
)

// Severity of a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem found by Lint.
type Finding struct {
	Severity Severity       `json:"severity"`
	Rule     string         `json:"rule,omitempty"`
	Source   ruleset.Source `json:"source"`
	Message  string         `json:"message"`
}

// String renders the finding for terminal output.
func (f Finding) String() string {
	if f.Rule == "" {
		return fmt.Sprintf("%s: %s: %s", f.Source, f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: %s: rule %q: %s", f.Source, f.Severity, f.Rule, f.Message)
}

// Lint checks a rule set without running it.
//
// Errors are declarations the engine would record as invalid or
// unresolved. Warnings are declarations that are valid but will behave
// surprisingly: duplicate names, dependencies on names that are never
// declared, on the rule itself or on a rule declared later (always
// blocked).
func Lint(resolver Resolver, entries []ruleset.Entry) []Finding {
	var findings []Finding
	declaredAt := make(map[string]int)

	for i, entry := range entries {
		if name, ok := entry.Name(); ok {
			if _, seen := declaredAt[name]; !seen {
				declaredAt[name] = i
			}
		}
	}

	for i, entry := range entries {
		d, err := ruleset.ParseDescriptor(entry)
		if err != nil {
			name, _ := entry.Name()
			findings = append(findings, Finding{Severity: SeverityError, Rule: name, Source: entry.Source, Message: err.Error()})
			continue
		}

		if _, err := resolver.Resolve(d.Module, d.ClassName); err != nil {
			findings = append(findings, Finding{Severity: SeverityError, Rule: d.Name, Source: d.Source, Message: err.Error()})
		}

		for _, dep := range d.DependsOn {
			at, ok := declaredAt[dep]
			switch {
			case dep == d.Name:
				findings = append(findings, Finding{Severity: SeverityWarning, Rule: d.Name, Source: d.Source,
					Message: "depends on itself and will always be blocked"})
			case !ok:
				findings = append(findings, Finding{Severity: SeverityWarning, Rule: d.Name, Source: d.Source,
					Message: fmt.Sprintf("depends on %q which is never declared", dep)})
			case at > i:
				findings = append(findings, Finding{Severity: SeverityWarning, Rule: d.Name, Source: d.Source,
					Message: fmt.Sprintf("depends on %q which is declared later and will always be blocked", dep)})
			}
		}
	}

	for _, dup := range ruleset.Duplicates(entries) {
		findings = append(findings, Finding{Severity: SeverityWarning, Rule: dup.Name, Source: dup.Sources[len(dup.Sources)-1],
			Message: fmt.Sprintf("declared %d times; the last status recorded wins", len(dup.Sources))})
	}

	sort.SliceStable(findings, func(a, b int) bool {
		if findings[a].Source.File != findings[b].Source.File {
			return findings[a].Source.File < findings[b].Source.File
		}
		return findings[a].Source.Index < findings[b].Source.Index
	})
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
