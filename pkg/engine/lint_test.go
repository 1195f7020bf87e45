package engine

import (
	"strings"
	"testing"

	"maps-workflow/mapcheck/pkg/ruleset"
)

func TestLint(t *testing.T) {
	entries := []ruleset.Entry{
		decl("A", "Pass", "require", "B"),
		decl("B", "Pass", "fail", "B"),
		decl("C", "Missing", "fail", "ghost"),
		{Fields: map[string]any{"name": "D", "module": "test"}, Source: ruleset.Source{File: "rules.yaml", Index: 3}},
		decl("A", "Pass", "fail"),
	}
	for i := range entries {
		entries[i].Source.Index = i
	}

	findings := Lint(newTestRegistry(nil), entries)

	want := []struct {
		severity Severity
		rule     string
		contains string
	}{
		{SeverityWarning, "A", "declared later"},
		{SeverityWarning, "B", "depends on itself"},
		{SeverityError, "C", "class \"Missing\""},
		{SeverityWarning, "C", "never declared"},
		{SeverityError, "D", "class_name"},
		{SeverityWarning, "A", "declared 2 times"},
	}
	if len(findings) != len(want) {
		for _, f := range findings {
			t.Log(f)
		}
		t.Fatalf("len(findings) = %d, want %d", len(findings), len(want))
	}
	for i, w := range want {
		f := findings[i]
		if f.Severity != w.severity || f.Rule != w.rule || !strings.Contains(f.Message, w.contains) {
			t.Errorf("finding[%d] = %v, want %s for %s containing %q", i, f, w.severity, w.rule, w.contains)
		}
	}
	if !HasErrors(findings) {
		t.Errorf("HasErrors() = false, want true")
	}
}

func TestLint_Clean(t *testing.T) {
	findings := Lint(newTestRegistry(nil), []ruleset.Entry{
		decl("A", "Pass", "require"),
		decl("B", "Violate", "fail", "A"),
	})
	if len(findings) != 0 {
		t.Errorf("Lint() = %v, want no findings", findings)
	}
	if HasErrors(findings) {
		t.Errorf("HasErrors() = true, want false")
	}
}
