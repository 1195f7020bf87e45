package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/rules"
)

// Summary is the serializable record of a finished run.
type Summary struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	Map       string          `json:"map" yaml:"map"`
	Outcome   string          `json:"outcome" yaml:"outcome"`
	Success   bool            `json:"success" yaml:"success"`
	AbortedBy string          `json:"aborted_by,omitempty" yaml:"aborted_by,omitempty"`
	Started   time.Time       `json:"started" yaml:"started"`
	ElapsedMS int64           `json:"elapsed_ms" yaml:"elapsed_ms"`
	Counts    map[string]int  `json:"counts" yaml:"counts"`
	Statuses  map[string]bool `json:"statuses" yaml:"statuses"`
	Rules     []RuleSummary   `json:"rules" yaml:"rules"`
}

// RuleSummary is the serializable record of one rule in a run.
type RuleSummary struct {
	Name       string            `json:"name" yaml:"name"`
	Source     string            `json:"source" yaml:"source"`
	State      string            `json:"state" yaml:"state"`
	Policy     string            `json:"policy,omitempty" yaml:"policy,omitempty"`
	Action     string            `json:"action,omitempty" yaml:"action,omitempty"`
	Violations []rules.Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
	Unmet      []string          `json:"unmet,omitempty" yaml:"unmet,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	ElapsedMS  float64           `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// NewSummary builds the summary of result.
func NewSummary(result *engine.Result) *Summary {
	s := &Summary{
		RunID:     result.RunID,
		Map:       result.Locator,
		Outcome:   result.Outcome.String(),
		Success:   result.Success(),
		AbortedBy: result.AbortedBy,
		Started:   result.Started,
		ElapsedMS: result.Elapsed.Milliseconds(),
		Counts:    make(map[string]int),
		Statuses:  result.Statuses.Map(),
		Rules:     make([]RuleSummary, 0, len(result.Rules)),
	}

	for _, rr := range result.Rules {
		s.Counts[rr.State.String()]++
		s.Rules = append(s.Rules, NewRuleSummary(rr))
	}
	return s
}

// NewRuleSummary builds the summary of one rule result.
func NewRuleSummary(rr engine.RuleResult) RuleSummary {
	rs := RuleSummary{
		Name:       rr.Name,
		Source:     rr.Source.String(),
		State:      rr.State.String(),
		Policy:     string(rr.Policy()),
		Violations: rr.Violations,
		Unmet:      rr.Unmet,
		ElapsedMS:  float64(rr.Elapsed.Microseconds()) / 1000,
	}
	if rr.Action != engine.ActionNone {
		rs.Action = rr.Action.String()
	}
	if rr.Err != nil {
		rs.Error = rr.Err.Error()
	}
	return rs
}

// WriteText renders the summary as a table.
func (s *Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tPOLICY\tSTATE\tELAPSED\tDETAIL")
	for _, r := range s.Rules {
		name := r.Name
		if name == "" {
			name = "(" + r.Source + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2fms\t%s\n", name, r.Policy, r.State, r.ElapsedMS, r.detail())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s: %s in %dms\n", s.Map, s.outcomeLine(), s.ElapsedMS)
	return err
}

// WriteMarkdown renders the summary for a GitHub job summary.
func (s *Summary) WriteMarkdown(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Map check: `%s`\n\n", s.Map)
	if s.Success {
		sb.WriteString("✅ ")
	} else {
		sb.WriteString("❌ ")
	}
	sb.WriteString(s.outcomeLine())
	sb.WriteString("\n\n| Rule | Policy | State | Detail |\n|------|--------|-------|--------|\n")
	for _, r := range s.Rules {
		fmt.Fprintf(&sb, "| %s | %s | %s %s | %s |\n",
			markdownCell(r.Name), r.Policy, stateIcon(r.State), r.State, markdownCell(r.detail()))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (s *Summary) outcomeLine() string {
	if !s.Success {
		return fmt.Sprintf("aborted by required rule %q", s.AbortedBy)
	}
	return fmt.Sprintf("%d passed, %d failed", s.Counts[engine.StatePassed.String()], len(s.Rules)-s.Counts[engine.StatePassed.String()])
}

func (r RuleSummary) detail() string {
	switch {
	case len(r.Violations) > 0:
		parts := make([]string, len(r.Violations))
		for i, v := range r.Violations {
			parts[i] = v.String()
		}
		return strings.Join(parts, "; ")
	case len(r.Unmet) > 0:
		return "unmet: " + strings.Join(r.Unmet, ", ")
	default:
		return r.Error
	}
}

func stateIcon(state string) string {
	switch state {
	case "passed":
		return "✅"
	case "blocked":
		return "⏭️"
	case "violated", "errored":
		return "❌"
	default:
		return "⚠️"
	}
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
