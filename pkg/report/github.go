package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"maps-workflow/mapcheck/pkg/engine"
)

// GitHubReporter writes GitHub Actions workflow commands.
//
// Failed rules become annotations whose level follows the rule policy:
// require is an error, fail a warning and skip a notice. Invalid and
// unresolved declarations are warnings. When SummaryPath is set, the run
// summary is appended to it as Markdown.
type GitHubReporter struct {
	engine.NopReporter

	// Out receives the workflow commands
	Out io.Writer

	// SummaryPath is the job summary file, usually $GITHUB_STEP_SUMMARY
	SummaryPath string

	locator string
}

// NewGitHubReporter creates a reporter writing to out and to the job
// summary named by $GITHUB_STEP_SUMMARY.
func NewGitHubReporter(out io.Writer) *GitHubReporter {
	return &GitHubReporter{Out: out, SummaryPath: os.Getenv("GITHUB_STEP_SUMMARY")}
}

func (r *GitHubReporter) RunStarted(info engine.RunInfo) {
	r.locator = info.Locator
	fmt.Fprintf(r.Out, "::group::mapcheck %s\n", escapeData(info.Locator))
}

func (r *GitHubReporter) RuleCompleted(res engine.RuleResult) {
	switch res.State {
	case engine.StatePassed, engine.StateBlocked:
		return
	case engine.StateInvalid, engine.StateUnresolved:
		r.annotate("warning", "Rule "+res.Name+" "+res.State.String(), res.Err.Error())
		return
	}

	level := "warning"
	switch res.Action {
	case engine.ActionAbort:
		level = "error"
	case engine.ActionSkip:
		level = "notice"
	}

	title := fmt.Sprintf("Rule %s (%s)", res.Name, res.Policy())
	if res.State == engine.StateErrored {
		r.annotate(level, title, res.Err.Error())
		return
	}
	for _, v := range res.Violations {
		r.annotate(level, title, v.String())
	}
}

func (r *GitHubReporter) RunFinished(result *engine.Result) {
	fmt.Fprintln(r.Out, "::endgroup::")
	if !result.Success() {
		r.annotate("error", "Map check failed", fmt.Sprintf("required rule %q failed", result.AbortedBy))
	}

	if r.SummaryPath == "" {
		return
	}
	f, err := os.OpenFile(r.SummaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(r.Out, "::warning::%s\n", escapeData("cannot write job summary: "+err.Error()))
		return
	}
	defer f.Close()
	if err := NewSummary(result).WriteMarkdown(f); err != nil {
		fmt.Fprintf(r.Out, "::warning::%s\n", escapeData("cannot write job summary: "+err.Error()))
	}
}

func (r *GitHubReporter) annotate(level, title, message string) {
	fmt.Fprintf(r.Out, "::%s file=%s,title=%s::%s\n",
		level, escapeProperty(r.locator), escapeProperty(title), escapeData(message))
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}
