package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/engine"
	"maps-workflow/mapcheck/pkg/history"
	"maps-workflow/mapcheck/pkg/mapfile"
	"maps-workflow/mapcheck/pkg/report"
)

const passingRules = `rules:
  - name: size
    module: filesize
    class_name: MaxFileSize
    description: Map must fit the server download limit
    type: require
    params:
      max_bytes: 2097152
  - name: version
    module: datafile
    class_name: Version
    type: fail
    depends_on: [size]
`

const abortingRules = `rules:
  - name: size
    module: filesize
    class_name: MaxFileSize
    type: require
    params:
      max_bytes: 8
  - name: version
    module: datafile
    class_name: Version
    type: fail
`

// resetFlags restores every package level flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, rulesDir, logLevel, logFormat = "", "", "", ""
	runFlags.mapPath, runFlags.skip, runFlags.ci, runFlags.format, runFlags.metricsFile = "", "", false, "text", ""
	docsFlags.format, docsFlags.output = "json", ""
	lintFlags.strict, lintFlags.format = false, "text"
	historyFlags = struct {
		limit      int
		offset     int
		mapPath    string
		outcome    string
		since      time.Duration
		format     string
		days       int
		maxRecords int64
	}{limit: history.DefaultLimit, format: "text"}
	exportFlags.mapPath, exportFlags.outcome, exportFlags.since = "", "", 0
	exportFlags.limit, exportFlags.format, exportFlags.output = 0, "csv", ""
	t.Setenv("INPUT_MAP", "")
	t.Setenv("GITHUB_STEP_SUMMARY", "")
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeRules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return dir
}

func writeMap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctf_dust.map")
	data := mapfile.Build(4, []mapfile.ItemType{
		{Type: mapfile.ItemTypeVersion, Start: 0, Num: 1},
		{Type: mapfile.ItemTypeInfo, Start: 1, Num: 1},
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRunCommand_Success(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	mapPath := writeMap(t)

	out, err := execute(t, "run", "--rules", rules, "--map", mapPath, "--format", "json", "--log-level", "error")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var summary report.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("json.Unmarshal() error = %v\noutput: %s", err, out)
	}
	if !summary.Success {
		t.Errorf("Success = false, want true")
	}
	want := map[string]bool{"size": true, "version": true}
	if diff := cmp.Diff(want, summary.Statuses); diff != "" {
		t.Errorf("Statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCommand_RequiredFailure(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": abortingRules})
	mapPath := writeMap(t)

	out, err := execute(t, "run", "--rules", rules, "--map", mapPath, "--log-level", "error")
	if got := cli.ExitCode(err); got != cli.ExitFailure {
		t.Fatalf("ExitCode() = %d, want %d (err = %v)", got, cli.ExitFailure, err)
	}
	if !strings.Contains(out, "size") {
		t.Errorf("summary does not name the aborting rule:\n%s", out)
	}
}

func TestRunCommand_MapFromEnvironment(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	mapPath := writeMap(t)

	resetFlags(t)
	t.Setenv("INPUT_MAP", mapPath)
	rootCmd.SetArgs([]string{"run", "--rules", rules, "--log-level", "error"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out.String(), mapPath) {
		t.Errorf("summary does not name %s:\n%s", mapPath, out.String())
	}
}

func TestRunCommand_UsageErrors(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	broken := writeRules(t, map[string]string{"00-base.yaml": "rules: [\n"})
	mapPath := writeMap(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no map", args: []string{"run", "--rules", rules}},
		{name: "bad format", args: []string{"run", "--rules", rules, "--map", mapPath, "--format", "csv"}},
		{name: "missing rules dir", args: []string{"run", "--rules", filepath.Join(rules, "missing"), "--map", mapPath}},
		{name: "broken declarations", args: []string{"run", "--rules", broken, "--map", mapPath}},
		{name: "missing map", args: []string{"run", "--rules", rules, "--map", filepath.Join(rules, "none.map")}},
		{name: "missing config", args: []string{"run", "--config", filepath.Join(rules, "none.yaml"), "--map", mapPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "--log-level", "error")...)
			if got := cli.ExitCode(err); got != cli.ExitUsage {
				t.Errorf("ExitCode() = %d, want %d (err = %v)", got, cli.ExitUsage, err)
			}
		})
	}
}

func TestRunCommand_SkipPrefix(t *testing.T) {
	rules := writeRules(t, map[string]string{
		"00-base.yaml":   passingRules,
		"90-strict.yaml": strings.ReplaceAll(abortingRules, "- name: ", "- name: strict-"),
	})
	mapPath := writeMap(t)

	if _, err := execute(t, "run", "--rules", rules, "--map", mapPath, "--log-level", "error"); cli.ExitCode(err) != cli.ExitFailure {
		t.Fatalf("without --skip: err = %v, want required failure", err)
	}
	if _, err := execute(t, "run", "--rules", rules, "--map", mapPath, "--skip", "90-", "--log-level", "error"); err != nil {
		t.Fatalf("with --skip: err = %v", err)
	}
}

func TestRunCommand_CI(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": abortingRules})
	mapPath := writeMap(t)
	summaryPath := filepath.Join(t.TempDir(), "summary.md")

	resetFlags(t)
	t.Setenv("GITHUB_STEP_SUMMARY", summaryPath)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--rules", rules, "--map", mapPath, "--ci", "--log-level", "error"})
	defer rootCmd.SetOut(nil)

	if err := rootCmd.Execute(); cli.ExitCode(err) != cli.ExitFailure {
		t.Fatalf("err = %v, want required failure", err)
	}
	if !strings.Contains(out.String(), "::error ") {
		t.Errorf("no error annotation in output:\n%s", out.String())
	}
	if _, err := os.Stat(summaryPath); err != nil {
		t.Errorf("job summary not written: %v", err)
	}
}

func TestRunCommand_MetricsFile(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	mapPath := writeMap(t)
	metricsPath := filepath.Join(t.TempDir(), "metrics", "mapcheck.prom")

	if _, err := execute(t, "run", "--rules", rules, "--map", mapPath, "--metrics-file", metricsPath, "--log-level", "error"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "mapcheck_runs_total") {
		t.Errorf("metrics file lacks mapcheck_runs_total:\n%s", data)
	}
}

func TestDocsCommand(t *testing.T) {
	rules := writeRules(t, map[string]string{
		"00-base.yaml": passingRules,
		"10-bad.yaml": `rules:
  - name: unknown
    module: nothere
    class_name: Missing
    type: fail
`,
	})

	out, err := execute(t, "docs", "--rules", rules, "--log-level", "error")
	if err != nil {
		t.Fatalf("docs error = %v", err)
	}

	var docs []engine.RuleDoc
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("json.Unmarshal() error = %v\noutput: %s", err, out)
	}
	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"size", "version"}, names); diff != "" {
		t.Errorf("documented rules mismatch (-want +got):\n%s", diff)
	}
	if !docs[0].Required || docs[1].Required {
		t.Errorf("required flags = %v/%v, want true/false", docs[0].Required, docs[1].Required)
	}
	if docs[0].Description != "Map must fit the server download limit" {
		t.Errorf("Description = %q", docs[0].Description)
	}
}

func TestDocsCommand_OutputFile(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	outPath := filepath.Join(t.TempDir(), "rules.yaml")

	if _, err := execute(t, "docs", "--rules", rules, "--format", "yaml", "--output", outPath, "--log-level", "error"); err != nil {
		t.Fatalf("docs error = %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "name: size") {
		t.Errorf("output lacks rule size:\n%s", data)
	}
}

func TestLintCommand(t *testing.T) {
	warning := passingRules + `  - name: late
    module: datafile
    class_name: Version
    type: skip
    depends_on: [later]
  - name: later
    module: datafile
    class_name: Version
    type: skip
`
	invalid := `rules:
  - name: broken
    module: filesize
    type: sometimes
`

	tests := []struct {
		name     string
		rules    string
		strict   bool
		wantCode int
	}{
		{name: "clean", rules: passingRules, wantCode: cli.ExitOK},
		{name: "warnings", rules: warning, wantCode: cli.ExitOK},
		{name: "warnings strict", rules: warning, strict: true, wantCode: cli.ExitFailure},
		{name: "errors", rules: invalid, wantCode: cli.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRules(t, map[string]string{"00-base.yaml": tt.rules})
			args := []string{"lint", "--rules", dir, "--format", "json", "--log-level", "error"}
			if tt.strict {
				args = append(args, "--strict")
			}

			out, err := execute(t, args...)
			code := cli.ExitOK
			if err != nil {
				code = cli.ExitCode(err)
			}
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err = %v)", code, tt.wantCode, err)
			}

			var rep LintReport
			if err := json.Unmarshal([]byte(out), &rep); err != nil {
				t.Fatalf("json.Unmarshal() error = %v\noutput: %s", err, out)
			}
			if rep.Failed(tt.strict) != (tt.wantCode == cli.ExitFailure) {
				t.Errorf("Failed(%v) = %v with %d errors, %d warnings", tt.strict, rep.Failed(tt.strict), rep.Errors, rep.Warnings)
			}
		})
	}
}

func TestLintReport_WriteText(t *testing.T) {
	rep := newLintReport(2, []engine.Finding{
		{Severity: engine.SeverityWarning, Rule: "a", Message: "declared 2 times"},
	})
	var buf bytes.Buffer
	if err := rep.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "2 rules, 0 errors, 1 warnings\n") {
		t.Errorf("WriteText() = %q", buf.String())
	}
}

func TestSplitSkip(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "90-", want: []string{"90-"}},
		{in: "90-,91-", want: []string{"90-", "91-"}},
		{in: " 90- , ,91-,", want: []string{"90-", "91-"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitSkip(tt.in)); diff != "" {
			t.Errorf("splitSkip(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestResolveMapPath(t *testing.T) {
	t.Setenv("INPUT_MAP", "from-env.map")
	if got, _ := resolveMapPath("flag.map"); got != "flag.map" {
		t.Errorf("resolveMapPath(flag) = %q", got)
	}
	if got, _ := resolveMapPath(""); got != "from-env.map" {
		t.Errorf("resolveMapPath(env) = %q", got)
	}

	t.Setenv("INPUT_MAP", "")
	_, err := resolveMapPath("")
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != cli.ExitUsage {
		t.Errorf("resolveMapPath() error = %v, want usage exit", err)
	}
}
