// mapcheck validates game map files against a directory of declarative
// rules.
//
// Each rule names a built-in check, a severity policy (require, fail or
// skip) and the rules it depends on. A failing require rule stops the run
// and fails the command; fail and skip rules are reported and the run
// continues.
//
// Usage:
//
//	# Check a map against ./map_rules
//	mapcheck run --map maps/ctf1.map
//
//	# Skip declaration files starting with "90-" and annotate a GitHub job
//	mapcheck run --map maps/ctf1.map --skip 90- --ci
//
//	# Generate rule documentation
//	mapcheck docs --format yaml
//
//	# Check the rule set itself
//	mapcheck lint --strict
//
//	# Re-run on every change to the rules or the map
//	mapcheck watch --map maps/ctf1.map --listen :9090
//
//	# Inspect stored runs
//	mapcheck history list --limit 20
package main

import (
	"errors"
	"fmt"
	"os"

	"maps-workflow/mapcheck/pkg/cli"
)

func main() {
	os.Exit(Execute())
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return cli.ExitOK
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}
