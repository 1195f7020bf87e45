/*
Package cli provides command-line interface utilities for mapcheck.

Output Formatting:

Commands print results as text, JSON or YAML:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, summary); err != nil {
		return err
	}

Values that implement TextWriter control their own text rendering.

Exit Codes:

Commands return *ExitError to choose the process exit status; ExitCode
maps any error to a status (0 success, 1 required rule failure, 2 load or
configuration error).

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
