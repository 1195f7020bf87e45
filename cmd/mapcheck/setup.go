package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/ruleset"
	"maps-workflow/mapcheck/pkg/ruleset/gitsource"
	"maps-workflow/mapcheck/pkg/telemetry/logging"
)

// defaultConfigFile is read when --config is not given and it exists.
const defaultConfigFile = "mapcheck.yaml"

// loadConfig reads the configuration file and environment, then applies
// the global flag overrides. Failures exit with the usage status.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.Exit(cli.ExitUsage, err)
	}

	if rulesDir != "" {
		cfg.Rules.Dir = rulesDir
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.Exit(cli.ExitUsage, err)
	}
	return cfg, nil
}

// setupLogger builds the process logger and installs it as the default.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return nil, cli.Exit(cli.ExitUsage, cli.NewConfigError("telemetry.logging", err.Error()))
	}
	slog.SetDefault(logger)
	return logger, nil
}

// newLoader creates a declaration loader from the rules configuration.
func newLoader(cfg *config.Config) *ruleset.Loader {
	return ruleset.NewLoader(&ruleset.LoaderConfig{
		Extensions:  cfg.Rules.Extensions,
		MaxFileSize: cfg.Rules.MaxFileSize,
	})
}

// openRuleSource returns the directory holding the declarations. With Git
// enabled the repository is cloned, or pulled when a clone exists, and the
// returned Repository is non-nil.
func openRuleSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, *gitsource.Repository, error) {
	if !cfg.Rules.Git.Enabled {
		return cfg.Rules.Dir, nil, nil
	}

	repo, err := gitsource.NewRepository(&cfg.Rules.Git)
	if err != nil {
		return "", nil, cli.Exit(cli.ExitUsage, err)
	}
	if err := repo.Clone(ctx); err != nil {
		return "", nil, cli.Exit(cli.ExitUsage, err)
	}
	if _, err := repo.Pull(ctx); err != nil {
		logger.Warn("Could not update rule repository, using local clone", "error", err)
	}

	if commit, err := repo.CurrentCommit(); err == nil {
		logger.Info("Using rules from Git",
			"repository", commit.Repository,
			"branch", commit.Branch,
			"commit", commit.Short(),
		)
	}
	return repo.RulesPath(), repo, nil
}

// loadEntries reads the declarations in dir. Load and parse failures exit
// with the usage status.
func loadEntries(cfg *config.Config, dir string, exclude []string) ([]ruleset.Entry, error) {
	entries, err := newLoader(cfg).LoadDirectory(dir, exclude)
	if err != nil {
		return nil, cli.Exit(cli.ExitUsage, err)
	}
	return entries, nil
}

// excludePrefixes merges the configured prefixes with --skip values.
func excludePrefixes(cfg *config.Config, skip []string) []string {
	out := make([]string, 0, len(cfg.Rules.Exclude)+len(skip))
	out = append(out, cfg.Rules.Exclude...)
	out = append(out, skip...)
	return out
}

// resolveMapPath returns --map or $INPUT_MAP.
func resolveMapPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("INPUT_MAP"); env != "" {
		return env, nil
	}
	return "", cli.Exit(cli.ExitUsage, errors.New("no map given: use --map or set INPUT_MAP"))
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
