package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"maps-workflow/mapcheck/pkg/cli"
	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/history/retention"
	"maps-workflow/mapcheck/pkg/ruleset"
	"maps-workflow/mapcheck/pkg/ruleset/gitsource"
	"maps-workflow/mapcheck/pkg/server"
)

var watchFlags struct {
	mapPath string
	listen  string
	skip    string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate a map whenever it or the rules change",
	Long: `Validate a map, then validate it again every time the map file or a
rule declaration changes. Changes within the debounce window are run once.

With rules.git enabled the rule repository is polled instead of the rules
directory. A commit whose declarations fail to load is rolled back.

With --listen (or watch.listen) a status server is started:
  GET  /healthz  liveness
  GET  /status   summary of the last run
  GET  /metrics  Prometheus metrics
  POST /run      queue a run

Examples:
  # Watch a map and the rules in ./map_rules
  mapcheck watch --map maps/ctf_dust.map

  # Serve the status endpoints on port 9090
  mapcheck watch --map maps/ctf_dust.map --listen :9090`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.mapPath, "map", "m", "", "map file to validate (default $INPUT_MAP)")
	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", "", "status server address (overrides watch.listen)")
	watchCmd.Flags().StringVar(&watchFlags.skip, "skip", "", "comma separated declaration file prefixes to leave out")
}

// watchSession serializes runs for the watch command. Triggers arriving
// while a run is queued are coalesced.
type watchSession struct {
	cfg     *config.Config
	logger  *slog.Logger
	runner  *runner
	status  *server.Status
	mapPath string
	dir     string
	exclude []string

	// fromGit means entries are loaded by the poller, not by the run loop
	fromGit bool

	pending chan struct{}

	mu      sync.Mutex
	entries []ruleset.Entry
}

func newWatchSession(cfg *config.Config, logger *slog.Logger, r *runner, mapPath, dir string, exclude []string) *watchSession {
	s := &watchSession{
		cfg:     cfg,
		logger:  logger.With("component", "watch"),
		runner:  r,
		status:  server.NewStatus(),
		mapPath: mapPath,
		dir:     dir,
		exclude: exclude,
		pending: make(chan struct{}, 1),
	}
	r.addReporter(s.status)
	return s
}

// Trigger queues a run. It returns false when one is already queued.
func (s *watchSession) Trigger() bool {
	select {
	case s.pending <- struct{}{}:
		return true
	default:
		return false
	}
}

// Reload reads the declarations in dir and makes them current.
func (s *watchSession) Reload(dir string) error {
	entries, err := newLoader(s.cfg).LoadDirectory(dir, s.exclude)
	if err != nil {
		s.status.RecordLoadError(err)
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

func (s *watchSession) current() []ruleset.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// runOnce reloads local declarations if needed and validates the map.
func (s *watchSession) runOnce(ctx context.Context) {
	if !s.fromGit {
		if err := s.Reload(s.dir); err != nil {
			s.logger.Error("Failed to load rules, waiting for the next change", "error", err)
			return
		}
	}

	result, err := s.runner.Run(ctx, s.mapPath, s.current())
	if err != nil {
		s.status.RecordLoadError(err)
		s.logger.Error("Failed to read map, waiting for the next change", "map", s.mapPath, "error", err)
		return
	}
	if result.Success() {
		s.logger.Info("✅ Workflow completed successfully.", "run_id", result.RunID)
	} else {
		s.logger.Error("❌ Workflow failed due to required rule failure.", "run_id", result.RunID, "rule", result.AbortedBy)
	}
}

// Loop runs queued validations until ctx is cancelled.
func (s *watchSession) Loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.pending:
			s.runOnce(ctx)
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	mapPath, err := resolveMapPath(watchFlags.mapPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchFlags.listen != "" {
		cfg.Watch.Listen = watchFlags.listen
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	dir, repo, err := openRuleSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	r, err := newRunner(cfg, logger)
	if err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}
	defer func() {
		if err := r.Close(context.Background()); err != nil {
			logger.Warn("Shutdown incomplete", "error", err)
		}
	}()

	session := newWatchSession(cfg, logger, r, mapPath, dir, excludePrefixes(cfg, splitSkip(watchFlags.skip)))

	// The first load must succeed; later failures only skip a run.
	if err := session.Reload(dir); err != nil {
		return cli.Exit(cli.ExitUsage, err)
	}

	watchPaths := []string{mapPath}
	if repo != nil {
		session.fromGit = true
		poller := gitsource.NewPoller(repo, cfg.Rules.Git.PollInterval, func(dir string) error {
			if err := session.Reload(dir); err != nil {
				return err
			}
			session.Trigger()
			return nil
		})
		poller.SetLogger(logger)
		poller.SetExtensions(cfg.Rules.Extensions)
		if err := poller.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer poller.Stop()
	} else {
		watchPaths = append(watchPaths, dir)
	}

	watcher, err := ruleset.NewFileWatcher(&ruleset.FileWatcherConfig{
		Paths:            watchPaths,
		DebounceInterval: cfg.Watch.Debounce,
		Extensions:       cfg.Rules.Extensions,
		SkipHidden:       true,
	}, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	if r.store != nil {
		pruner := retention.NewPruner(r.store, retention.ConfigFrom(cfg.History.Retention))
		if err := pruner.Start(ctx); err != nil {
			return cli.Exit(cli.ExitUsage, err)
		}
		defer pruner.Stop()
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if cfg.Watch.Listen != "" {
		srv := server.New(&cfg.Watch, session.status,
			server.WithMetrics(r.collector.Handler()),
			server.WithTrigger(session.Trigger),
			server.WithLogger(logger),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Start(ctx); err != nil {
				errCh <- fmt.Errorf("status server: %w", err)
				stop()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := watcher.Watch(ctx, func(path string) error {
			logger.Info("Change detected", "path", path)
			session.Trigger()
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("watcher: %w", err)
			stop()
		}
	}()

	session.Trigger()
	session.Loop(ctx)

	_ = watcher.Stop()
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return cli.NewCommandError("watch", errors.Join(errs...))
	}
	logger.Info("Watch stopped")
	return nil
}
