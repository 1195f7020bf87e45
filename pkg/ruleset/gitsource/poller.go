package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
)

// ReloadFunc loads the declarations found in rulesDir. A non-nil error
// rejects the commit and triggers a rollback.
type ReloadFunc func(rulesDir string) error

// PollerStats counts poller activity.
type PollerStats struct {
	Polls          int64
	Reloads        int64
	FailedReloads  int64
	SkippedCommits int64
	LastReload     time.Time
}

// Poller pulls a Repository on an interval and reloads the rule set when a
// declaration file changes.
type Poller struct {
	repo       *Repository
	interval   time.Duration
	reload     ReloadFunc
	extensions []string
	logger     *slog.Logger

	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	lastGood string
	rejected string
	stats    PollerStats
}

// NewPoller creates a poller. Only changes to files with one of the
// declaration extensions below the rules directory cause a reload.
func NewPoller(repo *Repository, interval time.Duration, reload ReloadFunc) *Poller {
	return &Poller{
		repo:       repo,
		interval:   interval,
		reload:     reload,
		extensions: []string{".yaml"},
		logger:     slog.Default().With("component", "ruleset.gitsource"),
	}
}

// SetLogger replaces the poller's logger.
func (p *Poller) SetLogger(logger *slog.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = logger
}

// SetExtensions replaces the declaration file extensions.
func (p *Poller) SetExtensions(exts []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extensions = exts
}

// Start records the current commit as known good and begins polling in
// the background.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("poller already running")
	}
	if p.interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.interval)
	}

	commit, err := p.repo.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	p.lastGood = commit.SHA
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	p.logger.Info("Git poller started",
		"repository", commit.Repository,
		"branch", commit.Branch,
		"commit", commit.Short(),
		"interval", p.interval,
	)

	go p.loop(ctx, p.stopCh, p.doneCh)
	return nil
}

// Stop ends polling and waits for an in-flight check to finish.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller not running")
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	<-done
	p.logger.Info("Git poller stopped")
	return nil
}

// IsRunning reports whether the poll loop is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// LastGoodCommit returns the commit the rule set was last loaded from.
func (p *Poller) LastGoodCommit() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastGood
}

// Stats returns a copy of the poller counters.
func (p *Poller) Stats() PollerStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

func (p *Poller) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if err := p.Check(ctx); err != nil {
				p.logger.Error("Git poll failed", "error", err)
			}
		}
	}
}

// Check pulls once and reloads if declarations changed. On reload failure
// the clone is reset to the last good commit and reloaded from there, and
// the failing commit is not retried until the branch moves again.
func (p *Poller) Check(ctx context.Context) error {
	p.mu.Lock()
	p.stats.Polls++
	if p.lastGood == "" {
		if commit, err := p.repo.CurrentCommit(); err == nil {
			p.lastGood = commit.SHA
		}
	}
	lastGood, rejected := p.lastGood, p.rejected
	p.mu.Unlock()

	result, err := p.repo.Pull(ctx)
	if err != nil {
		return err
	}
	if !result.HadChanges {
		return nil
	}

	if result.ToSHA == rejected {
		// The branch still points at a commit that failed to load.
		if err := p.repo.Rollback(lastGood); err != nil {
			return fmt.Errorf("failed to stay on last good commit: %w", err)
		}
		return nil
	}

	if !p.touchesDeclarations(result.ChangedFiles) {
		p.mu.Lock()
		p.stats.SkippedCommits++
		p.lastGood = result.ToSHA
		p.mu.Unlock()
		p.logger.Debug("No declaration changes, skipping reload",
			"commit", shortSHA(result.ToSHA),
			"changed_files", len(result.ChangedFiles),
		)
		return nil
	}

	p.logger.Info("Rule declarations changed",
		"from", shortSHA(result.FromSHA),
		"to", shortSHA(result.ToSHA),
		"changed_files", result.ChangedFiles,
	)

	if err := p.reload(p.repo.RulesPath()); err != nil {
		p.mu.Lock()
		p.stats.FailedReloads++
		p.rejected = result.ToSHA
		p.mu.Unlock()

		p.logger.Error("Rule set rejected, rolling back",
			"error", err,
			"commit", shortSHA(result.ToSHA),
			"rollback_to", shortSHA(lastGood),
		)
		if rbErr := p.rollback(lastGood); rbErr != nil {
			return fmt.Errorf("reload failed: %w (rollback: %v)", err, rbErr)
		}
		return fmt.Errorf("reload failed at %s: %w", shortSHA(result.ToSHA), err)
	}

	p.mu.Lock()
	p.lastGood = result.ToSHA
	p.rejected = ""
	p.stats.Reloads++
	p.stats.LastReload = time.Now()
	p.mu.Unlock()

	p.logger.Info("Rule set reloaded", "commit", shortSHA(result.ToSHA))
	return nil
}

func (p *Poller) rollback(sha string) error {
	if err := p.repo.Rollback(sha); err != nil {
		return fmt.Errorf("failed to rollback repository: %w", err)
	}
	if err := p.reload(p.repo.RulesPath()); err != nil {
		return fmt.Errorf("failed to reload after rollback: %w", err)
	}
	return nil
}

func (p *Poller) touchesDeclarations(files []string) bool {
	p.mu.RLock()
	exts := p.extensions
	p.mu.RUnlock()

	prefix := p.repo.RulesPrefix()
	for _, file := range files {
		if prefix != "" && !strings.HasPrefix(file, prefix+"/") {
			continue
		}
		ext := strings.ToLower(path.Ext(file))
		for _, e := range exts {
			if ext == strings.ToLower(e) {
				return true
			}
		}
	}
	return false
}
