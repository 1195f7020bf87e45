package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/history"
)

// Config contains retention policy configuration.
type Config struct {
	// RetentionDays is how long runs are kept (0 = forever).
	RetentionDays int

	// PruneSchedule is a standard cron expression. Empty disables
	// scheduled pruning.
	PruneSchedule string

	// MaxRecords caps the number of stored runs (0 = unlimited).
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// ConfigFrom converts the file configuration.
func ConfigFrom(rc config.RetentionConfig) *Config {
	return &Config{
		RetentionDays: rc.Days,
		PruneSchedule: rc.Schedule,
		MaxRecords:    rc.MaxRecords,
	}
}

// Pruner deletes runs that fall outside the retention policy.
type Pruner struct {
	store     history.Store
	config    *Config
	logger    *slog.Logger
	now       func() time.Time
	scheduler *Scheduler
}

// NewPruner creates a new pruner for the store.
func NewPruner(store history.Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "history.retention"),
		now:    time.Now,
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune applies the age limit and then the record limit, returning the
// total number of runs deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return totalDeleted, p.retentionError(fmt.Errorf("prune by age failed: %w", err))
		}
		totalDeleted += deleted
		p.logger.Debug("pruned runs by age",
			"deleted_count", deleted,
			"cutoff_time", cutoff,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.store.DeleteOldest(ctx, p.config.MaxRecords)
		if err != nil {
			return totalDeleted, p.retentionError(fmt.Errorf("prune by count failed: %w", err))
		}
		totalDeleted += deleted
		p.logger.Debug("pruned runs by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if totalDeleted > 0 {
		p.logger.Info("history pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

func (p *Pruner) retentionError(err error) error {
	return &history.RetentionError{
		RetentionDays: p.config.RetentionDays,
		MaxRecords:    p.config.MaxRecords,
		Cause:         err,
	}
}

// Start begins scheduled pruning.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled pruning time, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
