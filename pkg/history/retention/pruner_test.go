package retention

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/history"
	"maps-workflow/mapcheck/pkg/history/storage"
)

var now = time.Date(2026, 6, 15, 3, 0, 0, 0, time.UTC)

func seed(t *testing.T, store history.Store, ages ...time.Duration) {
	t.Helper()
	for i, age := range ages {
		run := &history.Run{
			ID:        fmt.Sprintf("run-%d", i),
			MapPath:   "maps/ctf1.map",
			StartedAt: now.Add(-age),
			Outcome:   "completed",
		}
		if err := store.Save(context.Background(), run); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
}

func newTestPruner(store history.Store, cfg *Config) *Pruner {
	p := NewPruner(store, cfg)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_PruneByAge(t *testing.T) {
	store := storage.NewMemoryStore()
	day := 24 * time.Hour
	seed(t, store, 10*day, 8*day, 5*day, 3*day, time.Hour)

	pruner := newTestPruner(store, &Config{RetentionDays: 7})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() = %d, want 2", deleted)
	}
	if store.Len() != 3 {
		t.Errorf("remaining runs = %d, want 3", store.Len())
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(t, store, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	pruner := newTestPruner(store, &Config{MaxRecords: 2})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() = %d, want 3", deleted)
	}

	for _, id := range []string{"run-3", "run-4"} {
		if _, err := store.Get(context.Background(), id); err != nil {
			t.Errorf("Get(%s) error = %v, want the newest runs kept", id, err)
		}
	}
}

func TestPruner_AgeThenCount(t *testing.T) {
	store := storage.NewMemoryStore()
	day := 24 * time.Hour
	seed(t, store, 40*day, 20*day, 3*day, 2*day, day)

	pruner := newTestPruner(store, &Config{RetentionDays: 30, MaxRecords: 2})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() = %d, want 3", deleted)
	}
	if store.Len() != 2 {
		t.Errorf("remaining runs = %d, want 2", store.Len())
	}
}

func TestPruner_Disabled(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(t, store, 1000*24*time.Hour)

	pruner := newTestPruner(store, &Config{})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d, want 0", deleted)
	}
}

type failingStore struct {
	history.Store
}

func (failingStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestPruner_Error(t *testing.T) {
	pruner := newTestPruner(failingStore{storage.NewMemoryStore()}, &Config{RetentionDays: 1})

	_, err := pruner.Prune(context.Background())
	var re *history.RetentionError
	if !errors.As(err, &re) {
		t.Fatalf("Prune() error = %v, want *RetentionError", err)
	}
	if re.RetentionDays != 1 {
		t.Errorf("RetentionDays = %d, want 1", re.RetentionDays)
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.RetentionConfig{Days: 30, MaxRecords: 500, Schedule: "@daily"})
	if cfg.RetentionDays != 30 || cfg.MaxRecords != 500 || cfg.PruneSchedule != "@daily" {
		t.Errorf("ConfigFrom() = %+v", cfg)
	}
}
