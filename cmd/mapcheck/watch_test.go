package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"maps-workflow/mapcheck/pkg/config"
	"maps-workflow/mapcheck/pkg/telemetry/logging"
)

func newTestSession(t *testing.T, rulesDir, mapPath string) *watchSession {
	t.Helper()
	cfg := config.Default()
	cfg.Rules.Dir = rulesDir

	r, err := newRunner(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("newRunner() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close(context.Background()) })

	return newWatchSession(cfg, logging.Discard(), r, mapPath, rulesDir, nil)
}

func TestWatchSession_TriggerCoalesces(t *testing.T) {
	s := newTestSession(t, t.TempDir(), "unused.map")

	if !s.Trigger() {
		t.Fatal("first Trigger() = false, want true")
	}
	if s.Trigger() {
		t.Error("second Trigger() = true while a run is queued")
	}
	<-s.pending
	if !s.Trigger() {
		t.Error("Trigger() = false after the queue drained")
	}
}

func TestWatchSession_RunOnce(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	s := newTestSession(t, rules, writeMap(t))

	s.runOnce(context.Background())
	snap := s.status.Snapshot()
	if snap.Runs != 1 || snap.FailedRuns != 0 {
		t.Fatalf("runs = %d failed = %d, want 1 and 0", snap.Runs, snap.FailedRuns)
	}
	if snap.Last == nil || !snap.Last.Success {
		t.Errorf("last run = %+v, want success", snap.Last)
	}

	// A change that breaks the declarations skips the run.
	if err := os.WriteFile(filepath.Join(rules, "00-base.yaml"), []byte("rules: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.runOnce(context.Background())
	snap = s.status.Snapshot()
	if snap.Runs != 1 {
		t.Errorf("runs = %d after a load failure, want 1", snap.Runs)
	}
	if snap.LoadError == "" {
		t.Error("LoadError is empty after a load failure")
	}

	// Fixing them clears the error on the next run.
	if err := os.WriteFile(filepath.Join(rules, "00-base.yaml"), []byte(abortingRules), 0o644); err != nil {
		t.Fatal(err)
	}
	s.runOnce(context.Background())
	snap = s.status.Snapshot()
	if snap.Runs != 2 || snap.FailedRuns != 1 {
		t.Errorf("runs = %d failed = %d, want 2 and 1", snap.Runs, snap.FailedRuns)
	}
	if snap.LoadError != "" {
		t.Errorf("LoadError = %q after a successful run", snap.LoadError)
	}
}

func TestWatchSession_Loop(t *testing.T) {
	rules := writeRules(t, map[string]string{"00-base.yaml": passingRules})
	s := newTestSession(t, rules, writeMap(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Loop(ctx)
		close(done)
	}()

	s.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for s.status.Snapshot().Runs == 0 {
		if time.Now().After(deadline) {
			t.Fatal("queued run did not happen")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Loop did not return after cancel")
	}
}
