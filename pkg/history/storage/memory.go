package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"maps-workflow/mapcheck/pkg/history"
)

// MemoryStore implements history.Store using an in-memory map.
type MemoryStore struct {
	runs map[string]*history.Run
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*history.Run),
	}
}

// Save stores a copy of the run.
func (s *MemoryStore) Save(ctx context.Context, run *history.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = copyRun(run)
	return nil
}

// Get returns a copy of the run with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*history.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	return copyRun(run), nil
}

// List returns runs matching the query, newest first unless the query
// asks for ascending order.
func (s *MemoryStore) List(ctx context.Context, query *history.Query) ([]*history.Run, error) {
	if query == nil {
		query = &history.Query{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(query)
	sortRuns(matched, query.Descending())

	start := query.Offset
	if start > len(matched) {
		return []*history.Run{}, nil
	}
	end := start + query.EffectiveLimit()
	if end > len(matched) {
		end = len(matched)
	}

	results := make([]*history.Run, 0, end-start)
	for _, run := range matched[start:end] {
		results = append(results, copyRun(run))
	}
	return results, nil
}

// Count returns the number of runs matching the query.
func (s *MemoryStore) Count(ctx context.Context, query *history.Query) (int64, error) {
	if query == nil {
		query = &history.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filter(query))), nil
}

// DeleteOlderThan removes runs that started before cutoff.
func (s *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteOldest removes the oldest runs until at most keep remain.
func (s *MemoryStore) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		return 0, history.NewStorageError("memory", "delete_oldest", errNegativeKeep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*history.Run, 0, len(s.runs))
	for _, run := range s.runs {
		all = append(all, run)
	}
	if int64(len(all)) <= keep {
		return 0, nil
	}

	sortRuns(all, true)
	var deleted int64
	for _, run := range all[keep:] {
		delete(s.runs, run.ID)
		deleted++
	}
	return deleted, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored runs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *MemoryStore) filter(query *history.Query) []*history.Run {
	var matched []*history.Run
	for _, run := range s.runs {
		if matchesQuery(run, query) {
			matched = append(matched, run)
		}
	}
	return matched
}

func matchesQuery(run *history.Run, query *history.Query) bool {
	if query.Since != nil && run.StartedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && run.StartedAt.After(*query.Until) {
		return false
	}
	if query.MapPath != "" && run.MapPath != query.MapPath {
		return false
	}
	if query.Outcome != "" && run.Outcome != query.Outcome {
		return false
	}
	return true
}

// sortRuns orders by start time, breaking ties by ID like the SQL backends.
func sortRuns(runs []*history.Run, descending bool) {
	sort.Slice(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if !a.StartedAt.Equal(b.StartedAt) {
			if descending {
				return a.StartedAt.After(b.StartedAt)
			}
			return a.StartedAt.Before(b.StartedAt)
		}
		if descending {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

func copyRun(run *history.Run) *history.Run {
	c := *run
	c.Rules = make([]history.RuleRecord, len(run.Rules))
	for i, r := range run.Rules {
		r.Violations = append([]string(nil), r.Violations...)
		c.Rules[i] = r
	}
	return &c
}
