package history

import "fmt"

const (
	// DefaultLimit is used when a query sets no limit.
	DefaultLimit = 100

	// MaxLimit is the largest limit a query may request.
	MaxLimit = 10000
)

var validOutcomes = map[string]bool{
	"completed": true,
	"aborted":   true,
}

// Validate checks the query's bounds.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return &QueryError{Query: q, Cause: fmt.Errorf("limit must be >= 0, got %d", q.Limit)}
	}
	if q.Limit > MaxLimit {
		return &QueryError{Query: q, Cause: fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit)}
	}
	if q.Offset < 0 {
		return &QueryError{Query: q, Cause: fmt.Errorf("offset must be >= 0, got %d", q.Offset)}
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return &QueryError{Query: q, Cause: fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder)}
	}
	if q.Since != nil && q.Until != nil && q.Since.After(*q.Until) {
		return &QueryError{Query: q, Cause: fmt.Errorf("since must be before until")}
	}
	if q.Outcome != "" && !validOutcomes[q.Outcome] {
		return &QueryError{Query: q, Cause: fmt.Errorf("invalid outcome: %s (must be 'completed' or 'aborted')", q.Outcome)}
	}
	return nil
}

// EffectiveLimit returns the limit to apply, substituting DefaultLimit for
// zero.
func (q *Query) EffectiveLimit() int {
	if q.Limit > 0 {
		return q.Limit
	}
	return DefaultLimit
}

// Descending reports whether results are ordered newest first.
func (q *Query) Descending() bool {
	return q.SortOrder != "asc"
}
