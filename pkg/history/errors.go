package history

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// StorageError represents a failure in a storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "postgres", etc.)
	Operation string // Operation that failed ("save", "list", "delete", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new storage error.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// QueryError represents an invalid query.
type QueryError struct {
	Query *Query
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// RetentionError represents a failure while pruning runs.
type RetentionError struct {
	RetentionDays int
	MaxRecords    int64
	Cause         error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [retention_days=%d, max_records=%d]: %v", e.RetentionDays, e.MaxRecords, e.Cause)
}

// Unwrap returns the underlying error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// ExportError represents a failure while exporting runs.
type ExportError struct {
	Format string // Export format ("csv", "json")
	Count  int    // Runs written before the failure
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, runs=%d]: %v", e.Format, e.Count, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new export error.
func NewExportError(format string, count int, cause error) *ExportError {
	return &ExportError{Format: format, Count: count, Cause: cause}
}
