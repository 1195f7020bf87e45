package mapfile

import "fmt"

// FormatError is returned when a file is not a well-formed datafile.
type FormatError struct {
	// Path is the path of the offending file
	Path string

	// Offset is the byte offset where decoding failed (-1 if not applicable)
	Offset int64

	// Message describes the problem
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("invalid map file %q: %s", e.Path, e.Message)
	if e.Offset >= 0 {
		msg = fmt.Sprintf("invalid map file %q at offset %d: %s", e.Path, e.Offset, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *FormatError) Unwrap() error {
	return e.Cause
}
