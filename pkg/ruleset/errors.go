package ruleset

import (
	"fmt"
	"strings"
)

// LoadError represents an error that occurred while reading declarations.
// This includes file system errors like "file not found" or
// "permission denied", and file size limit violations.
type LoadError struct {
	// FilePath is the path to the file or directory that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error that caused this load error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule declarations %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule declarations %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents an error that occurred during YAML parsing.
type ParseError struct {
	// FilePath is the path to the file that failed to parse
	FilePath string

	// Line is the line number where the error occurred (1-indexed, 0 if unknown)
	Line int

	// Message describes the parsing error
	Message string

	// Cause is the underlying parser error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error in %q: %s", e.FilePath, e.Message)
	if e.Line > 0 {
		msg = fmt.Sprintf("parse error in %q at line %d: %s", e.FilePath, e.Line, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FieldError describes one invalid field of a rule declaration.
type FieldError struct {
	// Field is the declaration key (e.g. "class_name")
	Field string

	// Message is a human-readable error message
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigurationError is returned when a rule declaration fails structural
// validation. The rule is recorded as failed and never executed.
type ConfigurationError struct {
	// Name is the declared rule name, empty if it was missing or unusable
	Name string

	// Source locates the declaration
	Source Source

	// Errors lists every offending field
	Errors []FieldError
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid rule declaration")
	if e.Name != "" {
		sb.WriteString(fmt.Sprintf(" %q", e.Name))
	}
	if e.Source.File != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", e.Source))
	}
	if len(e.Errors) == 0 {
		return sb.String()
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Error()
	}
	sb.WriteString(": ")
	sb.WriteString(strings.Join(parts, "; "))
	return sb.String()
}

// Fields returns the names of the offending fields.
func (e *ConfigurationError) Fields() []string {
	out := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		out[i] = fe.Field
	}
	return out
}
