package rules

import "fmt"

// ResolutionKind tells which lookup step failed.
type ResolutionKind int

const (
	// ModuleNotFound means no rule module is registered under the name
	ModuleNotFound ResolutionKind = iota

	// ClassNotFound means the module exists but has no such class
	ClassNotFound
)

// String returns a string representation of the kind.
func (k ResolutionKind) String() string {
	switch k {
	case ModuleNotFound:
		return "module not found"
	case ClassNotFound:
		return "class not found"
	default:
		return "unknown"
	}
}

// ResolutionError is returned when a declaration references a module or
// class that is not registered. It is not fatal to a run.
type ResolutionError struct {
	Kind   ResolutionKind
	Module string
	Class  string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Kind == ClassNotFound {
		return fmt.Sprintf("rule class %q not found in module %q", e.Class, e.Module)
	}
	return fmt.Sprintf("rule module %q not found", e.Module)
}
