package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("rules.dir", "missing required field")

	expected := "config error in rules.dir: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("run", underlyingErr)

	if err.Error() != "command run failed: underlying error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	cause := errors.New("required rule failed")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain error", err: cause, want: ExitUsage},
		{name: "exit error", err: Exit(ExitFailure, cause), want: ExitFailure},
		{name: "wrapped exit error", err: fmt.Errorf("run: %w", Exit(ExitFailure, nil)), want: ExitFailure},
		{name: "config error", err: NewConfigError("format", "bad"), want: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("boom")
	if got := Exit(1, cause).Error(); got != "boom" {
		t.Errorf("Error() = %q, want boom", got)
	}
	if got := Exit(1, nil).Error(); got != "exit status 1" {
		t.Errorf("Error() = %q, want exit status 1", got)
	}
	if !errors.Is(Exit(1, cause), cause) {
		t.Errorf("errors.Is() should see the cause")
	}
}
