package rules

import (
	"errors"
	"testing"
)

type stubRule struct{}

func (stubRule) Evaluate() ([]Violation, error) { return nil, nil }
func (stubRule) Explain() string                { return "stub" }

func stubFactory(Input, Params) (Rule, error) { return stubRule{}, nil }

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register("filesize", "MaxFileSize", stubFactory)
	reg.Register("filesize", "MinFileSize", stubFactory)
	reg.Register("datafile", "Version", stubFactory)

	f, err := reg.Resolve("filesize", "MaxFileSize")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	rule, err := f(Input{}, nil)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	if rule.Explain() != "stub" {
		t.Errorf("Explain() = %q, want %q", rule.Explain(), "stub")
	}

	if got := reg.Modules(); len(got) != 2 || got[0] != "datafile" || got[1] != "filesize" {
		t.Errorf("Modules() = %v, want [datafile filesize]", got)
	}

	m, _ := reg.Module("filesize")
	if got := m.Classes(); len(got) != 2 || got[0] != "MaxFileSize" {
		t.Errorf("Classes() = %v", got)
	}
}

func TestRegistry_ResolveNotFound(t *testing.T) {
	reg := NewRegistry()
	reg.Register("filesize", "MaxFileSize", stubFactory)

	tests := []struct {
		name   string
		module string
		class  string
		want   ResolutionKind
	}{
		{name: "missing module", module: "nope", class: "MaxFileSize", want: ModuleNotFound},
		{name: "missing class", module: "filesize", class: "Nope", want: ClassNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Resolve(tt.module, tt.class)
			var resErr *ResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("Resolve() error type = %T, want *ResolutionError", err)
			}
			if resErr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", resErr.Kind, tt.want)
			}
		})
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register("filesize", "MaxFileSize", stubFactory)

	defer func() {
		if recover() == nil {
			t.Error("Register() duplicate did not panic")
		}
	}()
	reg.Register("filesize", "MaxFileSize", stubFactory)
}

func TestParams(t *testing.T) {
	p := Params{
		"pattern":   "^[a-z]+$",
		"max_bytes": 1024,
		"float_int": float64(3),
		"fraction":  1.5,
		"allowed":   []any{3, int64(4)},
		"bad_list":  []any{"x"},
	}

	if s, err := p.String("pattern", ""); err != nil || s != "^[a-z]+$" {
		t.Errorf("String(pattern) = %q, %v", s, err)
	}
	if s, err := p.String("missing", "def"); err != nil || s != "def" {
		t.Errorf("String(missing) = %q, %v", s, err)
	}
	if _, err := p.String("max_bytes", ""); err == nil {
		t.Error("String(max_bytes) error = nil, want type error")
	}
	if n, err := p.Int("max_bytes", 0); err != nil || n != 1024 {
		t.Errorf("Int(max_bytes) = %d, %v", n, err)
	}
	if n, err := p.Int("float_int", 0); err != nil || n != 3 {
		t.Errorf("Int(float_int) = %d, %v", n, err)
	}
	if _, err := p.Int("fraction", 0); err == nil {
		t.Error("Int(fraction) error = nil, want error")
	}
	if list, err := p.Ints("allowed", nil); err != nil || len(list) != 2 || list[1] != 4 {
		t.Errorf("Ints(allowed) = %v, %v", list, err)
	}
	var pe *ParamError
	if _, err := p.Ints("bad_list", nil); !errors.As(err, &pe) {
		t.Errorf("Ints(bad_list) error = %v, want *ParamError", err)
	}
}

func TestViolationString(t *testing.T) {
	v := Violation{Message: "tile outside map", Location: "layer Game"}
	if got := v.String(); got != "layer Game: tile outside map" {
		t.Errorf("String() = %q", got)
	}
	if got := Violationf("size %d", 3).String(); got != "size 3" {
		t.Errorf("String() = %q", got)
	}
}
