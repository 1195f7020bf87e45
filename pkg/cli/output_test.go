package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

type report struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func (r report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d\n", r.Name, r.Count)
	return err
}

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q, want %q", string(output), "test message\n")
	}

	output, err = formatter.Format(report{Name: "rules", Count: 3})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "rules: 3\n" {
		t.Errorf("Format() = %q, want %q", string(output), "rules: 3\n")
	}
}

func TestTextFormatterWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, report{Name: "maps", Count: 1}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "maps: 1\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		indent bool
	}{
		{name: "compact", indent: false},
		{name: "indented", indent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(report{Name: "a", Count: 2})
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var got report
			if err := json.Unmarshal(output, &got); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if got != (report{Name: "a", Count: 2}) {
				t.Errorf("round trip = %+v", got)
			}
			if tt.indent != strings.Contains(string(output), "\n") {
				t.Errorf("indentation mismatch: %s", output)
			}
		})
	}
}

func TestYAMLFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&YAMLFormatter{}).FormatTo(buf, report{Name: "a", Count: 2}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "name: a\ncount: 2\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want OutputFormat
		err  bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "csv", err: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.err)
			continue
		}
		var cfgErr *ConfigError
		if tt.err && !errors.As(err, &cfgErr) {
			t.Errorf("ParseFormat(%q) error type = %T, want *ConfigError", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Errorf("NewFormatter(json) is not a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Errorf("NewFormatter(yaml) is not a YAMLFormatter")
	}
	if _, ok := NewFormatter("other").(*TextFormatter); !ok {
		t.Errorf("NewFormatter(other) is not a TextFormatter")
	}
}
