package ruleset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func entryNames(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name, _ := e.Name()
		names = append(names, name)
	}
	return names
}

func TestLoader_LoadDirectory_Order(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	entries, err := loader.LoadDirectory(filepath.Join("testdata", "rules"), nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	want := []string{"size", "version", "sounds"}
	if diff := cmp.Diff(want, entryNames(entries)); diff != "" {
		t.Errorf("LoadDirectory() names mismatch (-want +got):\n%s", diff)
	}

	if got := entries[1].Source.String(); got != "00-base.yaml#1" {
		t.Errorf("Source = %q, want %q", got, "00-base.yaml#1")
	}
}

func TestLoader_LoadDirectory_Exclude(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	entries, err := loader.LoadDirectory(filepath.Join("testdata", "rules"), []string{"10-", "20-optional", ""})
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	want := []string{"size", "version"}
	if diff := cmp.Diff(want, entryNames(entries)); diff != "" {
		t.Errorf("LoadDirectory() names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_LoadDirectory_DefaultSkipsYML(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"00-a.yaml": "rules:\n  - name: a\n    module: m\n    class_name: A\n    type: fail\n",
		"10-b.yml":  "rules:\n  - name: b\n    module: m\n    class_name: B\n    type: require\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := NewLoader(nil).LoadDirectory(dir, nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a"}, entryNames(entries)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_LoadDirectory_OptInYML(t *testing.T) {
	loader := NewLoader(&LoaderConfig{Extensions: []string{".yaml", ".yml"}, MaxFileSize: 1 << 20})

	entries, err := loader.LoadDirectory(filepath.Join("testdata", "rules"), nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	want := []string{"size", "version", "filename", "sounds"}
	if diff := cmp.Diff(want, entryNames(entries)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_LoadDirectory_MalformedIsFatal(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	_, err := loader.LoadDirectory(filepath.Join("testdata", "broken"), nil)
	if err == nil {
		t.Fatal("LoadDirectory() error = nil, want error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("LoadDirectory() error type = %T, want *ParseError", err)
	}
	if !strings.HasSuffix(parseErr.FilePath, "00-bad.yaml") {
		t.Errorf("FilePath = %q", parseErr.FilePath)
	}
}

func TestLoader_LoadDirectory_NotFound(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.LoadDirectory(filepath.Join("testdata", "nonexistent"), nil)

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("LoadDirectory() error type = %T, want *LoadError", err)
	}
	if !strings.Contains(loadErr.Message, "directory not found") {
		t.Errorf("Message = %q, want to contain 'directory not found'", loadErr.Message)
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantMsg string
	}{
		{name: "empty", content: nil, wantMsg: "empty declaration file"},
		{name: "missing rules", content: []byte("version: 1\n"), wantMsg: "missing top-level"},
		{name: "invalid utf8", content: []byte{0xff, 0xfe, 0xfd}, wantMsg: "invalid UTF-8"},
		{name: "rules not a list", content: []byte("rules: 3\n"), wantMsg: "YAML parsing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, tt.content, 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := NewLoader(nil).LoadFile(path)
			if err == nil {
				t.Fatal("LoadFile() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("LoadFile() error = %q, want to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoader_LoadFile_SizeLimit(t *testing.T) {
	loader := NewLoader(&LoaderConfig{Extensions: []string{".yaml"}, MaxFileSize: 10})

	_, err := loader.LoadFile(filepath.Join("testdata", "rules", "00-base.yaml"))

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("LoadFile() error type = %T, want *LoadError", err)
	}
	if !strings.Contains(loadErr.Message, "exceeds maximum") {
		t.Errorf("Message = %q", loadErr.Message)
	}
}

func TestParse_NonMappingEntry(t *testing.T) {
	entries, err := Parse("inline.yaml", []byte("rules:\n  - just-a-string\n  - name: ok\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Fields != nil {
		t.Errorf("entries[0].Fields = %v, want nil", entries[0].Fields)
	}
	if name, ok := entries[1].Name(); !ok || name != "ok" {
		t.Errorf("entries[1].Name() = %q, %v", name, ok)
	}
}

func TestDuplicates(t *testing.T) {
	entries := []Entry{
		{Fields: map[string]any{"name": "a"}, Source: Source{File: "00.yaml", Index: 0}},
		{Fields: map[string]any{"name": "b"}, Source: Source{File: "00.yaml", Index: 1}},
		{Fields: map[string]any{"name": "a"}, Source: Source{File: "10.yaml", Index: 0}},
		{Fields: map[string]any{}, Source: Source{File: "10.yaml", Index: 1}},
	}

	dups := Duplicates(entries)
	if len(dups) != 1 || dups[0].Name != "a" || len(dups[0].Sources) != 2 {
		t.Errorf("Duplicates() = %+v", dups)
	}
}
