package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// declarationFile is the document shape of one declaration file.
type declarationFile struct {
	Rules *[]any `yaml:"rules"`
}

// Loader reads rule declarations from the file system.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a new loader with the given configuration.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// LoadDirectory reads every declaration file in dir, in lexicographic
// filename order, and returns the concatenation of their rules. Files whose
// name starts with one of the exclude prefixes are skipped.
func (l *Loader) LoadDirectory(dir string, exclude []string) ([]Entry, error) {
	files, err := l.Files(dir, exclude)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, path := range files {
		fileEntries, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileEntries...)
	}
	return entries, nil
}

// Files returns the declaration files LoadDirectory would read, in order.
func (l *Loader) Files(dir string, exclude []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to list directory", Cause: err}
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var files []string
	for _, name := range names {
		if Excluded(name, exclude) {
			continue
		}
		if !l.hasValidExtension(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// LoadFile reads the rules of a single declaration file.
func (l *Loader) LoadFile(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if info.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	return Parse(path, data)
}

// Parse decodes declaration file contents. path is only used for error
// reporting and entry sources.
func Parse(path string, data []byte) ([]Entry, error) {
	var doc declarationFile
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{FilePath: path, Message: "empty declaration file"}
		}
		return nil, &ParseError{FilePath: path, Line: yamlErrorLine(err), Message: "YAML parsing failed", Cause: err}
	}
	if doc.Rules == nil {
		return nil, &ParseError{FilePath: path, Message: "missing top-level \"rules\" sequence"}
	}

	entries := make([]Entry, 0, len(*doc.Rules))
	for i, raw := range *doc.Rules {
		fields, _ := raw.(map[string]any)
		entries = append(entries, Entry{
			Fields: fields,
			Source: Source{File: path, Index: i},
		})
	}
	return entries, nil
}

// Excluded reports whether name starts with any of the prefixes.
// Empty prefixes never match.
func Excluded(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// HasValidExtension reports whether path has a declaration file extension.
func (l *Loader) HasValidExtension(path string) bool {
	return l.hasValidExtension(path)
}

func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// yamlErrorLine extracts the first line number from a yaml.v3 error.
func yamlErrorLine(err error) int {
	var typeErr *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	var line int
	if i := strings.Index(msg, "line "); i >= 0 {
		fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}

// Duplicate is a rule name declared more than once.
type Duplicate struct {
	Name    string   `json:"name"`
	Sources []Source `json:"sources"`
}

// Duplicates returns the names declared by more than one entry, in order
// of first appearance.
func Duplicates(entries []Entry) []Duplicate {
	seen := make(map[string][]Source)
	var order []string
	for _, e := range entries {
		name, ok := e.Name()
		if !ok {
			continue
		}
		if _, exists := seen[name]; !exists {
			order = append(order, name)
		}
		seen[name] = append(seen[name], e.Source)
	}

	var dups []Duplicate
	for _, name := range order {
		if len(seen[name]) > 1 {
			dups = append(dups, Duplicate{Name: name, Sources: seen[name]})
		}
	}
	return dups
}
