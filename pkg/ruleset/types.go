package ruleset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source locates a rule declaration inside the rule set.
type Source struct {
	// File is the declaration file path
	File string `json:"file"`

	// Index is the zero-based position of the entry in the file's rules
	Index int `json:"index"`
}

// String returns "file.yaml#index".
func (s Source) String() string {
	return fmt.Sprintf("%s#%d", filepath.Base(s.File), s.Index)
}

// Entry is one raw, not yet validated, rule declaration.
type Entry struct {
	// Fields holds the decoded mapping; nil if the entry was not a mapping
	Fields map[string]any

	// Source locates the declaration
	Source Source
}

// Name returns the declared name if it is a string that is not blank.
func (e Entry) Name() (string, bool) {
	name, ok := e.Fields["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// LoaderConfig contains configuration for the declaration loader.
type LoaderConfig struct {
	// Extensions is the list of declaration file extensions (default: [".yaml"])
	Extensions []string

	// MaxFileSize is the maximum declaration file size in bytes (default: 1MB)
	MaxFileSize int64
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Extensions:  []string{".yaml"},
		MaxFileSize: 1024 * 1024,
	}
}
