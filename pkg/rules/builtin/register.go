package builtin

import (
	"errors"

	"maps-workflow/mapcheck/pkg/rules"
)

// Module names.
const (
	ModuleFileSize   = "filesize"
	ModuleFileName   = "filename"
	ModuleDatafile   = "datafile"
	ModuleExpression = "expression"
)

// ErrNoMap is returned by Evaluate when the rule was built without a map.
var ErrNoMap = errors.New("no map loaded")

// Register installs every built-in rule class into reg.
func Register(reg *rules.Registry) {
	reg.Register(ModuleFileSize, "MaxFileSize", NewMaxFileSize)
	reg.Register(ModuleFileName, "NamePattern", NewNamePattern)
	reg.Register(ModuleDatafile, "Version", NewVersion)
	reg.Register(ModuleDatafile, "ItemTypes", NewItemTypes)
	reg.Register(ModuleExpression, "CEL", NewCEL)
}

// NewRegistry returns a registry holding the built-in rules.
func NewRegistry() *rules.Registry {
	reg := rules.NewRegistry()
	Register(reg)
	return reg
}
