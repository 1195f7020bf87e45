package rules

import (
	"fmt"
	"sort"
	"sync"
)

// Module is a named group of rule classes.
type Module struct {
	name    string
	classes map[string]Factory
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Class returns the factory registered under class.
func (m *Module) Class(class string) (Factory, error) {
	f, ok := m.classes[class]
	if !ok {
		return nil, &ResolutionError{Kind: ClassNotFound, Module: m.name, Class: class}
	}
	return f, nil
}

// Classes returns the sorted class names of the module.
func (m *Module) Classes() []string {
	names := make([]string, 0, len(m.classes))
	for name := range m.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry maps module and class names to rule factories.
// It is populated at process start and read during runs; all methods are
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*Module),
	}
}

// Register adds a factory under module and class. Registering the same
// pair twice is a programming error and panics.
func (r *Registry) Register(module, class string, factory Factory) {
	if module == "" || class == "" {
		panic("rules: Register called with empty module or class")
	}
	if factory == nil {
		panic(fmt.Sprintf("rules: Register %s.%s with nil factory", module, class))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.modules[module]
	if !ok {
		m = &Module{name: module, classes: make(map[string]Factory)}
		r.modules[module] = m
	}
	if _, dup := m.classes[class]; dup {
		panic(fmt.Sprintf("rules: duplicate registration of %s.%s", module, class))
	}
	m.classes[class] = factory
}

// Module returns the module registered under name.
func (r *Registry) Module(name string) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	if !ok {
		return nil, &ResolutionError{Kind: ModuleNotFound, Module: name}
	}
	return m, nil
}

// Resolve looks up the factory for module and class.
func (r *Registry) Resolve(module, class string) (Factory, error) {
	m, err := r.Module(module)
	if err != nil {
		return nil, err
	}
	return m.Class(class)
}

// Modules returns the sorted names of all registered modules.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
