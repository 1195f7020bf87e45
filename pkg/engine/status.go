package engine

import "encoding/json"

// StatusTable maps rule names to their outcome for one run.
// true means the rule succeeded; false means it failed, was blocked,
// could not be resolved or was invalid. Entries are never removed.
type StatusTable struct {
	order  []string
	values map[string]bool
}

// NewStatusTable creates an empty status table.
func NewStatusTable() *StatusTable {
	return &StatusTable{values: make(map[string]bool)}
}

// Set records the status of name. A later Set for the same name
// overwrites the value but keeps the original position.
func (t *StatusTable) Set(name string, ok bool) {
	if _, exists := t.values[name]; !exists {
		t.order = append(t.order, name)
	}
	t.values[name] = ok
}

// Get returns the status of name and whether it was recorded.
func (t *StatusTable) Get(name string) (ok bool, recorded bool) {
	ok, recorded = t.values[name]
	return ok, recorded
}

// Satisfied reports whether name was recorded with a true status.
func (t *StatusTable) Satisfied(name string) bool {
	return t.values[name]
}

// Unmet returns the dependencies that are not satisfied, in order.
func (t *StatusTable) Unmet(deps []string) []string {
	var unmet []string
	for _, dep := range deps {
		if !t.Satisfied(dep) {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}

// Names returns the recorded names in first-recorded order.
func (t *StatusTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of recorded names.
func (t *StatusTable) Len() int {
	return len(t.order)
}

// Map returns a copy of the table as a plain map.
func (t *StatusTable) Map() map[string]bool {
	out := make(map[string]bool, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the table as a JSON object.
func (t *StatusTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}
