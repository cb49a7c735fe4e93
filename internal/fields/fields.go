// Package fields models the input fields a host renders. The form logic only
// reads and writes fields through this capability, so it runs headlessly.
package fields

import (
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

// Fields is the capability the form logic needs from a host UI.
type Fields interface {
	// Get returns the field's value. ok is false when the host does not
	// render a field with this id.
	Get(id string) (value string, ok bool)
	// Set writes value into the field. Unknown ids are ignored.
	Set(id, value string)
}

// Map is a concurrency-safe Fields backed by a map. It renders every schema
// field plus the status field unless built with an explicit id set.
type Map struct {
	mu     sync.RWMutex
	values map[string]string
	known  map[string]bool
}

// NewMap returns fields for the full schema, all empty.
func NewMap() *Map {
	ids := append(schema.Keys(), schema.StatusField)
	return NewMapWithIDs(ids...)
}

// NewMapWithIDs returns fields rendering only the given ids.
func NewMapWithIDs(ids ...string) *Map {
	m := &Map{values: map[string]string{}, known: map[string]bool{}}
	for _, id := range ids {
		m.known[id] = true
		m.values[id] = ""
	}
	return m
}

func (m *Map) Get(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.known[id] {
		return "", false
	}
	return m.values[id], true
}

func (m *Map) Set(id, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known[id] {
		return
	}
	m.values[id] = value
}

// Values returns a copy of all rendered field values.
func (m *Map) Values() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Load sets every known id present in values.
func (m *Map) Load(values map[string]string) {
	for id, v := range values {
		m.Set(id, v)
	}
}

// Suggest returns the schema key closest to id by edit distance, for
// "did you mean" hints. It returns "" when nothing is reasonably close.
func Suggest(id string) string {
	best, bestDist := "", -1
	keys := schema.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		d := levenshtein.ComputeDistance(id, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist > len(id)/2+1 {
		return ""
	}
	return best
}
