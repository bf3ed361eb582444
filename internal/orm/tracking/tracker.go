// Package tracking records which document paths changed since a document
// was last loaded or saved.
package tracking

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Change represents a modification of a single path
type Change struct {
	Path     string
	OldValue any
	NewValue any
}

// Tracker tracks path modifications against a snapshot of the stored state
type Tracker struct {
	mu       sync.RWMutex
	original map[string]any
	changes  map[string]*Change
	marked   map[string]bool
}

// New creates a tracker whose baseline is original
func New(original map[string]any) *Tracker {
	t := &Tracker{}
	t.Reset(original)
	return t
}

// deepCopyMap creates a deep copy of a document map
func deepCopyMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}
	return result
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

// lookup resolves a dotted path in the baseline
func (t *Tracker) lookup(path string) any {
	var cur any = t.original
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Record notes that path now holds value. Setting a path back to its
// baseline value clears the change. Assigning a path replaces everything
// below it, so changes recorded on its children are discarded.
func (t *Tracker) Record(path string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := path + "."
	for changed := range t.changes {
		if strings.HasPrefix(changed, prefix) {
			delete(t.changes, changed)
		}
	}
	for marked := range t.marked {
		if strings.HasPrefix(marked, prefix) {
			delete(t.marked, marked)
		}
	}

	old := t.lookup(path)
	if reflect.DeepEqual(old, value) {
		delete(t.changes, path)
		return
	}
	t.changes[path] = &Change{
		Path:     path,
		OldValue: old,
		NewValue: deepCopyValue(value),
	}
}

// Mark flags path as modified regardless of its value, for mixed values
// changed in place
func (t *Tracker) Mark(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.marked[path] = true
}

// IsModified reports whether path, one of its parents or one of its
// children was modified
func (t *Tracker) IsModified(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, changed := range t.paths() {
		if related(path, changed) {
			return true
		}
	}
	return false
}

func related(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}

// ModifiedPaths returns the modified paths, sorted
func (t *Tracker) ModifiedPaths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.paths()
}

func (t *Tracker) paths() []string {
	seen := make(map[string]bool, len(t.changes)+len(t.marked))
	out := make([]string, 0, len(t.changes)+len(t.marked))
	for path := range t.changes {
		seen[path] = true
		out = append(out, path)
	}
	for path := range t.marked {
		if !seen[path] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Change returns the recorded change for path
func (t *Tracker) Change(path string) (*Change, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.changes[path]
	return c, ok
}

// HasChanges returns true if any path was modified or marked
func (t *Tracker) HasChanges() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.changes) > 0 || len(t.marked) > 0
}

// Reset clears all changes and makes current the new baseline. It is
// called after a document is loaded or saved.
func (t *Tracker) Reset(current map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.original = deepCopyMap(current)
	t.changes = make(map[string]*Change)
	t.marked = make(map[string]bool)
}
