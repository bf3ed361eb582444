package tracking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tr := New(map[string]any{"name": "Ada", "age": float64(36)})

	assert.False(t, tr.HasChanges())
	assert.Empty(t, tr.ModifiedPaths())
	assert.False(t, tr.IsModified("name"))
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name     string
		original map[string]any
		path     string
		value    any
		want     bool
	}{
		{name: "unchanged", original: map[string]any{"f": "v"}, path: "f", value: "v", want: false},
		{name: "changed", original: map[string]any{"f": "old"}, path: "f", value: "new", want: true},
		{name: "new path", original: map[string]any{}, path: "f", value: 1, want: true},
		{name: "cleared", original: map[string]any{"f": 1}, path: "f", value: nil, want: true},
		{name: "nested unchanged", original: map[string]any{"a": map[string]any{"b": 1}}, path: "a.b", value: 1, want: false},
		{name: "nested changed", original: map[string]any{"a": map[string]any{"b": 1}}, path: "a.b", value: 2, want: true},
		{name: "slice unchanged", original: map[string]any{"tags": []any{"x"}}, path: "tags", value: []any{"x"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.original)
			tr.Record(tt.path, tt.value)
			assert.Equal(t, tt.want, tr.IsModified(tt.path))
			assert.Equal(t, tt.want, tr.HasChanges())
		})
	}
}

func TestRecordRevert(t *testing.T) {
	tr := New(map[string]any{"name": "Ada"})

	tr.Record("name", "Bob")
	assert.True(t, tr.IsModified("name"))

	c, ok := tr.Change("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", c.OldValue)
	assert.Equal(t, "Bob", c.NewValue)

	tr.Record("name", "Ada")
	assert.False(t, tr.IsModified("name"))
	_, ok = tr.Change("name")
	assert.False(t, ok)
}

func TestIsModifiedRelatedPaths(t *testing.T) {
	tr := New(map[string]any{"address": map[string]any{"city": "Oslo", "zip": 1}})
	tr.Record("address.city", "Bergen")

	assert.True(t, tr.IsModified("address"))
	assert.True(t, tr.IsModified("address.city"))
	assert.False(t, tr.IsModified("address.zip"))
	assert.False(t, tr.IsModified("addr"))

	tr.Record("address", map[string]any{"city": "Bergen"})
	assert.True(t, tr.IsModified("address.zip"))
}

func TestRecordParentSupersedesChildren(t *testing.T) {
	tr := New(map[string]any{"meta": map[string]any{"a": "x", "b": 1}})

	tr.Record("meta.a", "y")
	tr.Record("meta.b", 2)
	require.Equal(t, []string{"meta.a", "meta.b"}, tr.ModifiedPaths())

	tr.Record("meta", map[string]any{"a": "x", "b": 1})
	assert.False(t, tr.HasChanges())
	assert.Empty(t, tr.ModifiedPaths())

	tr.Record("meta.a", "y")
	tr.Record("meta", map[string]any{"a": "z", "b": 1})
	assert.Equal(t, []string{"meta"}, tr.ModifiedPaths())
	_, ok := tr.Change("meta.a")
	assert.False(t, ok)

	tr.Record("metadata", true)
	tr.Record("meta", map[string]any{"a": "x", "b": 1})
	assert.Equal(t, []string{"metadata"}, tr.ModifiedPaths())
}

func TestMark(t *testing.T) {
	tr := New(map[string]any{"meta": map[string]any{}})
	tr.Mark("meta")
	tr.Record("name", "Ada")

	assert.True(t, tr.IsModified("meta"))
	assert.Equal(t, []string{"meta", "name"}, tr.ModifiedPaths())
}

func TestReset(t *testing.T) {
	tr := New(map[string]any{"name": "Ada"})
	tr.Record("name", "Bob")
	tr.Mark("meta")

	tr.Reset(map[string]any{"name": "Bob"})
	assert.False(t, tr.HasChanges())

	tr.Record("name", "Bob")
	assert.False(t, tr.HasChanges())
}

func TestBaselineIsCopied(t *testing.T) {
	address := map[string]any{"city": "Oslo"}
	tr := New(map[string]any{"address": address})

	address["city"] = "Bergen"
	tr.Record("address.city", "Bergen")
	assert.True(t, tr.IsModified("address.city"))
}

func TestConcurrentAccess(t *testing.T) {
	tr := New(map[string]any{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr.Record("count", n)
			_ = tr.IsModified("count")
			_ = tr.ModifiedPaths()
		}(i)
	}
	wg.Wait()

	assert.True(t, tr.HasChanges())
}
