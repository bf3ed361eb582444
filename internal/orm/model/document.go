package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-lang/odm/internal/orm/schema"
	"github.com/conduit-lang/odm/internal/orm/tracking"
)

var (
	// ErrMethodNotFound is returned when calling an undefined instance method
	ErrMethodNotFound = errors.New("method not found")

	// ErrStrictPath is returned when setting an undeclared path under strict "throw"
	ErrStrictPath = errors.New("path is not in schema")

	// ErrNotSaved is returned when removing a document that was never saved
	ErrNotSaved = errors.New("document has not been saved")

	// ErrMissingID is returned when saving a document without an _id
	ErrMissingID = errors.New("document must have an _id before saving")
)

func newID() string {
	return uuid.NewString()
}

// Document is a single model instance
type Document struct {
	model   *Model
	data    map[string]any
	isNew   bool
	tracker *tracking.Tracker
	mu      sync.RWMutex
}

// Model returns the document's model
func (d *Document) Model() *Model {
	return d.model
}

// Constructor returns the document's model
func (d *Document) Constructor() schema.Constructor {
	return d.model
}

// ID returns the document id
func (d *Document) ID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch id := d.data["_id"].(type) {
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// IsNew reports whether the document has never been saved
func (d *Document) IsNew() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.isNew
}

// Version returns the document's version counter, or -1 when versioning is off
func (d *Document) Version() int {
	key, ok := d.model.schema.Options().VersionKey()
	if !ok {
		return -1
	}
	if v, isNum := d.getRaw(key).(float64); isNum {
		return int(v)
	}
	return 0
}

// Get returns the value at a path or virtual. Dotted paths reach into
// subdocuments.
func (d *Document) Get(path string) any {
	s := d.model.schema

	if v, ok := s.LookupVirtual(path); ok && len(v.Getters()) > 0 {
		var out any
		for _, get := range v.Getters() {
			out = get(d)
		}
		return out
	}

	if path == "id" && s.Options().IDVirtual() {
		if _, declared := s.Path("id"); !declared {
			return d.ID()
		}
	}

	return d.getRaw(path)
}

func (d *Document) getRaw(path string) any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var cur any = d.data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Set assigns a path, casting it to the declared type, or runs a virtual's
// setters
func (d *Document) Set(path string, value any) error {
	s := d.model.schema

	if v, ok := s.LookupVirtual(path); ok {
		for _, set := range v.Setters() {
			if err := set(d, value); err != nil {
				return fmt.Errorf("virtual %s: %w", path, err)
			}
		}
		return nil
	}

	if p, ok := d.lookupPath(path); ok {
		cast, err := p.Cast(value)
		if err != nil {
			return fmt.Errorf("path %s: %w", path, err)
		}
		d.setRaw(path, cast)
		d.tracker.Record(path, cast)
		return nil
	}

	if path == "_id" {
		id := fmt.Sprint(value)
		d.setRaw(path, id)
		d.tracker.Record(path, id)
		return nil
	}
	if key, ok := s.Options().VersionKey(); ok && path == key {
		p := &schema.Path{Name: key, Type: schema.Number}
		cast, err := p.Cast(value)
		if err != nil {
			return fmt.Errorf("path %s: %w", path, err)
		}
		d.setRaw(path, cast)
		return nil
	}

	switch s.Options().Strict() {
	case schema.StrictOff:
		d.setRaw(path, value)
		d.tracker.Record(path, value)
		return nil
	case schema.StrictThrow:
		return fmt.Errorf("%w: %s", ErrStrictPath, path)
	default:
		return nil
	}
}

// IsModified reports whether path, a parent or a child of it changed since
// the document was loaded or last saved
func (d *Document) IsModified(path string) bool {
	return d.tracker.IsModified(path)
}

// ModifiedPaths returns the changed paths, sorted
func (d *Document) ModifiedPaths() []string {
	return d.tracker.ModifiedPaths()
}

// MarkModified flags a path as changed. Use it after mutating a mixed value
// in place.
func (d *Document) MarkModified(path string) {
	d.tracker.Mark(path)
}

// lookupPath resolves a possibly dotted path to its compiled definition
func (d *Document) lookupPath(path string) (*schema.Path, bool) {
	parts := strings.Split(path, ".")
	p, ok := d.model.schema.Path(parts[0])
	if !ok {
		return nil, false
	}
	for _, part := range parts[1:] {
		if p.Type != schema.Map {
			return nil, false
		}
		p, ok = p.Children[part]
		if !ok {
			return nil, false
		}
	}
	return p, true
}

func (d *Document) setRaw(path string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	parts := strings.Split(path, ".")
	cur := d.data
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// Call invokes an instance method with the document as receiver
func (d *Document) Call(method string, args ...any) (any, error) {
	fn, ok := d.model.schema.LookupMethod(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, d.model.name, method)
	}
	return fn(d, args...)
}

// runOperation wraps op with the schema's pre and post hooks
func (d *Document) runOperation(ctx context.Context, operation string, op func() error) error {
	exec := d.model.conn.executor
	s := d.model.schema

	if err := exec.Run(ctx, s, schema.Pre, operation, d); err != nil {
		return err
	}
	if err := op(); err != nil {
		return err
	}
	return exec.Run(ctx, s, schema.Post, operation, d)
}

// Validate runs validate hooks around schema validation
func (d *Document) Validate(ctx context.Context) error {
	return d.runOperation(ctx, schema.OpValidate, func() error {
		return d.model.schema.Validate(d.snapshot())
	})
}

// Save validates (unless validateBeforeSave is off), runs save hooks and
// writes the document to the store. A saved document with no modified
// paths still runs its hooks but is not written again.
func (d *Document) Save(ctx context.Context) error {
	opts := d.model.schema.Options()

	if opts.ValidateBeforeSave() {
		if err := d.Validate(ctx); err != nil {
			return err
		}
	}

	return d.runOperation(ctx, schema.OpSave, func() error {
		return d.persist(ctx)
	})
}

func (d *Document) persist(ctx context.Context) error {
	m := d.model
	if d.ID() == "" {
		return fmt.Errorf("%s: %w", m.name, ErrMissingID)
	}

	isNew := d.IsNew()
	if !isNew && !d.tracker.HasChanges() {
		return nil
	}

	key, versioned := m.schema.Options().VersionKey()

	var prevVersion any
	if versioned {
		prevVersion = d.getRaw(key)
		if isNew {
			d.setRaw(key, float64(0))
		} else {
			d.setRaw(key, float64(d.Version()+1))
		}
	}

	body, err := json.Marshal(d.transform(schema.TransformOptions{
		VersionKey: true,
		Minimize:   m.schema.Options().Minimize(),
	}))
	if err != nil {
		return fmt.Errorf("%s: encode document: %w", m.name, err)
	}

	if isNew {
		err = m.conn.store.Insert(ctx, m.collection, d.ID(), body)
	} else {
		err = m.conn.store.Replace(ctx, m.collection, d.ID(), body)
	}
	if err != nil {
		if versioned {
			d.setRaw(key, prevVersion)
		}
		return fmt.Errorf("%s %s: %w", m.name, d.ID(), err)
	}

	d.mu.Lock()
	d.isNew = false
	d.mu.Unlock()
	d.tracker.Reset(d.snapshot())
	return nil
}

// Remove runs remove hooks and deletes the document from the store
func (d *Document) Remove(ctx context.Context) error {
	if d.IsNew() {
		return ErrNotSaved
	}

	m := d.model
	return d.runOperation(ctx, schema.OpRemove, func() error {
		if err := m.conn.store.Delete(ctx, m.collection, d.ID()); err != nil {
			return fmt.Errorf("%s %s: %w", m.name, d.ID(), err)
		}
		return nil
	})
}

// ToObject returns a plain copy of the document using the toObject options
func (d *Document) ToObject() map[string]any {
	return d.transform(d.model.schema.Options().ToObject())
}

// ToJSON returns a plain copy of the document using the toJSON options
func (d *Document) ToJSON() map[string]any {
	return d.transform(d.model.schema.Options().ToJSON())
}

// MarshalJSON implements json.Marshaler
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToJSON())
}

func (d *Document) snapshot() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return copyMap(d.data, false)
}

func (d *Document) transform(opts schema.TransformOptions) map[string]any {
	s := d.model.schema

	d.mu.RLock()
	out := copyMap(d.data, opts.Minimize)
	d.mu.RUnlock()

	if key, ok := s.Options().VersionKey(); ok && !opts.VersionKey {
		delete(out, key)
	}

	if opts.Virtuals {
		for _, name := range s.Virtuals() {
			if v, _ := s.LookupVirtual(name); len(v.Getters()) > 0 {
				out[name] = d.Get(name)
			}
		}
		if s.Options().IDVirtual() {
			if _, declared := out["id"]; !declared {
				out["id"] = d.ID()
			}
		}
	}

	return out
}

// copyMap deep-copies nested maps and slices; minimize drops empty maps
func copyMap(src map[string]any, minimize bool) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		cv := copyValue(v, minimize)
		if minimize {
			if m, ok := cv.(map[string]any); ok && len(m) == 0 {
				continue
			}
		}
		out[k] = cv
	}
	return out
}

func copyValue(v any, minimize bool) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val, minimize)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item, minimize)
		}
		return out
	case time.Time:
		return val
	default:
		return v
	}
}

var (
	_ schema.Instance = (*Document)(nil)
	_ json.Marshaler  = (*Document)(nil)
)
