package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/conduit-lang/odm/internal/orm/schema"
	"github.com/conduit-lang/odm/internal/orm/tracking"
)

var (
	// ErrStaticNotFound is returned when calling an undefined static
	ErrStaticNotFound = errors.New("static not found")

	// ErrNotCallable is returned when calling a static property
	ErrNotCallable = errors.New("static is not callable")
)

// Model is a schema registered under a name on a connection. It creates,
// loads and queries documents and carries the model's static members.
type Model struct {
	conn       *Connection
	name       string
	schema     *schema.Schema
	collection string
	statics    map[string]any
	mu         sync.RWMutex
}

func newModel(conn *Connection, name string, s *schema.Schema) *Model {
	collection := s.Options().Collection()
	if collection == "" {
		collection = defaultCollection(name)
	}

	return &Model{
		conn:       conn,
		name:       name,
		schema:     s,
		collection: collection,
		statics:    make(map[string]any),
	}
}

// defaultCollection lowercases and pluralizes a model name
func defaultCollection(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "s"):
		return lower
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !strings.ContainsRune("aeiou", rune(lower[len(lower)-2])):
		return lower[:len(lower)-1] + "ies"
	default:
		return lower + "s"
	}
}

// Name returns the registered model name
func (m *Model) Name() string {
	return m.name
}

// ModelName returns the registered model name
func (m *Model) ModelName() string {
	return m.name
}

// Schema returns the schema the model was built from
func (m *Model) Schema() *schema.Schema {
	return m.schema
}

// Collection returns the store collection documents are written to
func (m *Model) Collection() string {
	return m.collection
}

// Connection returns the connection the model is registered on
func (m *Model) Connection() *Connection {
	return m.conn
}

// New creates an unsaved document
func (m *Model) New(values map[string]any) (schema.Instance, error) {
	return m.NewDocument(values)
}

// NewDocument creates an unsaved document with defaults applied
func (m *Model) NewDocument(values map[string]any) (*Document, error) {
	doc := &Document{
		model: m,
		data:  make(map[string]any),
		isNew: true,
	}

	for _, name := range m.schema.Paths() {
		p, _ := m.schema.Path(name)
		if p.Default == nil {
			continue
		}
		cast, err := p.Cast(p.DefaultValue())
		if err != nil {
			return nil, fmt.Errorf("%s: default for %s: %w", m.name, name, err)
		}
		doc.data[name] = cast
	}

	if m.schema.Options().AutoID() {
		doc.data["_id"] = newID()
	}
	doc.tracker = tracking.New(doc.data)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := doc.Set(k, values[k]); err != nil {
			return nil, fmt.Errorf("%s: %w", m.name, err)
		}
	}

	return doc, nil
}

// Create builds a document and saves it
func (m *Model) Create(ctx context.Context, values map[string]any) (*Document, error) {
	doc, err := m.NewDocument(values)
	if err != nil {
		return nil, err
	}
	if err := doc.Save(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// FindByID loads a document by id
func (m *Model) FindByID(ctx context.Context, id string) (*Document, error) {
	body, err := m.conn.store.Get(ctx, m.collection, id)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", m.name, id, err)
	}
	return m.hydrate(ctx, body)
}

// Find returns the documents whose paths equal every filter value
func (m *Model) Find(ctx context.Context, filter map[string]any) ([]*Document, error) {
	bodies, err := m.conn.store.List(ctx, m.collection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}

	docs := make([]*Document, 0, len(bodies))
	for _, body := range bodies {
		doc, err := m.hydrate(ctx, body)
		if err != nil {
			return nil, err
		}
		if doc.matches(filter) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Count returns the number of documents matching a filter
func (m *Model) Count(ctx context.Context, filter map[string]any) (int, error) {
	docs, err := m.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// hydrate decodes a stored body and runs init hooks
func (m *Model) hydrate(ctx context.Context, body []byte) (*Document, error) {
	raw := make(map[string]any)
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: decode document: %w", m.name, err)
	}

	for name, value := range raw {
		p, declared := m.schema.Path(name)
		if !declared {
			continue
		}
		cast, err := p.Cast(value)
		if err != nil {
			return nil, fmt.Errorf("%s: decode %s: %w", m.name, name, err)
		}
		raw[name] = cast
	}

	doc := &Document{
		model:   m,
		data:    raw,
		isNew:   false,
		tracker: tracking.New(raw),
	}

	if err := doc.runOperation(ctx, schema.OpInit, func() error { return nil }); err != nil {
		return nil, err
	}
	return doc, nil
}

// DefineStatic binds a static operation or property to the model
func (m *Model) DefineStatic(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statics[name] = value
}

// Static looks up a static member. Computed properties (schema.StaticGetter)
// are evaluated against the model.
func (m *Model) Static(name string) (any, bool) {
	v, ok := m.rawStatic(name)
	if !ok {
		return nil, false
	}
	switch get := v.(type) {
	case schema.StaticGetter:
		return get(m), true
	case func(schema.Constructor) any:
		return get(m), true
	}
	return v, true
}

func (m *Model) rawStatic(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.statics[name]
	return v, ok
}

// Statics returns the names of all static members, sorted
func (m *Model) Statics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.statics))
	for name := range m.statics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallStatic invokes a static operation with the model bound as receiver
func (m *Model) CallStatic(name string, args ...any) (any, error) {
	v, ok := m.rawStatic(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrStaticNotFound, m.name, name)
	}

	switch fn := v.(type) {
	case schema.StaticFunc:
		return fn(m, args...)
	case func(schema.Constructor, ...any) (any, error):
		return fn(m, args...)
	default:
		return nil, fmt.Errorf("%w: %s.%s", ErrNotCallable, m.name, name)
	}
}

// Owns reports whether a document was created by this model
func (m *Model) Owns(doc schema.Instance) bool {
	if doc == nil {
		return false
	}
	c, ok := doc.Constructor().(*Model)
	return ok && c == m
}

// matches compares filter values against document values
func (d *Document) matches(filter map[string]any) bool {
	for path, want := range filter {
		if p, ok := d.lookupPath(path); ok {
			if cast, err := p.Cast(want); err == nil {
				want = cast
			}
		}
		if !reflect.DeepEqual(d.Get(path), want) {
			return false
		}
	}
	return true
}

var (
	_ schema.Constructor = (*Model)(nil)
)
