// Package schema defines document schemas: typed paths, virtual fields,
// instance and static methods, lifecycle hooks and plugins. A Schema is
// registered on a model connection, which turns it into a queryable model.
package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoFields is returned by New when the field-type map is missing
var ErrNoFields = errors.New("schema requires a field-type map")

// Instance is a document handle as seen by methods, virtuals and hooks
type Instance interface {
	// Get returns the value at a path or virtual
	Get(path string) any
	// Set assigns a path or runs a virtual's setters
	Set(path string, value any) error
	// Call invokes an instance method
	Call(method string, args ...any) (any, error)
	// ID returns the document id
	ID() string
	// IsNew reports whether the document has never been saved
	IsNew() bool
	// IsModified reports whether a path changed since the last load or save
	IsModified(path string) bool
	// Constructor returns the model the document belongs to
	Constructor() Constructor
}

// Constructor is a registered model as seen by statics and init listeners
type Constructor interface {
	// ModelName returns the registered model name
	ModelName() string
	// Schema returns the schema the model was built from
	Schema() *Schema
	// New creates an unsaved document
	New(values map[string]any) (Instance, error)
	// DefineStatic binds a static operation or property to the model
	DefineStatic(name string, value any)
	// Static looks up a static member
	Static(name string) (any, bool)
	// CallStatic invokes a static operation
	CallStatic(name string, args ...any) (any, error)
}

// Getter computes a virtual field
type Getter func(doc Instance) any

// Setter assigns a virtual field
type Setter func(doc Instance, value any) error

// MethodFunc is an instance method
type MethodFunc func(doc Instance, args ...any) (any, error)

// StaticFunc is a static method bound to the model
type StaticFunc func(model Constructor, args ...any) (any, error)

// StaticGetter is a computed static property evaluated against the model
type StaticGetter func(model Constructor) any

// Virtual is a computed field with no own storage
type Virtual struct {
	name    string
	getters []Getter
	setters []Setter
}

// Get appends a getter
func (v *Virtual) Get(fn Getter) *Virtual {
	v.getters = append(v.getters, fn)
	return v
}

// Set appends a setter
func (v *Virtual) Set(fn Setter) *Virtual {
	v.setters = append(v.setters, fn)
	return v
}

// Name returns the virtual's path name
func (v *Virtual) Name() string {
	return v.name
}

// Getters returns the registered getters
func (v *Virtual) Getters() []Getter {
	return v.getters
}

// Setters returns the registered setters
func (v *Virtual) Setters() []Setter {
	return v.setters
}

// Schema describes the shape and behavior of a document model
type Schema struct {
	fields   Fields
	paths    map[string]*Path
	options  Options
	virtuals map[string]*Virtual
	methods  map[string]MethodFunc
	statics  map[string]any
	hooks    []*Hook
	plugins  []AppliedPlugin
	onInit   []func(Constructor)
}

// New compiles a field-type map into a schema
func New(fields Fields, opts Options) (*Schema, error) {
	if fields == nil {
		return nil, ErrNoFields
	}
	if opts == nil {
		opts = Options{}
	}

	paths, err := compileFields(fields, opts.TypeKey())
	if err != nil {
		return nil, fmt.Errorf("schema compilation failed: %w", err)
	}

	own := make(Fields, len(fields))
	for k, v := range fields {
		own[k] = v
	}

	return &Schema{
		fields:   own,
		paths:    paths,
		options:  opts.Clone(),
		virtuals: make(map[string]*Virtual),
		methods:  make(map[string]MethodFunc),
		statics:  make(map[string]any),
		hooks:    make([]*Hook, 0),
		plugins:  make([]AppliedPlugin, 0),
	}, nil
}

// Fields returns the field-type map the schema was built from
func (s *Schema) Fields() Fields {
	return s.fields
}

// Path returns a compiled top-level path
func (s *Schema) Path(name string) (*Path, bool) {
	p, ok := s.paths[name]
	return p, ok
}

// Paths returns the names of all top-level paths, sorted
func (s *Schema) Paths() []string {
	names := make([]string, 0, len(s.paths))
	for name := range s.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Option returns one resolved option value
func (s *Schema) Option(key string) (any, bool) {
	return s.options.Get(key)
}

// Options returns the resolved schema options
func (s *Schema) Options() Options {
	return s.options
}

// Virtual returns the named virtual, creating it when absent
func (s *Schema) Virtual(name string) *Virtual {
	v, ok := s.virtuals[name]
	if !ok {
		v = &Virtual{name: name}
		s.virtuals[name] = v
	}
	return v
}

// LookupVirtual returns the named virtual without creating it
func (s *Schema) LookupVirtual(name string) (*Virtual, bool) {
	v, ok := s.virtuals[name]
	return v, ok
}

// Virtuals returns the names of all virtuals, sorted
func (s *Schema) Virtuals() []string {
	names := make([]string, 0, len(s.virtuals))
	for name := range s.virtuals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Method registers an instance method
func (s *Schema) Method(name string, fn MethodFunc) *Schema {
	s.methods[name] = fn
	return s
}

// Methods returns a copy of the registered instance methods
func (s *Schema) Methods() map[string]MethodFunc {
	out := make(map[string]MethodFunc, len(s.methods))
	for k, v := range s.methods {
		out[k] = v
	}
	return out
}

// LookupMethod returns an instance method
func (s *Schema) LookupMethod(name string) (MethodFunc, bool) {
	fn, ok := s.methods[name]
	return fn, ok
}

// Static registers a static member copied onto every model built from the
// schema
func (s *Schema) Static(name string, value any) *Schema {
	s.statics[name] = value
	return s
}

// Statics returns a copy of the schema-level statics
func (s *Schema) Statics() map[string]any {
	out := make(map[string]any, len(s.statics))
	for k, v := range s.statics {
		out[k] = v
	}
	return out
}

// OnInit registers a listener fired once per model built from the schema,
// after the model exists
func (s *Schema) OnInit(fn func(Constructor)) *Schema {
	s.onInit = append(s.onInit, fn)
	return s
}

// NotifyInit fires the init listeners for a freshly registered model
func (s *Schema) NotifyInit(model Constructor) {
	for _, fn := range s.onInit {
		fn(model)
	}
}
