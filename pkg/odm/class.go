package odm

import (
	"fmt"
	"sync"

	"github.com/conduit-lang/odm/internal/orm/model"
	"github.com/conduit-lang/odm/internal/orm/schema"
)

// Names with a fixed meaning on a class. The connection static also becomes
// a model static; the others never do.
const (
	fieldsStatic      = "schema"
	connectionStatic  = "connection"
	constructorMember = "constructor"
)

var reservedStatics = map[string]bool{
	"length":     true,
	"name":       true,
	"prototype":  true,
	fieldsStatic: true,
}

// Descriptor describes one prototype member: a getter and/or setter (a
// virtual field) or a value (an instance method)
type Descriptor struct {
	Get   schema.Getter
	Set   schema.Setter
	Value any
}

// Class is a model definition. Members are registered explicitly by role;
// the schema and model factories turn it into an engine schema and a
// registered model.
//
// A class is append-only until its first schema build. Changes after that
// are reported as ErrClassSealed by every later build.
type Class struct {
	name string

	protoOrder  []string
	proto       map[string]*Descriptor
	staticOrder []string
	statics     map[string]any

	plugins []PluginEntry
	hooks   []HookEntry

	sealed bool
	errs   []error
	mu     sync.Mutex
}

// Define starts a class definition
func Define(name string) *Class {
	return &Class{
		name:    name,
		proto:   make(map[string]*Descriptor),
		statics: make(map[string]any),
	}
}

// Name returns the class name
func (c *Class) Name() string {
	return c.name
}

// mutate applies fn unless the class is sealed
func (c *Class) mutate(fn func()) *Class {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed {
		c.errs = append(c.errs, ErrClassSealed)
		return c
	}
	fn()
	return c
}

func (c *Class) fail(err error) {
	c.errs = append(c.errs, err)
}

// Fields sets the class's field-type map
func (c *Class) Fields(fields schema.Fields) *Class {
	return c.Static(fieldsStatic, fields)
}

// Property merges a prototype member descriptor. Non-nil parts of d
// replace the existing ones.
func (c *Class) Property(name string, d Descriptor) *Class {
	return c.mutate(func() {
		cur, ok := c.proto[name]
		if !ok {
			cur = &Descriptor{}
			c.proto[name] = cur
			c.protoOrder = append(c.protoOrder, name)
		}
		if d.Get != nil {
			cur.Get = d.Get
		}
		if d.Set != nil {
			cur.Set = d.Set
		}
		if d.Value != nil {
			if _, err := toMethod(d.Value); err != nil {
				c.fail(fmt.Errorf("method %s: %w", name, err))
				return
			}
			cur.Value = d.Value
		}
	})
}

// Method registers an instance method. fn is a schema.MethodFunc or one of
// the hook callback shapes.
func (c *Class) Method(name string, fn any) *Class {
	return c.Property(name, Descriptor{Value: fn})
}

// Getter registers the read accessor of a virtual field
func (c *Class) Getter(name string, fn schema.Getter) *Class {
	return c.Property(name, Descriptor{Get: fn})
}

// Setter registers the write accessor of a virtual field
func (c *Class) Setter(name string, fn schema.Setter) *Class {
	return c.Property(name, Descriptor{Set: fn})
}

// Static registers a class-level member. Names matching an option key are
// schema options; other functions and values become model statics.
func (c *Class) Static(name string, value any) *Class {
	return c.mutate(func() {
		if _, ok := c.statics[name]; !ok {
			c.staticOrder = append(c.staticOrder, name)
		}
		c.statics[name] = value
	})
}

// Option is Static for a schema option key
func (c *Class) Option(key string, value any) *Class {
	return c.Static(key, value)
}

// Connection sets the class's default model registry
func (c *Class) Connection(conn *model.Connection) *Class {
	return c.Static(connectionStatic, conn)
}

// Use appends a class-level plugin
func (c *Class) Use(p schema.Plugin, param any) *Class {
	return Plugin(p, param)(c)
}

// StaticValue returns a class-level member
func (c *Class) StaticValue(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.statics[name]
	return v, ok
}

// Plugins returns the class-level plugin entries
func (c *Class) Plugins() []PluginEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PluginEntry, len(c.plugins))
	copy(out, c.plugins)
	return out
}

// Hooks returns the class's hook entries in declaration order
func (c *Class) Hooks() []HookEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]HookEntry, len(c.hooks))
	copy(out, c.hooks)
	return out
}

// classSnapshot is a consistent copy of a class taken at build time
type classSnapshot struct {
	name        string
	fields      schema.Fields
	protoOrder  []string
	proto       map[string]Descriptor
	staticOrder []string
	statics     map[string]any
	plugins     []PluginEntry
	hooks       []HookEntry
	errs        []error
}

// seal freezes the class and returns its contents
func (c *Class) seal() classSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sealed = true

	snap := classSnapshot{
		name:        c.name,
		protoOrder:  append([]string(nil), c.protoOrder...),
		proto:       make(map[string]Descriptor, len(c.proto)),
		staticOrder: append([]string(nil), c.staticOrder...),
		statics:     make(map[string]any, len(c.statics)),
		plugins:     append([]PluginEntry(nil), c.plugins...),
		hooks:       append([]HookEntry(nil), c.hooks...),
		errs:        append([]error(nil), c.errs...),
	}
	for k, d := range c.proto {
		snap.proto[k] = *d
	}
	for k, v := range c.statics {
		snap.statics[k] = v
	}
	switch fields := c.statics[fieldsStatic].(type) {
	case schema.Fields:
		snap.fields = fields
	case map[string]any:
		snap.fields = schema.Fields(fields)
	}
	return snap
}

// toMethod converts a method value to an engine instance method
func toMethod(v any) (schema.MethodFunc, error) {
	switch fn := v.(type) {
	case schema.MethodFunc:
		return fn, nil
	case func(schema.Instance, ...any) (any, error):
		return fn, nil
	case func(schema.Instance) error:
		return func(doc schema.Instance, _ ...any) (any, error) {
			return nil, fn(doc)
		}, nil
	case func(schema.Instance):
		return func(doc schema.Instance, _ ...any) (any, error) {
			fn(doc)
			return nil, nil
		}, nil
	case func(schema.Instance, schema.Next):
		return func(doc schema.Instance, _ ...any) (any, error) {
			var err error
			fn(doc, func(e error) { err = e })
			return nil, err
		}, nil
	case schema.Middleware:
		return toMethod((func(schema.Instance, schema.Next))(fn))
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidMethod, v)
	}
}
