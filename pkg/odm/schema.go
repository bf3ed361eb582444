package odm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/odm/internal/orm/schema"
)

// OptionNames is the allow-list of schema option keys. Class statics with
// these names are options rather than model statics; any other key passed
// as an option is dropped.
var OptionNames = []string{
	"autoIndex", "bufferCommands", "capped", "collection", "emitIndexErrors",
	"id", "_id", "minimize", "read", "safe", "shardKey", "strict", "toJSON",
	"toObject", "typeKey", "validateBeforeSave", "versionKey",
}

var optionSet = func() map[string]bool {
	set := make(map[string]bool, len(OptionNames))
	for _, name := range OptionNames {
		set[name] = true
	}
	return set
}()

// IsOption reports whether key is an allow-listed schema option
func IsOption(key string) bool {
	return optionSet[key]
}

// SchemaOptions are the explicit options of a schema build
type SchemaOptions struct {
	// Options override same-named option statics of the class
	Options map[string]any
	// Plugins are applied after the class-level plugins
	Plugins []PluginEntry
}

// SchemaConstructor builds a fresh engine schema from a class on every call
type SchemaConstructor func() (*schema.Schema, error)

// SchemaOf is the bare form: a schema constructor with no explicit options
func SchemaOf(c *Class) SchemaConstructor {
	return Schema(nil)(c)
}

// Schema returns a class transformer producing a schema constructor. opts
// may be nil.
func Schema(opts *SchemaOptions) func(*Class) SchemaConstructor {
	var explicit map[string]any
	var plugins []PluginEntry
	if opts != nil {
		explicit = opts.Options
		plugins = append(plugins, opts.Plugins...)
	}

	return func(c *Class) SchemaConstructor {
		return func() (*schema.Schema, error) {
			return buildSchema(c, explicit, plugins)
		}
	}
}

type staticMember struct {
	name  string
	value any
}

// buildSchema seals the class and forwards its members into a new schema
func buildSchema(c *Class, explicit map[string]any, buildPlugins []PluginEntry) (*schema.Schema, error) {
	snap := c.seal()

	if len(snap.errs) > 0 {
		return nil, definitionError(snap.name, errors.Join(snap.errs...))
	}
	if snap.fields == nil {
		return nil, definitionError(snap.name, ErrMissingFields)
	}

	classOptions := make(map[string]any)
	statics := make([]staticMember, 0, len(snap.staticOrder))
	for _, name := range snap.staticOrder {
		if reservedStatics[name] {
			continue
		}
		if IsOption(name) {
			classOptions[name] = snap.statics[name]
			continue
		}
		statics = append(statics, staticMember{name: name, value: snap.statics[name]})
	}

	options := resolveOptions(snap.name, classOptions, explicit)

	s, err := schema.New(snap.fields, options)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", snap.name, err)
	}

	for _, name := range snap.protoOrder {
		if name == constructorMember {
			continue
		}
		d := snap.proto[name]
		if d.Get != nil {
			s.Virtual(name).Get(d.Get)
		}
		if d.Set != nil {
			s.Virtual(name).Set(d.Set)
		}
		if d.Value != nil {
			fn, err := toMethod(d.Value)
			if err != nil {
				return nil, definitionError(snap.name, fmt.Errorf("method %s: %w", name, err))
			}
			s.Method(name, fn)
		}
	}

	if len(statics) > 0 {
		s.OnInit(func(m schema.Constructor) {
			for _, st := range statics {
				m.DefineStatic(st.name, st.value)
			}
		})
	}

	plugins := make([]PluginEntry, 0, len(snap.plugins)+len(buildPlugins))
	plugins = append(plugins, snap.plugins...)
	plugins = append(plugins, buildPlugins...)
	for i, p := range plugins {
		if err := s.Plugin(p.Plugin, p.Param); err != nil {
			return nil, fmt.Errorf("class %s: plugin #%d: %w", snap.name, i, err)
		}
	}

	for _, h := range snap.hooks {
		mw, err := toMiddleware(h.Callback)
		if err != nil {
			return nil, definitionError(snap.name, err)
		}
		switch h.Phase {
		case schema.Post:
			s.Post(h.Operation, mw)
		default:
			s.Pre(h.Operation, mw)
		}
	}

	return s, nil
}

// resolveOptions merges class options with explicit ones; explicit wins
// per key and keys outside the allow-list are dropped
func resolveOptions(class string, classOptions, explicit map[string]any) schema.Options {
	resolved := make(schema.Options, len(classOptions)+len(explicit))
	for k, v := range classOptions {
		resolved[k] = v
	}
	for k, v := range explicit {
		if !IsOption(k) {
			logger().Debug("dropping unrecognized schema option",
				zap.String("class", class),
				zap.String("option", k),
			)
			continue
		}
		resolved[k] = v
	}
	return resolved
}
