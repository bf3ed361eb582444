package schema

import (
	"errors"
	"fmt"
)

// ErrNilPlugin is returned when applying a nil plugin
var ErrNilPlugin = errors.New("plugin must not be nil")

// Plugin extends a schema with paths, virtuals, methods or hooks
type Plugin interface {
	Apply(s *Schema, param any) error
}

// PluginFunc adapts a function to the Plugin interface
type PluginFunc func(s *Schema, param any) error

// Apply calls f(s, param)
func (f PluginFunc) Apply(s *Schema, param any) error {
	return f(s, param)
}

// AppliedPlugin records a plugin applied to a schema
type AppliedPlugin struct {
	Plugin Plugin
	Param  any
}

// Plugin applies a plugin to the schema immediately
func (s *Schema) Plugin(p Plugin, param any) error {
	if p == nil {
		return ErrNilPlugin
	}
	if fn, ok := p.(PluginFunc); ok && fn == nil {
		return ErrNilPlugin
	}

	if err := p.Apply(s, param); err != nil {
		return fmt.Errorf("plugin failed: %w", err)
	}

	s.plugins = append(s.plugins, AppliedPlugin{Plugin: p, Param: param})
	return nil
}

// Plugins returns the applied plugins in application order
func (s *Schema) Plugins() []AppliedPlugin {
	out := make([]AppliedPlugin, len(s.plugins))
	copy(out, s.plugins)
	return out
}

// Add extends the schema with more paths after construction
func (s *Schema) Add(fields Fields) error {
	paths, err := compileFields(fields, s.options.TypeKey())
	if err != nil {
		return err
	}
	for name, p := range paths {
		s.paths[name] = p
		s.fields[name] = fields[name]
	}
	return nil
}
