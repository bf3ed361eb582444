package odm

import "github.com/conduit-lang/odm/internal/orm/schema"

// PluginEntry is a plugin waiting to be applied to a built schema
type PluginEntry struct {
	Plugin schema.Plugin
	Param  any
}

// Plugin returns a class transformer that appends a plugin entry. Entries
// are applied in order when a schema is built; the plugin itself is not
// checked until then.
func Plugin(p schema.Plugin, param any) func(*Class) *Class {
	return func(c *Class) *Class {
		return c.mutate(func() {
			c.plugins = append(c.plugins, PluginEntry{Plugin: p, Param: param})
		})
	}
}
