package odm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/odm/internal/orm/model"
)

// ModelOptions configure a model build. The zero value registers the model
// on the class's connection, or the default one, with no extra options.
type ModelOptions struct {
	// Connection takes precedence over the class's connection static
	Connection *model.Connection
	// Options are explicit schema options
	Options map[string]any
	// Plugins are build-time plugins applied after the class-level ones
	Plugins []PluginEntry
}

// ModelDecorator builds and registers a model from a class
type ModelDecorator func(c *Class) (*model.Model, error)

// Model registers c under its own name with default options
func Model(c *Class) (*model.Model, error) {
	return NewModel("", nil)(c)
}

// ModelNamed registers the class under name
func ModelNamed(name string) ModelDecorator {
	return NewModel(name, nil)
}

// ModelWith registers the class under its own name using opts
func ModelWith(opts ModelOptions) ModelDecorator {
	return NewModel("", &opts)
}

// NewModel is the general model factory. An empty name means the class
// name; opts may be nil.
func NewModel(name string, opts *ModelOptions) ModelDecorator {
	var o ModelOptions
	if opts != nil {
		o = *opts
	}

	return func(c *Class) (*model.Model, error) {
		modelName := name
		if modelName == "" {
			modelName = c.Name()
		}

		conn, err := resolveConnection(c, o.Connection)
		if err != nil {
			return nil, err
		}

		build := Schema(&SchemaOptions{Options: o.Options, Plugins: o.Plugins})(c)
		s, err := build()
		if err != nil {
			return nil, err
		}

		m, err := conn.Model(modelName, s)
		if err != nil {
			return nil, err
		}

		logger().Debug("model built",
			zap.String("class", c.Name()),
			zap.String("model", modelName),
			zap.String("collection", m.Collection()),
		)
		return m, nil
	}
}

// Must panics if err is non-nil. It is meant for package-level model
// declarations.
func Must(m *model.Model, err error) *model.Model {
	if err != nil {
		panic(err)
	}
	return m
}

// resolveConnection picks the registry a model is registered on: an
// explicit connection, then the class's connection static, then the
// default connection.
func resolveConnection(c *Class, explicit *model.Connection) (*model.Connection, error) {
	if explicit != nil {
		return explicit, nil
	}

	v, ok := c.StaticValue(connectionStatic)
	if !ok || v == nil {
		return model.Default(), nil
	}
	conn, ok := v.(*model.Connection)
	if !ok {
		return nil, definitionError(c.Name(), fmt.Errorf("%w: got %T", ErrInvalidConnection, v))
	}
	if conn == nil {
		return model.Default(), nil
	}
	return conn, nil
}
