package odm

import (
	"fmt"

	"github.com/conduit-lang/odm/internal/orm/schema"
)

// HookEntry is a lifecycle hook declared on a class
type HookEntry struct {
	Phase     schema.Phase
	Operation string
	Method    string
	Callback  any
}

// HookDecorator attaches a callback to a class as both an instance method
// named method and a lifecycle hook.
//
// Callbacks without a continuation parameter, func(schema.Instance) error
// or func(schema.Instance), complete their phase when they return. A
// func(schema.Instance, schema.Next) callback completes it by calling next.
type HookDecorator func(c *Class, method string, callback any) *Class

// Pre declares a hook that runs before operation
func Pre(operation string) HookDecorator {
	return Hook(schema.Pre, operation)
}

// Post declares a hook that runs after operation
func Post(operation string) HookDecorator {
	return Hook(schema.Post, operation)
}

// Hook declares a hook for an arbitrary phase
func Hook(phase schema.Phase, operation string) HookDecorator {
	return func(c *Class, method string, callback any) *Class {
		if _, err := toMiddleware(callback); err != nil {
			return c.mutate(func() {
				c.fail(fmt.Errorf("%s %s hook %s: %w", phase, operation, method, err))
			})
		}

		c.Method(method, callback)
		return c.mutate(func() {
			c.hooks = append(c.hooks, HookEntry{
				Phase:     phase,
				Operation: operation,
				Method:    method,
				Callback:  callback,
			})
		})
	}
}

// toMiddleware adapts a hook callback to the engine's middleware shape
func toMiddleware(callback any) (schema.Middleware, error) {
	switch cb := callback.(type) {
	case schema.Middleware:
		return cb, nil
	case func(schema.Instance, schema.Next):
		return cb, nil
	case func(schema.Instance) error:
		return func(doc schema.Instance, next schema.Next) {
			next(cb(doc))
		}, nil
	case func(schema.Instance):
		return func(doc schema.Instance, next schema.Next) {
			cb(doc)
			next(nil)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidHook, callback)
	}
}
