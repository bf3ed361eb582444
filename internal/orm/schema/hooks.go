package schema

import "fmt"

// Phase represents when a lifecycle hook runs relative to its operation
type Phase int

const (
	Pre Phase = iota
	Post
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case Pre:
		return "pre"
	case Post:
		return "post"
	default:
		return "unknown"
	}
}

// ParsePhase converts a string to a Phase
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "pre", "before":
		return Pre, nil
	case "post", "after":
		return Post, nil
	default:
		return 0, fmt.Errorf("unknown hook phase: %s", s)
	}
}

// Lifecycle operations documents run hooks for
const (
	OpInit     = "init"
	OpValidate = "validate"
	OpSave     = "save"
	OpRemove   = "remove"
)

// Next completes a hook. Passing a non-nil error aborts the operation.
type Next func(err error)

// Middleware is a lifecycle hook. It must call next exactly once; the
// operation does not advance until it does.
type Middleware func(doc Instance, next Next)

// Hook is a registered lifecycle hook
type Hook struct {
	Phase     Phase
	Operation string
	Fn        Middleware
}

// String returns e.g. "pre save"
func (h *Hook) String() string {
	return h.Phase.String() + " " + h.Operation
}

// Pre registers a hook that runs before an operation
func (s *Schema) Pre(operation string, fn Middleware) *Schema {
	return s.addHook(Pre, operation, fn)
}

// Post registers a hook that runs after an operation
func (s *Schema) Post(operation string, fn Middleware) *Schema {
	return s.addHook(Post, operation, fn)
}

func (s *Schema) addHook(phase Phase, operation string, fn Middleware) *Schema {
	s.hooks = append(s.hooks, &Hook{
		Phase:     phase,
		Operation: operation,
		Fn:        fn,
	})
	return s
}

// Hooks returns the hooks for a phase and operation in registration order
func (s *Schema) Hooks(phase Phase, operation string) []*Hook {
	out := make([]*Hook, 0)
	for _, h := range s.hooks {
		if h.Phase == phase && h.Operation == operation {
			out = append(out, h)
		}
	}
	return out
}

// AllHooks returns every registered hook in registration order
func (s *Schema) AllHooks() []*Hook {
	out := make([]*Hook, len(s.hooks))
	copy(out, s.hooks)
	return out
}
