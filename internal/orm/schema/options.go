package schema

// Options holds schema-level configuration. Keys follow the document layer's
// naming (typeKey, versionKey, strict, ...); unknown keys are kept but have
// no effect.
type Options map[string]any

// StrictMode controls how values for undeclared paths are treated
type StrictMode int

const (
	// StrictDrop silently ignores undeclared paths
	StrictDrop StrictMode = iota
	// StrictOff stores undeclared paths as mixed values
	StrictOff
	// StrictThrow rejects undeclared paths with an error
	StrictThrow
)

// TransformOptions configure ToObject and ToJSON output
type TransformOptions struct {
	Virtuals   bool
	VersionKey bool
	Minimize   bool
}

// Get returns a raw option value
func (o Options) Get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// Clone returns a shallow copy of the options
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

func (o Options) boolOr(key string, fallback bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return fallback
}

// TypeKey is the key that marks an options map inside a field-type map
func (o Options) TypeKey() string {
	if v, ok := o["typeKey"].(string); ok && v != "" {
		return v
	}
	return "type"
}

// VersionKey returns the version path; ok is false when versioning is off
func (o Options) VersionKey() (string, bool) {
	switch v := o["versionKey"].(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		if !v {
			return "", false
		}
	}
	return "__v", true
}

// Collection returns the configured collection name, if any
func (o Options) Collection() string {
	v, _ := o["collection"].(string)
	return v
}

// Strict returns how undeclared paths are handled
func (o Options) Strict() StrictMode {
	switch v := o["strict"].(type) {
	case bool:
		if !v {
			return StrictOff
		}
	case string:
		if v == "throw" {
			return StrictThrow
		}
	}
	return StrictDrop
}

// Minimize reports whether empty subdocuments are dropped on output
func (o Options) Minimize() bool {
	return o.boolOr("minimize", true)
}

// ValidateBeforeSave reports whether Save runs validation first
func (o Options) ValidateBeforeSave() bool {
	return o.boolOr("validateBeforeSave", true)
}

// IDVirtual reports whether documents expose an "id" virtual
func (o Options) IDVirtual() bool {
	return o.boolOr("id", true)
}

// AutoID reports whether documents get a generated _id
func (o Options) AutoID() bool {
	return o.boolOr("_id", true)
}

// ToObject returns the transform options used by ToObject
func (o Options) ToObject() TransformOptions {
	return o.transform("toObject")
}

// ToJSON returns the transform options used by ToJSON
func (o Options) ToJSON() TransformOptions {
	return o.transform("toJSON")
}

func (o Options) transform(key string) TransformOptions {
	opts := TransformOptions{
		VersionKey: true,
		Minimize:   o.Minimize(),
	}

	var raw map[string]any
	switch v := o[key].(type) {
	case map[string]any:
		raw = v
	case Options:
		raw = v
	case TransformOptions:
		return v
	}

	if b, ok := raw["virtuals"].(bool); ok {
		opts.Virtuals = b
	}
	if b, ok := raw["versionKey"].(bool); ok {
		opts.VersionKey = b
	}
	if b, ok := raw["minimize"].(bool); ok {
		opts.Minimize = b
	}
	return opts
}
