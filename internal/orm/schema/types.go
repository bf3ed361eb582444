package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type represents the built-in field types of a document
type Type int

const (
	// Mixed accepts any value as-is
	Mixed Type = iota
	String
	Number
	Boolean
	Date
	// ObjectID holds a UUID, optionally referencing another model
	ObjectID
	// Map is a nested subdocument with its own paths
	Map
	// Array holds a list of a single element type
	Array
)

// String returns the string representation of the type
func (t Type) String() string {
	switch t {
	case Mixed:
		return "mixed"
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case ObjectID:
		return "objectid"
	case Map:
		return "map"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "mixed", "any":
		return Mixed, nil
	case "string":
		return String, nil
	case "number":
		return Number, nil
	case "boolean", "bool":
		return Boolean, nil
	case "date":
		return Date, nil
	case "objectid", "id":
		return ObjectID, nil
	case "map", "object":
		return Map, nil
	case "array":
		return Array, nil
	default:
		return 0, fmt.Errorf("unknown field type: %s", s)
	}
}

// Fields is the field-type map of a schema. Values are a Type, a type name,
// a nested Fields (or map[string]any) subdocument, a one-element []any array,
// or an options map holding the type key together with required, default,
// enum and ref.
type Fields map[string]any

// Path is a compiled field definition
type Path struct {
	Name     string
	Type     Type
	Required bool
	Default  any
	Enum     []string
	Ref      string

	Elem     *Path            // For Array
	Children map[string]*Path // For Map
}

// String returns a string representation of the path's type
func (p *Path) String() string {
	switch p.Type {
	case Array:
		if p.Elem != nil {
			return fmt.Sprintf("array<%s>", p.Elem.String())
		}
		return "array<mixed>"
	case ObjectID:
		if p.Ref != "" {
			return fmt.Sprintf("objectid(%s)", p.Ref)
		}
	}
	return p.Type.String()
}

// compileFields converts a field-type map to paths
func compileFields(fields map[string]any, typeKey string) (map[string]*Path, error) {
	paths := make(map[string]*Path, len(fields))
	for name, def := range fields {
		path, err := compilePath(name, def, typeKey)
		if err != nil {
			return nil, err
		}
		paths[name] = path
	}
	return paths, nil
}

func compilePath(name string, def any, typeKey string) (*Path, error) {
	switch d := def.(type) {
	case Type:
		return &Path{Name: name, Type: d}, nil

	case string:
		t, err := ParseType(d)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		return &Path{Name: name, Type: t}, nil

	case []any:
		return compileArray(name, d, typeKey)

	case Fields:
		return compileObject(name, map[string]any(d), typeKey)

	case map[string]any:
		return compileObject(name, d, typeKey)

	case nil:
		return nil, fmt.Errorf("field %s: missing type descriptor", name)

	default:
		return nil, fmt.Errorf("field %s: unsupported type descriptor %T", name, def)
	}
}

func compileArray(name string, def []any, typeKey string) (*Path, error) {
	path := &Path{Name: name, Type: Array}
	switch len(def) {
	case 0:
		path.Elem = &Path{Name: name, Type: Mixed}
	case 1:
		elem, err := compilePath(name, def[0], typeKey)
		if err != nil {
			return nil, err
		}
		path.Elem = elem
	default:
		return nil, fmt.Errorf("field %s: array descriptor takes one element type, got %d", name, len(def))
	}
	return path, nil
}

// compileObject handles both options maps (holding the type key) and nested
// subdocuments
func compileObject(name string, def map[string]any, typeKey string) (*Path, error) {
	typeDef, isOptions := def[typeKey]
	if !isOptions {
		children, err := compileFields(def, typeKey)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		return &Path{Name: name, Type: Map, Children: children}, nil
	}

	path, err := compilePath(name, typeDef, typeKey)
	if err != nil {
		return nil, err
	}

	if required, ok := def["required"].(bool); ok {
		path.Required = required
	}
	if dflt, ok := def["default"]; ok {
		path.Default = dflt
	}
	if ref, ok := def["ref"].(string); ok {
		path.Ref = ref
	}
	switch enum := def["enum"].(type) {
	case []string:
		path.Enum = enum
	case []any:
		for _, v := range enum {
			path.Enum = append(path.Enum, fmt.Sprint(v))
		}
	}

	return path, nil
}

// DefaultValue returns the path's default, calling it when it is a function
func (p *Path) DefaultValue() any {
	if fn, ok := p.Default.(func() any); ok {
		return fn()
	}
	return p.Default
}

// Cast converts a value to the path's type
func (p *Path) Cast(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch p.Type {
	case Mixed:
		return value, nil
	case String:
		return castString(value)
	case Number:
		return castNumber(value)
	case Boolean:
		return castBoolean(value)
	case Date:
		return castDate(value)
	case ObjectID:
		return castObjectID(value)
	case Map:
		return p.castMap(value)
	case Array:
		return p.castArray(value)
	default:
		return nil, fmt.Errorf("cannot cast to %s", p.Type)
	}
}

func castString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	default:
		return nil, fmt.Errorf("cannot cast %T to string", value)
	}
}

func castNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to number", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot cast %T to number", value)
	}
}

func castBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to boolean", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot cast %T to boolean", value)
	}
}

func castDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to date", v)
		}
		return t.UTC(), nil
	default:
		return nil, fmt.Errorf("cannot cast %T to date", value)
	}
}

func castObjectID(value any) (any, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to objectid", v)
		}
		return id.String(), nil
	case Instance:
		return v.ID(), nil
	default:
		return nil, fmt.Errorf("cannot cast %T to objectid", value)
	}
}

func (p *Path) castMap(value any) (any, error) {
	src, ok := value.(map[string]any)
	if !ok {
		if f, isFields := value.(Fields); isFields {
			src = map[string]any(f)
		} else {
			return nil, fmt.Errorf("cannot cast %T to map", value)
		}
	}

	out := make(map[string]any, len(src))
	for key, v := range src {
		child, known := p.Children[key]
		if !known {
			out[key] = v
			continue
		}
		cast, err := child.Cast(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", p.Name, key, err)
		}
		out[key] = cast
	}
	return out, nil
}

func (p *Path) castArray(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot cast %T to array", value)
	}

	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if p.Elem == nil {
			out[i] = item
			continue
		}
		cast, err := p.Elem.Cast(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", p.Name, i, err)
		}
		out[i] = cast
	}
	return out, nil
}
