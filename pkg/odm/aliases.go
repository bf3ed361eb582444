package odm

import (
	"github.com/conduit-lang/odm/internal/orm/model"
	"github.com/conduit-lang/odm/internal/orm/schema"
)

// Engine types re-exported so callers only import this package.
type (
	Connection   = model.Connection
	Document     = model.Document
	Fields       = schema.Fields
	Instance     = schema.Instance
	Constructor  = schema.Constructor
	Next         = schema.Next
	Middleware   = schema.Middleware
	Getter       = schema.Getter
	Setter       = schema.Setter
	MethodFunc   = schema.MethodFunc
	StaticFunc   = schema.StaticFunc
	StaticGetter = schema.StaticGetter
	PluginFunc   = schema.PluginFunc
	Type         = schema.Type
	Phase        = schema.Phase
)

// DocumentModel is the registered model type returned by the factories
type DocumentModel = model.Model

// Field types
const (
	Mixed    = schema.Mixed
	String   = schema.String
	Number   = schema.Number
	Boolean  = schema.Boolean
	Date     = schema.Date
	ObjectID = schema.ObjectID
	Map      = schema.Map
	Array    = schema.Array
)

// Lifecycle operations
const (
	OpInit     = schema.OpInit
	OpValidate = schema.OpValidate
	OpSave     = schema.OpSave
	OpRemove   = schema.OpRemove
)

// Hook phases
const (
	PhasePre  = schema.Pre
	PhasePost = schema.Post
)

var (
	// NewConnection creates a registry over a store
	NewConnection = model.NewConnection
	// Dial opens a store by URL and creates a registry over it
	Dial = model.Dial
	// DefaultConnection returns the process-wide registry
	DefaultConnection = model.Default
	// SetDefaultConnection replaces the process-wide registry
	SetDefaultConnection = model.SetDefault
	// IsValidationError reports whether err is a document validation failure
	IsValidationError = schema.IsValidationError
	// ErrModelExists is returned when a model name is registered twice
	ErrModelExists = model.ErrModelExists
)
