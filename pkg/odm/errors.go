package odm

import (
	"errors"
	"fmt"
)

// Definition errors. They are wrapped in a *DefinitionError naming the class.
var (
	// ErrMissingFields is returned when a class has no field-type map
	ErrMissingFields = errors.New("class has no field-type map")

	// ErrClassSealed is returned when a class is changed after its first
	// schema build
	ErrClassSealed = errors.New("class definition changed after its first schema build")

	// ErrInvalidHook is returned for a hook callback of an unsupported type
	ErrInvalidHook = errors.New("unsupported hook callback")

	// ErrInvalidMethod is returned for an instance method of an unsupported type
	ErrInvalidMethod = errors.New("unsupported method value")

	// ErrInvalidConnection is returned when a class's connection static is not
	// a connection
	ErrInvalidConnection = errors.New("connection static is not a *model.Connection")
)

// DefinitionError reports a problem with a class definition
type DefinitionError struct {
	Class string
	Err   error
}

// Error implements the error interface
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("class %s: %v", e.Class, e.Err)
}

// Unwrap returns the underlying error
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// IsDefinitionError returns true if the error is a class definition error
func IsDefinitionError(err error) bool {
	var defErr *DefinitionError
	return errors.As(err, &defErr)
}

func definitionError(class string, err error) error {
	return &DefinitionError{Class: class, Err: err}
}
