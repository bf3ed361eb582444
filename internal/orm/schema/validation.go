package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrValidationFailed is wrapped by every ValidationError
var ErrValidationFailed = errors.New("validation failed")

// FieldError represents a validation error on a specific path
type FieldError struct {
	Path    string
	Message string
}

// ValidationError contains the validation errors for a document
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", ve.Errors[0].Path, ve.Errors[0].Message)
	}
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// Unwrap lets errors.Is match ErrValidationFailed
func (ve *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// IsValidationError returns true if the error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// Validate checks document data against the schema's paths
func (s *Schema) Validate(data map[string]any) error {
	var errs []FieldError
	for _, name := range s.Paths() {
		errs = validatePath(errs, name, s.paths[name], data[name])
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validatePath(errs []FieldError, name string, p *Path, value any) []FieldError {
	if value == nil {
		if p.Required {
			errs = append(errs, FieldError{Path: name, Message: "is required"})
		}
		return errs
	}

	if _, err := p.Cast(value); err != nil {
		return append(errs, FieldError{Path: name, Message: err.Error()})
	}

	if len(p.Enum) > 0 {
		str := fmt.Sprint(value)
		allowed := false
		for _, e := range p.Enum {
			if e == str {
				allowed = true
				break
			}
		}
		if !allowed {
			errs = append(errs, FieldError{
				Path:    name,
				Message: fmt.Sprintf("%q is not one of %v", str, p.Enum),
			})
		}
	}

	if p.Type == Map {
		if sub, ok := value.(map[string]any); ok {
			names := make([]string, 0, len(p.Children))
			for childName := range p.Children {
				names = append(names, childName)
			}
			sort.Strings(names)
			for _, childName := range names {
				errs = validatePath(errs, name+"."+childName, p.Children[childName], sub[childName])
			}
		}
	}

	return errs
}
