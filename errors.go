// FILE: lixenwraith/confvar/errors.go
package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLiteral is matched by every decode or encode failure
	ErrInvalidLiteral = errors.New("invalid literal")

	// ErrTypeMismatch is returned when a name is re-declared with a different type
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidName is returned for empty or malformed variable names
	ErrInvalidName = errors.New("invalid variable name")

	// ErrUnsupportedType is returned when no codec can be resolved for a type
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfigNotFound is returned when a configuration file does not exist
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnknownFormat is returned when a document format cannot be determined
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrNotMapping is returned when a section expected to be a mapping is not
	ErrNotMapping = errors.New("not a mapping")
)

// CastError describes a failed conversion between a value and its canonical string form.
type CastError struct {
	Input string // Offending text, empty when encoding
	Type  string // Target (decode) or source (encode) type name
	Err   error  // Underlying parse error, may be nil
}

func (e *CastError) Error() string {
	msg := fmt.Sprintf("%s: cannot convert %q to %s", ErrInvalidLiteral, e.Input, e.Type)
	if e.Input == "" && e.Err != nil {
		msg = fmt.Sprintf("%s: cannot convert %s", ErrInvalidLiteral, e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrInvalidLiteral so callers can match any cast failure.
func (e *CastError) Is(target error) bool {
	return target == ErrInvalidLiteral
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// castErr wraps err into a *CastError unless it already is one.
func castErr(input, typeName string, err error) error {
	var ce *CastError
	if errors.As(err, &ce) {
		return err
	}
	return &CastError{Input: input, Type: typeName, Err: err}
}

// TypeMismatchError reports a declaration whose type differs from the stored variable.
type TypeMismatchError struct {
	Name     string
	Expected string // Type already registered under Name
	Got      string // Type of the rejected declaration
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for %q: expected %s got %s", e.Name, e.Expected, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
