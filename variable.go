// FILE: lixenwraith/confvar/variable.go
package config

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

// Variable is the type-erased view of a declared configuration variable.
// The registry stores variables of every type behind this interface; only
// the declaring call site holds the typed *Var[T].
type Variable interface {
	Name() string
	Description() string
	// ValueString returns the canonical string form, or "" if encoding fails.
	ValueString() string
	// SetValueString decodes text and replaces the value. On failure the
	// value is left unchanged and a *CastError is returned.
	SetValueString(text string) error
	// TypeName renders TypeTag as text.
	TypeName() string
	// TypeTag identifies the element type; it never changes after declaration.
	TypeTag() reflect.Type
}

// rawValuer exposes the current value as an interface for Scan
type rawValuer interface {
	rawValue() any
}

// Var is a named, described configuration value of type T.
// Obtain one through Declare; the zero value is not usable.
type Var[T any] struct {
	name        string
	description string
	tag         reflect.Type
	codec       Codec[T]
	owner       *Registry

	mu    sync.RWMutex
	value T
}

func newVar[T any](owner *Registry, name, description string, value T, codec Codec[T]) *Var[T] {
	return &Var[T]{
		name:        name,
		description: description,
		tag:         typeTagOf[T](),
		codec:       codec,
		owner:       owner,
		value:       value,
	}
}

// Name returns the dotted variable name
func (v *Var[T]) Name() string { return v.name }

// Description returns the free-text description
func (v *Var[T]) Description() string { return v.description }

// TypeTag returns the reflect.Type of T
func (v *Var[T]) TypeTag() reflect.Type { return v.tag }

// TypeName returns the type of T as text, e.g. "[]int" or "map[string]bool"
func (v *Var[T]) TypeName() string { return typeName(v.tag) }

// Codec returns the codec used for string conversions
func (v *Var[T]) Codec() Codec[T] { return v.codec }

// Value returns the current value
func (v *Var[T]) Value() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// SetValue replaces the current value and logs the change
func (v *Var[T]) SetValue(value T) {
	v.mu.Lock()
	old := v.value
	v.value = value
	v.mu.Unlock()

	v.log().WithFields(logrus.Fields{
		"old": v.encode(old),
		"new": v.encode(value),
	}).Info("config value changed")
}

// SetValueString decodes text with the variable's codec and, only on
// success, replaces the value. Failures are logged and returned.
func (v *Var[T]) SetValueString(text string) error {
	decoded, err := v.codec.Decode(text)
	if err != nil {
		err = castErr(text, v.TypeName(), err)
		v.log().WithError(err).WithField("input", text).Error("config value rejected")
		return err
	}
	v.SetValue(decoded)
	return nil
}

// ValueString returns the canonical string form of the current value
func (v *Var[T]) ValueString() string {
	return v.encode(v.Value())
}

// String implements pflag.Value and fmt.Stringer
func (v *Var[T]) String() string { return v.ValueString() }

// Set implements pflag.Value
func (v *Var[T]) Set(text string) error { return v.SetValueString(text) }

// Type implements pflag.Value
func (v *Var[T]) Type() string { return v.TypeName() }

func (v *Var[T]) rawValue() any { return v.Value() }

// encode renders value, logging and returning "" on failure
func (v *Var[T]) encode(value T) string {
	text, err := v.codec.Encode(value)
	if err != nil {
		v.log().WithError(err).Error("config value encode failed")
		return ""
	}
	return text
}

func (v *Var[T]) log() logrus.FieldLogger {
	var l logrus.FieldLogger
	if v.owner != nil {
		l = v.owner.Logger()
	} else {
		l = logrus.StandardLogger()
	}
	return l.WithFields(logrus.Fields{
		"name": v.name,
		"type": v.TypeName(),
	})
}
