// FILE: lixenwraith/confvar/register.go
package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Declare creates the variable name with the given value, or updates it if
// it already exists with the same type. The name must be dot-separated
// (e.g., "server.port", "debug") and each segment a valid key identifier.
//
// Updating pushes the value through the existing variable's canonical string
// form, exactly as a loaded document would. Re-declaring a name with a
// different type is rejected with a *TypeMismatchError and changes nothing.
func Declare[T any](r *Registry, name, description string, value T) (*Var[T], error) {
	return declare(r, name, description, value, nil)
}

// DeclareWithCodec is Declare with an explicit codec for T. The codec is
// only used when the variable is created; later declarations reuse it.
func DeclareWithCodec[T any](r *Registry, name, description string, value T, codec Codec[T]) (*Var[T], error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: nil codec for %q", ErrUnsupportedType, name)
	}
	return declare(r, name, description, value, codec)
}

// MustDeclare is like Declare but panics on error
func MustDeclare[T any](r *Registry, name, description string, value T) *Var[T] {
	v, err := Declare(r, name, description, value)
	if err != nil {
		panic(fmt.Sprintf("config declaration of %q failed: %v", name, err))
	}
	return v
}

func declare[T any](r *Registry, name, description string, value T, codec Codec[T]) (*Var[T], error) {
	tag := typeTagOf[T]()
	log := r.Logger().WithFields(logrus.Fields{
		"name": name,
		"type": typeName(tag),
	})

	if err := validateName(name); err != nil {
		log.WithError(err).Error("config declaration rejected")
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, found := r.vars[name]
	if !found {
		if codec == nil {
			resolved, err := CodecFor[T]()
			if err != nil {
				err = fmt.Errorf("declaring %q: %w", name, err)
				log.WithError(err).Error("config declaration rejected")
				return nil, err
			}
			codec = resolved
		}

		v := newVar(r, name, description, value, codec)
		r.vars[name] = v
		log.WithField("value", v.ValueString()).Info("config variable created")
		return v, nil
	}

	typed, ok := existing.(*Var[T])
	if existing.TypeTag() != tag || !ok {
		err := &TypeMismatchError{
			Name:     name,
			Expected: existing.TypeName(),
			Got:      typeName(tag),
		}
		log.WithError(err).Errorf("type mismatch: expected %s got %s", err.Expected, err.Got)
		return nil, err
	}

	// Round-trip through the canonical form shared with documents
	text, err := typed.codec.Encode(value)
	if err != nil {
		err = castErr("", typed.TypeName(), err)
		log.WithError(err).Error("config declaration rejected")
		return typed, err
	}
	if err := typed.SetValueString(text); err != nil {
		return typed, err
	}

	log.WithField("value", typed.ValueString()).Info("config variable updated")
	return typed, nil
}
