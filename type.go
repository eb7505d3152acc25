// FILE: lixenwraith/confvar/type.go
package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	durationType = reflect.TypeOf((*time.Duration)(nil)).Elem()
	timeType     = reflect.TypeOf((*time.Time)(nil)).Elem()
)

// typeTagOf returns the identity used to detect cross-type name collisions.
// reflect.Type values are comparable and unique per concrete type.
func typeTagOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// typeName renders a type tag as text for messages and introspection.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// isScalarType reports whether t is handled by the scalar literal rules.
func isScalarType(t reflect.Type) bool {
	if t == durationType || t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// parseScalar converts text into a new value of type t.
// Strings are taken verbatim; every other kind ignores surrounding whitespace.
func parseScalar(s string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	if t.Kind() == reflect.String {
		v.SetString(s)
		return v, nil
	}

	s = strings.TrimSpace(s)
	switch {
	case t == durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			// Bare integers are nanoseconds
			n, ierr := parseInt(s, 64)
			if ierr != nil {
				return v, castErr(s, typeName(t), err)
			}
			d = time.Duration(n)
		}
		v.SetInt(int64(d))
		return v, nil

	case t == timeType:
		tm, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return v, castErr(s, typeName(t), err)
		}
		v.Set(reflect.ValueOf(tm))
		return v, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return v, castErr(s, typeName(t), err)
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := parseInt(s, t.Bits())
		if err != nil {
			return v, castErr(s, typeName(t), err)
		}
		v.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			// Fall back to prefixed literals (0x, 0o, 0b)
			var perr error
			if u, perr = strconv.ParseUint(s, 0, t.Bits()); perr != nil {
				return v, castErr(s, typeName(t), err)
			}
		}
		v.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return v, castErr(s, typeName(t), err)
		}
		v.SetFloat(f)

	default:
		return v, fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedType, typeName(t))
	}

	return v, nil
}

// parseInt parses a decimal literal first, then prefixed forms such as "0xFF".
func parseInt(s string, bits int) (int64, error) {
	i, err := strconv.ParseInt(s, 10, bits)
	if err == nil {
		return i, nil
	}
	if i, perr := strconv.ParseInt(s, 0, bits); perr == nil {
		return i, nil
	}
	return 0, err
}

// formatScalar renders a scalar value in its canonical textual form.
func formatScalar(v reflect.Value) (string, error) {
	t := v.Type()
	switch {
	case t == durationType:
		return time.Duration(v.Int()).String(), nil
	case t == timeType:
		return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
	}

	switch t.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, t.Bits()), nil
	}

	return "", &CastError{Type: typeName(t), Err: fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedType, typeName(t))}
}

// scalarTag returns the YAML tag used when a scalar is emitted inside a container.
// Only strings carry an explicit tag so that text such as "123" stays quoted;
// other kinds are emitted plain and re-parsed from their text.
func scalarTag(t reflect.Type) string {
	if t.Kind() == reflect.String {
		return "!!str"
	}
	return ""
}
