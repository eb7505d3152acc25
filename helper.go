// File: lixenwraith/confvar/helper.go
package config

import (
	"fmt"
	"reflect"
	"strings"
)

// joinPath appends key to a dotted prefix
func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// validateName checks that name is non-empty and every dot-separated segment is valid.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	for _, segment := range strings.Split(name, ".") {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("%w: invalid segment %q in %q", ErrInvalidName, segment, name)
		}
	}
	return nil
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// Missing intermediate maps are created. An intermediate that already holds a
// string-keyed map or a struct is copied into a new map so its entries merge
// with the children; any other value is a conflict.
func setNestedValue(nested map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	current := nested

	// Iterate through segments up to the second-to-last one
	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if !exists || next == nil {
			next = map[string]any{}
		}
		nextMap, err := asNestedMap(next)
		if err != nil {
			return fmt.Errorf("%w: %q holds %T and cannot contain %q", ErrNotMapping,
				strings.Join(segments[:i+1], "."), next, path)
		}
		current[segment] = nextMap
		current = nextMap
	}

	current[segments[len(segments)-1]] = value
	return nil
}

// asNestedMap returns a shallow copy of a string-keyed map or the fields of a
// struct as map[string]any. The source value is never modified.
func asNestedMap(v any) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrNotMapping, rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	case reflect.Struct:
		out := make(map[string]any)
		if err := decodeInto(rv.Interface(), &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotMapping, rv.Type())
	}
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		currentMap, err := asNestedMap(current)
		if err != nil {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}

// isValidKeySegment checks if a single path segment is a valid key part.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	// Bare keys are sequences of ASCII letters, ASCII digits, underscores, and dashes (A-Za-z0-9_-).
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
