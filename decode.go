// FILE: lixenwraith/confvar/decode.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// StructTag is the struct tag consulted for field names by StructCodec and Scan
const StructTag = "yaml"

// StructCodec returns the mapping codec used for struct types without a
// registered codec. Fields are matched by `yaml` tag, falling back to the
// field name case-insensitively; strings are weakly converted to field types.
func StructCodec[T any]() (Codec[T], error) {
	t := typeTagOf[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: StructCodec requires a struct, got %s", ErrUnsupportedType, typeName(t))
	}
	return typedCodec[T]{vc: structCodec{t: t}, t: t}, nil
}

// structCodec decodes mapping nodes into structs through mapstructure
type structCodec struct {
	t reflect.Type
}

func (c structCodec) composite() bool { return true }

func (c structCodec) decodeNode(n *yaml.Node) (reflect.Value, error) {
	n = resolveYAML(n)
	ptr := reflect.New(c.t)

	if isNullYAML(n) {
		return ptr.Elem(), nil
	}
	if n.Kind != yaml.MappingNode {
		return reflect.Value{}, fmt.Errorf("%w: expected mapping for %s, got %s", ErrNotMapping, typeName(c.t), YAMLNode(n).Kind())
	}

	var raw map[string]any
	if err := n.Decode(&raw); err != nil {
		return reflect.Value{}, fmt.Errorf("mapping decode failed: %w", err)
	}

	if err := decodeInto(raw, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func (c structCodec) encodeNode(v reflect.Value) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v.Interface()); err != nil {
		return nil, fmt.Errorf("struct encode failed: %w", err)
	}
	return &n, nil
}

// decodeInto runs mapstructure with the package decode hooks
func decodeInto(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          StructTag,
		WeaklyTypedInput: true,
		DecodeHook:       getDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// Scan decodes the current values of all variables under basePath into target,
// which must be a non-nil pointer to a struct or map. Variable names are
// split on dots to rebuild the nesting; an empty basePath scans everything.
func (r *Registry) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	base := strings.TrimSuffix(basePath, ".")

	r.mutex.RLock()
	names := make([]string, 0, len(r.vars))
	for name := range r.vars {
		// Only the section itself, its ancestors and its descendants
		if base == "" || name == base ||
			strings.HasPrefix(name, base+".") || strings.HasPrefix(base, name+".") {
			names = append(names, name)
		}
	}
	// Parents before children
	sort.Strings(names)

	nested := make(map[string]any)
	var err error
	for _, name := range names {
		if raw, ok := r.vars[name].(rawValuer); ok {
			if err = setNestedValue(nested, name, raw.rawValue()); err != nil {
				break
			}
		}
	}
	r.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("scan of %q failed: %w", basePath, err)
	}

	section := navigateToPath(nested, basePath)
	if section == nil {
		section = make(map[string]any)
	}

	// Only sections (maps or struct values) can be scanned
	if sv := reflect.ValueOf(section); sv.Kind() != reflect.Map && sv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: path %q refers to %T", ErrNotMapping, basePath, section)
	}

	if err := decodeInto(section, target); err != nil {
		return fmt.Errorf("scan of %q failed: %w", basePath, err)
	}
	return nil
}

// getDecodeHook returns the composite decode hook for all type conversions
func getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}

		ip := net.ParseIP(strings.TrimSpace(str))
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}
