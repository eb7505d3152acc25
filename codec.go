// FILE: lixenwraith/confvar/codec.go
package config

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Codec converts between a value of type T and its canonical string form.
// Scalars use their literal text, containers use single-line flow YAML
// (`[1, 2]`, `{a: 1}`). Implementations must satisfy Decode(Encode(v)) == v.
//
// A nil slice or map has the same canonical form as an empty one (`[]`, `{}`)
// and decodes to an empty, non-nil container; the two are not distinguished.
// Null elements and mapping values inside a container decode to the zero value.
type Codec[T any] interface {
	Decode(text string) (T, error)
	Encode(value T) (string, error)
}

// valueCodec is the untyped form every codec composes through.
// It converts reflect values of one fixed type to and from yaml nodes.
type valueCodec interface {
	decodeNode(n *yaml.Node) (reflect.Value, error)
	encodeNode(v reflect.Value) (*yaml.Node, error)
	// composite reports whether the canonical text must be parsed as YAML
	composite() bool
}

// customCodecs holds application codecs keyed by type
var customCodecs sync.Map // map[reflect.Type]valueCodec

var emptyStructType = reflect.TypeOf((*struct{})(nil)).Elem()

// RegisterCodec installs a codec for T process-wide. It takes precedence over
// the built-in rules and is also used when T appears inside a container.
func RegisterCodec[T any](c Codec[T]) {
	customCodecs.Store(typeTagOf[T](), externalCodec[T]{c: c})
}

// CodecFor resolves the codec for T: a registered codec first, then the
// scalar rules, then containers built recursively from their element codec.
func CodecFor[T any]() (Codec[T], error) {
	t := typeTagOf[T]()
	vc, err := resolveCodec(t)
	if err != nil {
		return nil, err
	}
	if ext, ok := vc.(externalCodec[T]); ok {
		return ext.c, nil
	}
	return typedCodec[T]{vc: vc, t: t}, nil
}

// SequenceOf builds the codec for an ordered list from an element codec.
// A nil list encodes as `[]` and comes back empty but non-nil.
func SequenceOf[E any](elem Codec[E]) Codec[[]E] {
	t := typeTagOf[[]E]()
	return typedCodec[[]E]{vc: sequenceCodec{t: t, elem: asValueCodec(elem)}, t: t}
}

// SetOf builds the codec for a set from an element codec. Duplicate
// elements collapse on decode; encoded order is sorted by element text.
func SetOf[E comparable](elem Codec[E]) Codec[map[E]struct{}] {
	t := typeTagOf[map[E]struct{}]()
	return typedCodec[map[E]struct{}]{vc: setCodec{t: t, elem: asValueCodec(elem)}, t: t}
}

// MappingOf builds the codec for a string-keyed mapping from an element codec.
func MappingOf[E any](elem Codec[E]) Codec[map[string]E] {
	t := typeTagOf[map[string]E]()
	return typedCodec[map[string]E]{vc: mappingCodec{t: t, elem: asValueCodec(elem)}, t: t}
}

// asValueCodec unwraps built-in codecs and adapts application ones.
func asValueCodec[E any](c Codec[E]) valueCodec {
	if tc, ok := c.(typedCodec[E]); ok {
		return tc.vc
	}
	return externalCodec[E]{c: c}
}

// resolveCodec finds the valueCodec for t, recursing into container elements.
func resolveCodec(t reflect.Type) (valueCodec, error) {
	if c, ok := customCodecs.Load(t); ok {
		return c.(valueCodec), nil
	}

	if isScalarType(t) {
		return scalarCodec{t: t}, nil
	}

	switch t.Kind() {
	case reflect.Slice:
		elem, err := resolveCodec(t.Elem())
		if err != nil {
			return nil, err
		}
		return sequenceCodec{t: t, elem: elem}, nil

	case reflect.Map:
		// map[K]struct{} is a set
		if t.Elem() == emptyStructType {
			elem, err := resolveCodec(t.Key())
			if err != nil {
				return nil, err
			}
			return setCodec{t: t, elem: elem}, nil
		}
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: mapping keys must be strings, got %s", ErrUnsupportedType, typeName(t))
		}
		elem, err := resolveCodec(t.Elem())
		if err != nil {
			return nil, err
		}
		return mappingCodec{t: t, elem: elem}, nil

	case reflect.Struct:
		return structCodec{t: t}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typeName(t))
}

// typedCodec exposes a valueCodec through the generic Codec contract.
type typedCodec[T any] struct {
	vc valueCodec
	t  reflect.Type
}

func (c typedCodec[T]) Decode(text string) (T, error) {
	var zero T

	var n *yaml.Node
	if c.vc.composite() {
		parsed, err := parseYAML(text)
		if err != nil {
			return zero, castErr(text, typeName(c.t), err)
		}
		n = parsed
	} else {
		// Scalar text is taken as-is, never re-parsed as YAML, so "~" and ""
		// are literals here rather than null
		n = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text}
	}

	v, err := c.vc.decodeNode(n)
	if err != nil {
		return zero, castErr(text, typeName(c.t), err)
	}
	return v.Interface().(T), nil
}

func (c typedCodec[T]) Encode(value T) (string, error) {
	n, err := c.vc.encodeNode(reflect.ValueOf(&value).Elem())
	if err != nil {
		return "", castErr("", typeName(c.t), err)
	}
	text, err := nodeText(n)
	if err != nil {
		return "", castErr("", typeName(c.t), err)
	}
	return text, nil
}

// nodeText is the canonical string of a yaml node
func nodeText(n *yaml.Node) (string, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!null" && n.Tag != "!!str" {
			return "", nil
		}
		return n.Value, nil
	}
	return marshalFlow(n)
}

// scalarCodec applies the literal rules of type.go
type scalarCodec struct {
	t reflect.Type
}

func (c scalarCodec) composite() bool { return false }

func (c scalarCodec) decodeNode(n *yaml.Node) (reflect.Value, error) {
	n = resolveYAML(n)
	if isNullYAML(n) {
		// A null element or mapping value is the zero value
		return reflect.Zero(c.t), nil
	}
	if n.Kind != yaml.ScalarNode {
		return reflect.Value{}, fmt.Errorf("expected scalar for %s, got %s", typeName(c.t), YAMLNode(n).Kind())
	}
	return parseScalar(n.Value, c.t)
}

func (c scalarCodec) encodeNode(v reflect.Value) (*yaml.Node, error) {
	text, err := formatScalar(v)
	if err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: scalarTag(c.t), Value: text}, nil
}

// sequenceCodec handles slices, preserving element order
type sequenceCodec struct {
	t    reflect.Type
	elem valueCodec
}

func (c sequenceCodec) composite() bool { return true }

func (c sequenceCodec) decodeNode(n *yaml.Node) (reflect.Value, error) {
	n = resolveYAML(n)
	items, err := sequenceItems(n, c.t)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeSlice(c.t, 0, len(items))
	for i, item := range items {
		ev, err := c.elem.decodeNode(item)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out = reflect.Append(out, ev)
	}
	return out, nil
}

func (c sequenceCodec) encodeNode(v reflect.Value) (*yaml.Node, error) {
	out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for i := 0; i < v.Len(); i++ {
		child, err := c.elem.encodeNode(v.Index(i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Content = append(out.Content, child)
	}
	return out, nil
}

// setCodec handles map[E]struct{}
type setCodec struct {
	t    reflect.Type
	elem valueCodec
}

func (c setCodec) composite() bool { return true }

func (c setCodec) decodeNode(n *yaml.Node) (reflect.Value, error) {
	n = resolveYAML(n)
	items, err := sequenceItems(n, c.t)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.MakeMapWithSize(c.t, len(items))
	present := reflect.New(emptyStructType).Elem()
	for i, item := range items {
		ev, err := c.elem.decodeNode(item)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.SetMapIndex(ev, present)
	}
	return out, nil
}

func (c setCodec) encodeNode(v reflect.Value) (*yaml.Node, error) {
	type keyed struct {
		text string
		node *yaml.Node
	}

	elems := make([]keyed, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		child, err := c.elem.encodeNode(iter.Key())
		if err != nil {
			return nil, err
		}
		text, err := nodeText(child)
		if err != nil {
			return nil, err
		}
		elems = append(elems, keyed{text: text, node: child})
	}
	// Deterministic output for an unordered collection
	sort.Slice(elems, func(i, j int) bool { return elems[i].text < elems[j].text })

	out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, e := range elems {
		out.Content = append(out.Content, e.node)
	}
	return out, nil
}

// mappingCodec handles map[string]E
type mappingCodec struct {
	t    reflect.Type
	elem valueCodec
}

func (c mappingCodec) composite() bool { return true }

func (c mappingCodec) decodeNode(n *yaml.Node) (reflect.Value, error) {
	n = resolveYAML(n)
	out := reflect.MakeMap(c.t)

	if isNullYAML(n) {
		return out, nil
	}
	if n.Kind != yaml.MappingNode {
		return reflect.Value{}, fmt.Errorf("%w: expected mapping for %s, got %s", ErrNotMapping, typeName(c.t), YAMLNode(n).Kind())
	}

	for _, f := range YAMLNode(n).Fields() {
		ev, err := c.elem.decodeNode(toYAML(f.Value))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("key %q: %w", f.Key, err)
		}
		out.SetMapIndex(reflect.ValueOf(f.Key).Convert(c.t.Key()), ev)
	}
	return out, nil
}

func (c mappingCodec) encodeNode(v reflect.Value) (*yaml.Node, error) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	for _, k := range keys {
		child, err := c.elem.encodeNode(v.MapIndex(k))
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.String(), err)
		}
		out.Content = append(out.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.String()},
			child)
	}
	return out, nil
}

// externalCodec adapts an application Codec[T] so it can be composed.
type externalCodec[T any] struct {
	c Codec[T]
}

func (c externalCodec[T]) composite() bool { return true }

func (c externalCodec[T]) decodeNode(n *yaml.Node) (reflect.Value, error) {
	text, err := nodeText(resolveYAML(n))
	if err != nil {
		return reflect.Value{}, err
	}
	val, err := c.c.Decode(text)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(&val).Elem(), nil
}

func (c externalCodec[T]) encodeNode(v reflect.Value) (*yaml.Node, error) {
	text, err := c.c.Encode(v.Interface().(T))
	if err != nil {
		return nil, err
	}
	// Containers written by the application keep their structure, anything
	// else is carried as an opaque string
	if parsed, perr := parseYAML(text); perr == nil &&
		(parsed.Kind == yaml.SequenceNode || parsed.Kind == yaml.MappingNode) {
		return parsed, nil
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text}, nil
}

// sequenceItems returns the children of a sequence node; null is an empty list.
func sequenceItems(n *yaml.Node, t reflect.Type) ([]*yaml.Node, error) {
	if isNullYAML(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected sequence for %s, got %s", typeName(t), YAMLNode(n).Kind())
	}
	return n.Content, nil
}

// isNullYAML reports an explicit or empty null node
func isNullYAML(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag != "!!str" && n.ShortTag() == "!!null")
}
