// FILE: lixenwraith/confvar/node.go
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeKind classifies a document node.
type NodeKind int

const (
	// NullNode is an explicit empty value (`key:` or `key: ~`)
	NullNode NodeKind = iota
	// ScalarNode holds a single textual value
	ScalarNode
	// SequenceNode holds an ordered list of nodes
	SequenceNode
	// MappingNode holds string-keyed child nodes
	MappingNode
)

// String returns the kind name
func (k NodeKind) String() string {
	switch k {
	case NullNode:
		return "null"
	case ScalarNode:
		return "scalar"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	default:
		return "unknown"
	}
}

// Node is the read-only view of a hierarchical document consumed by Flatten
// and ApplyDocument. Any tree source can be fed to a Registry by implementing it.
type Node interface {
	// Kind reports the node classification.
	Kind() NodeKind
	// Text returns the scalar text; empty for other kinds.
	Text() string
	// Items returns the children of a sequence.
	Items() []Node
	// Fields returns the children of a mapping in document order.
	Fields() []Field
}

// Field is a single key/value pair of a mapping node.
type Field struct {
	Key   string
	Value Node
}

// yamlNode adapts *yaml.Node to Node.
type yamlNode struct {
	n *yaml.Node
}

// YAMLNode wraps a parsed yaml.v3 node. Document nodes are unwrapped and
// aliases are resolved, so callers may pass the result of yaml.Unmarshal directly.
func YAMLNode(n *yaml.Node) Node {
	return yamlNode{n: resolveYAML(n)}
}

// resolveYAML strips document wrappers and follows aliases.
func resolveYAML(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
	return n
}

func (y yamlNode) Kind() NodeKind {
	if y.n == nil {
		return NullNode
	}
	switch y.n.Kind {
	case yaml.ScalarNode:
		if y.n.ShortTag() == "!!null" {
			return NullNode
		}
		return ScalarNode
	case yaml.SequenceNode:
		return SequenceNode
	case yaml.MappingNode:
		return MappingNode
	default:
		// Empty documents carry no content
		return NullNode
	}
}

func (y yamlNode) Text() string {
	if y.Kind() != ScalarNode {
		return ""
	}
	return y.n.Value
}

func (y yamlNode) Items() []Node {
	if y.Kind() != SequenceNode {
		return nil
	}
	items := make([]Node, 0, len(y.n.Content))
	for _, child := range y.n.Content {
		items = append(items, YAMLNode(child))
	}
	return items
}

func (y yamlNode) Fields() []Field {
	if y.Kind() != MappingNode {
		return nil
	}
	fields := make([]Field, 0, len(y.n.Content)/2)
	for i := 0; i+1 < len(y.n.Content); i += 2 {
		key := resolveYAML(y.n.Content[i])
		val := y.n.Content[i+1]

		// Merge keys (<<: *anchor) splice the referenced mapping in place
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			if merged := YAMLNode(val); merged.Kind() == MappingNode {
				fields = append(fields, merged.Fields()...)
			}
			continue
		}

		fields = append(fields, Field{Key: key.Value, Value: YAMLNode(val)})
	}
	return fields
}

// NodeFromValue builds a Node from decoded Go data such as the
// map[string]any produced by TOML or JSON decoders.
func NodeFromValue(v any) (Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to convert %T to document node: %w", v, err)
	}
	return YAMLNode(&n), nil
}

// ParseNode parses YAML text (including flow forms such as "[1, 2]") into a Node.
func ParseNode(text string) (Node, error) {
	n, err := parseYAML(text)
	if err != nil {
		return nil, err
	}
	return YAMLNode(n), nil
}

// Canonical returns the canonical string form of a node: the raw text for
// scalars, an empty string for null, and flow-style YAML for containers.
func Canonical(n Node) (string, error) {
	switch n.Kind() {
	case NullNode:
		return "", nil
	case ScalarNode:
		return n.Text(), nil
	}
	return marshalFlow(toYAML(n))
}

// toYAML converts any Node into a yaml.v3 tree, reusing the original when possible.
func toYAML(n Node) *yaml.Node {
	if y, ok := n.(yamlNode); ok && y.n != nil {
		return y.n
	}

	switch n.Kind() {
	case ScalarNode:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Text()}
	case SequenceNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items() {
			out.Content = append(out.Content, toYAML(item))
		}
		return out
	case MappingNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range n.Fields() {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				toYAML(f.Value))
		}
		return out
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
	}
}

// parseYAML parses text into a yaml.v3 node with document wrappers removed.
func parseYAML(text string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	n := resolveYAML(&doc)
	if n.Kind == yaml.DocumentNode || n.Kind == 0 {
		// Empty input
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}, nil
	}
	return n, nil
}

// marshalFlow renders a yaml node on a single line in flow style.
func marshalFlow(n *yaml.Node) (string, error) {
	flow := withFlowStyle(n)
	out, err := yaml.Marshal(flow)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// isLiteralMergeKey reports a string key spelled "<<" that is not a merge
func isLiteralMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && n.ShortTag() != "!!merge"
}

// withFlowStyle returns a shallow copy of n with flow style on every container.
// The input tree is not modified.
func withFlowStyle(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	c.HeadComment, c.LineComment, c.FootComment = "", "", ""
	if c.Kind == yaml.AliasNode && c.Alias != nil {
		return withFlowStyle(c.Alias)
	}
	if c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode {
		c.Style |= yaml.FlowStyle
		c.Anchor = ""
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = withFlowStyle(child)
			if c.Kind == yaml.MappingNode && i%2 == 0 && isLiteralMergeKey(child) {
				// A plain << would be read back as a merge key
				c.Content[i].Style = yaml.DoubleQuotedStyle
			}
		}
	} else {
		c.Anchor = ""
	}
	return &c
}
