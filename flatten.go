// FILE: lixenwraith/confvar/flatten.go
package config

// Entry pairs a dotted path with the document node found there.
type Entry struct {
	Path string
	Node Node
}

// Flatten linearizes a document tree depth-first in key order.
//
// A mapping is emitted at its own path and then recursed into, so both the
// subtree and its leaves appear; consumers tell them apart by Node.Kind.
// Scalars, nulls and sequences are terminal. The root is emitted with an
// empty path. For {a: {b: 1}, d: 3} the output is "", "a", "a.b", "d".
func Flatten(root Node) []Entry {
	var entries []Entry
	flattenInto(&entries, "", root)
	return entries
}

func flattenInto(entries *[]Entry, prefix string, n Node) {
	if n == nil {
		return
	}

	*entries = append(*entries, Entry{Path: prefix, Node: n})
	if n.Kind() != MappingNode {
		return
	}

	for _, f := range n.Fields() {
		flattenInto(entries, joinPath(prefix, f.Key), f.Value)
	}
}
