package macro

import (
	"sort"
	"strings"
)

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the children of that node.
func Walk(nodes []Node, fn func(n Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []Node, depth int, fn func(n Node, depth int) bool) {
	for _, n := range nodes {
		if !fn(n, depth) {
			continue
		}
		if n.Type == NodeMacro && n.Macro != nil {
			walk(n.Macro.Items, depth+1, fn)
		}
	}
}

// Macros returns every block macro in the tree in document order.
func (r *Result) Macros() []*MacroNode {
	var macros []*MacroNode
	Walk(r.Nodes, func(n Node, _ int) bool {
		if n.Type == NodeMacro {
			macros = append(macros, n.Macro)
		}
		return true
	})
	return macros
}

// Inlines returns every inline macro in the tree in document order.
func (r *Result) Inlines() []*InlineMacro {
	var inlines []*InlineMacro
	Walk(r.Nodes, func(n Node, _ int) bool {
		if n.Type == NodeContext {
			for _, holder := range n.Text.Placeholders() {
				inlines = append(inlines, n.Text.Inline[holder])
			}
		}
		return true
	})
	return inlines
}

// Placeholders returns the placeholder keys of t in the order they appear in Content.
func (t *TextNode) Placeholders() []string {
	keys := make([]string, 0, len(t.Inline))
	for k := range t.Inline {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.Index(t.Content, keys[i]) < strings.Index(t.Content, keys[j])
	})
	return keys
}
