package macro

import (
	"encoding/json"
	"sort"
)

// NodeType tells which variant a Node carries.
type NodeType string

const (
	NodeContext NodeType = "context" // run of plain lines belonging to one context
	NodeMacro   NodeType = "macro"   // block macro header with its children
)

// Node is one entry of the document tree: either a text run or a block macro.
type Node struct {
	Type  NodeType
	Text  *TextNode  // set when Type == NodeContext
	Macro *MacroNode // set when Type == NodeMacro
}

// TextNode is a contiguous run of non-macro lines.
// Content is Source with every inline macro replaced by its placeholder.
type TextNode struct {
	Context string
	Source  string
	Content string
	Inline  map[string]*InlineMacro
}

// MacroNode is a recognized block macro header. Items are the nodes parsed
// inside its indentation scope.
type MacroNode struct {
	Context string
	Source  string
	Name    string
	Params  Params
	Items   []Node
}

// InlineMacro is one {{name(params):content}} occurrence masked out of a text run.
type InlineMacro struct {
	Source  string
	Name    string
	Params  Params
	Content string
	Context string
}

// MarshalJSON encodes a node in its flat form:
// {"type":"context","name":...} or {"type":"macro",...,"items":[...]}.
func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.Type == NodeContext && n.Text != nil:
		return json.Marshal(struct {
			Type    NodeType                `json:"type"`
			Name    string                  `json:"name"`
			Source  string                  `json:"source"`
			Content string                  `json:"content"`
			Inline  map[string]*InlineMacro `json:"inline"`
		}{n.Type, n.Text.Context, n.Text.Source, n.Text.Content, nonNilInline(n.Text.Inline)})
	case n.Type == NodeMacro && n.Macro != nil:
		items := n.Macro.Items
		if items == nil {
			items = []Node{}
		}
		return json.Marshal(struct {
			Type    NodeType `json:"type"`
			Context string   `json:"context"`
			Source  string   `json:"source"`
			Name    string   `json:"name"`
			Params  Params   `json:"params"`
			Items   []Node   `json:"items"`
		}{n.Type, n.Macro.Context, n.Macro.Source, n.Macro.Name, n.Macro.Params, items})
	}
	return []byte("null"), nil
}

// MarshalJSON adds the "type":"macro" tag expected by expansion engines.
func (m *InlineMacro) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source  string   `json:"source"`
		Name    string   `json:"name"`
		Params  Params   `json:"params"`
		Content string   `json:"content"`
		Context string   `json:"context"`
		Type    NodeType `json:"type"`
	}{m.Source, m.Name, m.Params, m.Content, m.Context, NodeMacro})
}

func nonNilInline(m map[string]*InlineMacro) map[string]*InlineMacro {
	if m == nil {
		return map[string]*InlineMacro{}
	}
	return m
}

// Value is one decoded parameter value. A flag parameter written without
// "=value" has Valid set to false. An explicit empty value (a="") is Valid
// with an empty String.
type Value struct {
	String string
	Valid  bool
}

// Params maps a parameter name to its values in source order.
// A single element is a plain value; more elements come from a repeated name.
type Params map[string][]Value

// Get returns the first value of name. ok is false when the parameter is
// missing or was given as a bare flag.
func (p Params) Get(name string) (string, bool) {
	vals := p[name]
	if len(vals) == 0 || !vals[0].Valid {
		return "", false
	}
	return vals[0].String, true
}

// GetOr returns the first value of name, or def when it has none.
func (p Params) GetOr(name, def string) string {
	if v, ok := p.Get(name); ok {
		return v
	}
	return def
}

// All returns every valued occurrence of name in order; flags are skipped.
func (p Params) All(name string) []string {
	var out []string
	for _, v := range p[name] {
		if v.Valid {
			out = append(out, v.String)
		}
	}
	return out
}

// Has reports whether name occurred at all, flag or valued.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Names returns the parameter names sorted for stable output.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON writes null for a flag, a string for a single value, and an
// array when the name repeats.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p))
	for name, vals := range p {
		if len(vals) == 1 {
			out[name] = jsonValue(vals[0])
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = jsonValue(v)
		}
		out[name] = list
	}
	return json.Marshal(out)
}

func jsonValue(v Value) any {
	if !v.Valid {
		return nil
	}
	return v.String
}
