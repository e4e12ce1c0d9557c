package macro

import (
	"regexp"
	"strings"
)

// inlinePattern matches {{name(params)}} and {{name(params):content}}.
// Params may not contain parentheses; content may not contain braces.
var inlinePattern = regexp.MustCompile(`\{\{([\w-]+)[ \t]*\(([^()]*)\)(?:[ \t]*:([^{}]*))?\}\}`)

// MarkOut replaces every well-formed inline macro in source with a fresh
// placeholder and records the occurrence under that placeholder. Inline
// macros whose parameter list does not decode are left as they are.
func (p *Parser) MarkOut(source, context string) *TextNode {
	node := &TextNode{
		Context: context,
		Source:  source,
		Content: source,
		Inline:  map[string]*InlineMacro{},
	}

	matches := inlinePattern.FindAllStringSubmatchIndex(source, -1)
	if len(matches) == 0 {
		return node
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		match := source[m[0]:m[1]]
		name := source[m[2]:m[3]]

		params, err := ParseParams(source[m[4]:m[5]])
		if err != nil {
			p.log.Debug("inline macro kept as text", "macro", name, "error", err)
			continue
		}

		var content string
		if m[6] >= 0 {
			content = source[m[6]:m[7]]
		}

		holder := p.placeholders.Next()
		node.Inline[holder] = &InlineMacro{
			Source:  match,
			Name:    name,
			Params:  params,
			Content: content,
			Context: context,
		}

		out.WriteString(source[last:m[0]])
		out.WriteString(holder)
		last = m[1]
	}
	out.WriteString(source[last:])

	node.Content = out.String()
	return node
}
