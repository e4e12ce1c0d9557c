package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/open-cli-collective/macroed/pkg/macro"
)

// Options configures an Engine.
type Options struct {
	Registry *Registry    // required
	EOL      string       // joins sibling outputs, "\n" when empty
	Logger   *slog.Logger // discarded when nil
}

// Engine expands parsed documents. It keeps no state between calls.
type Engine struct {
	registry *Registry
	eol      string
	log      *slog.Logger
}

// New creates an engine.
func New(opts Options) *Engine {
	e := &Engine{
		registry: opts.Registry,
		eol:      opts.EOL,
		log:      opts.Logger,
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	if e.eol == "" {
		e.eol = "\n"
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e
}

// Registry returns the processor registry the engine resolves macros against.
func (e *Engine) Registry() *Registry { return e.registry }

// Render parses source with p and expands the result.
func (e *Engine) Render(p *macro.Parser, source string) (string, error) {
	return e.Expand(p.Parse(source).Nodes)
}

// Expand renders nodes in order and joins their outputs.
func (e *Engine) Expand(nodes []macro.Node) (string, error) {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		var out string
		var err error
		switch n.Type {
		case macro.NodeContext:
			out, err = e.expandText(n.Text)
		case macro.NodeMacro:
			out, err = e.expandMacro(n.Macro)
		default:
			err = fmt.Errorf("unexpected node type %q", n.Type)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, e.eol), nil
}

func (e *Engine) expandMacro(m *macro.MacroNode) (string, error) {
	proc, ok := e.registry.Lookup(m.Context, m.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s:%s", ErrUnknownMacro, m.Context, m.Name)
	}

	content, err := e.Expand(m.Items)
	if err != nil {
		return "", err
	}

	e.log.Debug("expanding block macro", "context", m.Context, "name", m.Name)
	out, err := proc.Process(&Call{
		Name:     m.Name,
		Context:  m.Context,
		Params:   m.Params,
		Defaults: proc.Params,
		Content:  content,
		Source:   rawSource(m.Items, e.eol),
	})
	if err != nil {
		return "", fmt.Errorf("macro %s:%s: %w", m.Context, m.Name, err)
	}
	return out, nil
}

func (e *Engine) expandText(t *macro.TextNode) (string, error) {
	renderer, ok := e.registry.Get(t.Context, t.Context)
	if !ok {
		renderer, ok = e.registry.Get(macro.DefaultContext, macro.DefaultContext)
	}
	if !ok {
		return "", fmt.Errorf("%w: no renderer for context %q", ErrUnknownMacro, t.Context)
	}

	out, err := renderer.Process(&Call{
		Name:     t.Context,
		Context:  t.Context,
		Params:   macro.Params{},
		Defaults: renderer.Params,
		Content:  t.Content,
		Source:   t.Content,
	})
	if err != nil {
		return "", fmt.Errorf("render context %s: %w", t.Context, err)
	}

	for _, holder := range t.Placeholders() {
		in := t.Inline[holder]
		expanded, err := e.expandInline(in)
		if err != nil {
			return "", err
		}
		out = replacePlaceholder(out, holder, expanded)
	}
	return out, nil
}

func (e *Engine) expandInline(in *macro.InlineMacro) (string, error) {
	proc, ok := e.registry.Lookup(in.Context, in.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s:%s", ErrUnknownMacro, in.Context, in.Name)
	}

	e.log.Debug("expanding inline macro", "context", in.Context, "name", in.Name)
	out, err := proc.Process(&Call{
		Name:     in.Name,
		Context:  in.Context,
		Params:   in.Params,
		Defaults: proc.Params,
		Content:  in.Content,
		Source:   in.Content,
		Inline:   true,
	})
	if err != nil {
		return "", fmt.Errorf("inline macro %s:%s: %w", in.Context, in.Name, err)
	}
	return out, nil
}

// replacePlaceholder puts an expansion back. A placeholder that the renderer
// wrapped into a paragraph of its own is replaced together with the <p> tags.
func replacePlaceholder(text, holder, expanded string) string {
	wrapped := "<p>" + holder + "</p>"
	if strings.Contains(text, wrapped) {
		return strings.ReplaceAll(text, wrapped, expanded)
	}
	return strings.ReplaceAll(text, holder, expanded)
}

// rawSource rebuilds the unrendered text of a block's children.
func rawSource(nodes []macro.Node, eol string) string {
	var parts []string
	for _, n := range nodes {
		switch n.Type {
		case macro.NodeContext:
			parts = append(parts, n.Text.Source)
		case macro.NodeMacro:
			parts = append(parts, n.Macro.Source)
			if len(n.Macro.Items) > 0 {
				parts = append(parts, rawSource(n.Macro.Items, eol))
			}
		}
	}
	return strings.Join(parts, eol)
}
