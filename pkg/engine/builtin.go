package engine

import (
	"errors"
	"os"
	"strings"

	"github.com/yuin/goldmark/util"
)

// PanelNames are the block macros rendered as titled panels.
var PanelNames = []string{"info", "note", "tip", "warning"}

// RegisterBuiltins adds the built-in processors to r.
func RegisterBuiltins(r *Registry) {
	for _, name := range PanelNames {
		r.MustRegister(Processor{
			Name:    name,
			Params:  map[string]any{"class": "macro-panel macro-panel-" + name},
			Process: panel,
		})
	}
	r.MustRegister(Processor{
		Name:    "expand",
		Params:  map[string]any{"title": "Click to expand"},
		Process: expand,
	})
	r.MustRegister(Processor{Name: "code", Process: code})
	r.MustRegister(Processor{Name: "raw", Process: raw})
	r.MustRegister(Processor{Name: "link", Process: link})
}

// RegisterEnv adds the env inline processor. It reads the process
// environment, so only register it where the document author owns the process.
func RegisterEnv(r *Registry) {
	r.MustRegister(Processor{Name: "env", Process: env})
}

// DefaultRegistry returns a registry with the markdown context renderer and
// every built-in processor.
func DefaultRegistry(md MarkdownOptions) *Registry {
	r := NewRegistry()
	r.MustRegister(MarkdownProcessor(md))
	RegisterBuiltins(r)
	return r
}

func escape(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

func defaultString(defaults map[string]any, key string) string {
	if s, ok := defaults[key].(string); ok {
		return s
	}
	return ""
}

// panel renders ||info(title="...") style blocks.
func panel(call *Call) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<div class="`)
	sb.WriteString(escape(defaultString(call.Defaults, "class")))
	sb.WriteString(`">`)
	if title, ok := call.Params.Get("title"); ok {
		sb.WriteString(`<p class="macro-panel-title">`)
		sb.WriteString(escape(title))
		sb.WriteString(`</p>`)
	}
	sb.WriteString(call.Content)
	sb.WriteString(`</div>`)
	return sb.String(), nil
}

func expand(call *Call) (string, error) {
	title := call.Params.GetOr("title", defaultString(call.Defaults, "title"))

	var sb strings.Builder
	sb.WriteString(`<details class="macro-expand"><summary>`)
	sb.WriteString(escape(title))
	sb.WriteString(`</summary>`)
	sb.WriteString(call.Content)
	sb.WriteString(`</details>`)
	return sb.String(), nil
}

// code shows the raw child text, so markdown inside stays literal.
func code(call *Call) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<pre><code`)
	if lang, ok := call.Params.Get("lang"); ok {
		sb.WriteString(` class="language-`)
		sb.WriteString(escape(lang))
		sb.WriteString(`"`)
	}
	sb.WriteString(`>`)
	sb.WriteString(escape(call.Source))
	sb.WriteString(`</code></pre>`)
	return sb.String(), nil
}

func raw(call *Call) (string, error) {
	return call.Source, nil
}

func link(call *Call) (string, error) {
	href, ok := call.Params.Get("href")
	if !ok || href == "" {
		return "", errors.New("href is required")
	}

	text := call.Content
	if text == "" {
		text = href
	}
	return `<a href="` + escape(href) + `">` + escape(text) + `</a>`, nil
}

// env inserts an environment variable: {{env(name=HOME, default="~")}}.
func env(call *Call) (string, error) {
	name, ok := call.Params.Get("name")
	if !ok || name == "" {
		return "", errors.New("name is required")
	}
	if v, ok := os.LookupEnv(name); ok {
		return escape(v), nil
	}
	return escape(call.Params.GetOr("default", "")), nil
}
