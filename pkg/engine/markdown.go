package engine

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/open-cli-collective/macroed/pkg/macro"
)

// MarkdownOptions configures the goldmark context renderer.
type MarkdownOptions struct {
	GFM         bool // tables, strikethrough, autolinks, task lists
	Breaks      bool // single newlines become <br>
	Typographer bool // smart quotes and dashes
	Unsafe      bool // pass raw HTML through
}

// DefaultMarkdownOptions are the settings used when nothing is configured.
func DefaultMarkdownOptions() MarkdownOptions {
	return MarkdownOptions{GFM: true, Breaks: true, Typographer: true}
}

// NewMarkdown builds a goldmark instance for opts.
func NewMarkdown(opts MarkdownOptions) goldmark.Markdown {
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}

	var htmlOpts []renderer.Option
	if opts.Breaks {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if opts.Unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(htmlOpts...),
	)
}

// MarkdownProcessor returns the context renderer for the default context.
// Placeholders are plain words, so they survive the conversion untouched.
func MarkdownProcessor(opts MarkdownOptions) Processor {
	md := NewMarkdown(opts)
	return Processor{
		Name:    macro.DefaultContext,
		Context: macro.DefaultContext,
		Params: map[string]any{
			"gfm":         opts.GFM,
			"breaks":      opts.Breaks,
			"typographer": opts.Typographer,
			"unsafe":      opts.Unsafe,
		},
		Process: func(call *Call) (string, error) {
			var buf bytes.Buffer
			if err := md.Convert([]byte(call.Content), &buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		},
	}
}
