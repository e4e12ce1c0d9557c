// Package macro parses macro-templated text into a document tree.
//
// A document mixes plain text with two kinds of directives. Block macros sit
// on their own line and own every following line that is indented deeper:
//
//	||info(title="Heads up")
//	    Body of the block.
//	||docs:section(id=intro)
//
// Inline macros can appear anywhere inside text:
//
//	Hello, {{user(field=name)}}! {{link(href="/x"):click here}}
//
// The parser does not expand anything. Text runs are returned with inline
// macros masked behind placeholders so the text can be rendered safely and
// the expansions put back afterwards.
package macro

import (
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"strings"
)

// DefaultContext is the context label in effect before any block macro declares one.
const DefaultContext = "default"

// blockPattern matches a block macro header line: ||[context:]name(params)
var blockPattern = regexp.MustCompile(`^[ \t]*\|\|(?:([\w-]+)[ \t]*:[ \t]*)?([\w-]+)[ \t]*\(([^()]*)\)[ \t]*$`)

// NativeEOL returns the line terminator of the host platform.
func NativeEOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Options configures a Parser. Zero fields take their defaults.
type Options struct {
	EOL            string       // line terminator, NativeEOL() when empty
	DefaultContext string       // DefaultContext when empty
	Placeholders   Placeholders // DefaultPlaceholders when nil
	Logger         *slog.Logger // discarded when nil
}

// Parser turns macro-templated text into a tree. It holds configuration only
// and is safe for concurrent use.
type Parser struct {
	eol          string
	context      string
	placeholders Placeholders
	log          *slog.Logger
}

// New creates a parser.
func New(opts Options) *Parser {
	p := &Parser{
		eol:          opts.EOL,
		context:      opts.DefaultContext,
		placeholders: opts.Placeholders,
		log:          opts.Logger,
	}
	if p.eol == "" {
		p.eol = NativeEOL()
	}
	if p.context == "" {
		p.context = DefaultContext
	}
	if p.placeholders == nil {
		p.placeholders = DefaultPlaceholders
	}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	return p
}

// EOL returns the configured line terminator.
func (p *Parser) EOL() string { return p.eol }

// Result is the output of Parse.
type Result struct {
	Nodes    []Node   `json:"nodes"`
	Warnings []string `json:"warnings,omitempty"` // macro candidates kept as text
}

// AddWarning logs a warning and stores it in the result.
func (r *Result) AddWarning(log *slog.Logger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Warn(msg)
}

// SplitLines splits s into physical lines on the configured terminator.
func (p *Parser) SplitLines(s string) []string {
	return strings.Split(s, p.eol)
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// leadingIndent counts the spaces and tabs that start line.
func leadingIndent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// unsetIndent marks a freshly opened block whose indentation is not known yet.
const unsetIndent = -1

// frame is one open block saved on the stack.
type frame struct {
	indent     int
	prevIndent int
	items      *[]Node
	context    string
}

// parseState is the stack machine driven line by line by Parse.
type parseState struct {
	p      *Parser
	result *Result

	indent     int     // minimum indentation of lines in the current block
	prevIndent int     // indentation of the header that opened the current block
	context    string  // context label for new nodes
	items      *[]Node // list new nodes are appended to
	stack      []frame
	pending    []string // text lines not yet flushed into a TextNode
}

// Parse builds the document tree of s. It never fails: malformed macros are
// kept as text and reported in Result.Warnings.
func (p *Parser) Parse(s string) *Result {
	result := &Result{}
	st := &parseState{
		p:       p,
		result:  result,
		context: p.context,
		items:   &result.Nodes,
	}

	for _, line := range p.SplitLines(s) {
		st.line(line)
	}
	st.flush()

	return result
}

func (st *parseState) line(line string) {
	// Blank lines are content, never structure.
	if IsBlank(line) {
		st.pending = append(st.pending, "")
		return
	}

	curr := leadingIndent(line)

	if st.indent == unsetIndent {
		if curr > st.prevIndent {
			st.indent = curr
		} else {
			// Nothing is indented under the header: force a close below.
			st.indent = st.prevIndent + 1
		}
	}

	for curr < st.indent {
		// A dedent landing between the header and the body closes exactly
		// one block and the line is text there, never a header.
		between := curr > st.prevIndent
		if !st.closeBlock() {
			break
		}
		if between {
			st.pending = append(st.pending, line[st.indent:])
			return
		}
	}

	if st.openBlock(line, curr) {
		return
	}

	st.pending = append(st.pending, line[st.indent:])
}

// openBlock opens a new block if line is a well-formed block macro header.
func (st *parseState) openBlock(line string, curr int) bool {
	m := blockPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	params, err := ParseParams(m[3])
	if err != nil {
		st.result.AddWarning(st.p.log, "block macro %q kept as text: %v", m[2], err)
		return false
	}

	st.flush()
	st.stack = append(st.stack, frame{
		indent:     st.indent,
		prevIndent: st.prevIndent,
		items:      st.items,
		context:    st.context,
	})

	node := &MacroNode{
		Context: st.context,
		Source:  line[curr:],
		Name:    m[2],
		Params:  params,
	}
	*st.items = append(*st.items, Node{Type: NodeMacro, Macro: node})
	st.items = &node.Items

	if m[1] != "" {
		st.context = m[1]
	}
	st.prevIndent = curr
	st.indent = unsetIndent

	return true
}

// closeBlock flushes pending text and restores the enclosing block.
func (st *parseState) closeBlock() bool {
	if len(st.stack) == 0 {
		return false
	}

	st.flush()

	top := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]

	st.indent = top.indent
	st.prevIndent = top.prevIndent
	st.items = top.items
	st.context = top.context

	return true
}

// flush turns pending lines into a TextNode with inline macros masked out.
func (st *parseState) flush() {
	if st.pending == nil {
		return
	}

	text := strings.Join(st.pending, st.p.eol)
	st.pending = nil

	*st.items = append(*st.items, Node{
		Type: NodeContext,
		Text: st.p.MarkOut(text, st.context),
	})
}
