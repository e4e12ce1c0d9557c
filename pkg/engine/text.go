package engine

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// lineBreaks is the number of newlines placed around each block element.
var lineBreaks = map[string]int{
	"p": 2, "div": 2, "pre": 2, "blockquote": 2, "details": 2, "table": 2,
	"h1": 2, "h2": 2, "h3": 2, "h4": 2, "h5": 2, "h6": 2,
	"ul": 2, "ol": 2, "hr": 2,
	"li": 1, "tr": 1, "summary": 1,
}

// ToText strips rendered HTML down to its readable text. Whitespace collapses
// outside <pre>; block elements are separated by blank lines.
func ToText(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var tw textWriter
	tw.walk(doc, false)
	return strings.TrimSpace(tw.buf.String()), nil
}

type textWriter struct {
	buf    strings.Builder
	breaks int  // newlines owed before the next text
	space  bool // a space is owed before the next text
}

func (t *textWriter) walk(n *html.Node, pre bool) {
	switch n.Type {
	case html.TextNode:
		if pre {
			t.write(n.Data)
		} else {
			t.inline(n.Data)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "head", "script", "style":
			return
		case "br":
			t.lineBreak(1)
			return
		case "pre":
			pre = true
		}
	}

	breaks := 0
	if n.Type == html.ElementNode {
		breaks = lineBreaks[n.Data]
	}
	t.lineBreak(breaks)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.walk(c, pre)
	}
	t.lineBreak(breaks)
}

func (t *textWriter) inline(s string) {
	words := strings.Fields(s)
	if len(words) == 0 {
		if s != "" {
			t.space = true
		}
		return
	}
	if isSpace(s[0]) {
		t.space = true
	}
	t.write(strings.Join(words, " "))
	if isSpace(s[len(s)-1]) {
		t.space = true
	}
}

func (t *textWriter) write(s string) {
	switch {
	case t.buf.Len() == 0:
	case t.breaks > 0:
		t.buf.WriteString(strings.Repeat("\n", t.breaks))
	case t.space:
		t.buf.WriteByte(' ')
	}
	t.breaks, t.space = 0, false
	t.buf.WriteString(s)
}

func (t *textWriter) lineBreak(n int) {
	if n > t.breaks {
		t.breaks = n
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
