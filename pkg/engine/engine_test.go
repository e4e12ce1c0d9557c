package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/macroed/pkg/macro"
)

func newTestParser() *macro.Parser {
	return macro.New(macro.Options{
		EOL:          "\n",
		Placeholders: macro.NewCounter("PH", "END"),
	})
}

// bracketRegistry renders text as [text] so outputs are easy to predict.
func bracketRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(Processor{
		Name: macro.DefaultContext,
		Process: func(call *Call) (string, error) {
			return "[" + call.Content + "]", nil
		},
	}))
	require.NoError(t, r.Register(Processor{
		Name: "who",
		Process: func(call *Call) (string, error) {
			return call.Params.GetOr("name", "Bob"), nil
		},
	}))
	require.NoError(t, r.Register(Processor{
		Name:   "box",
		Params: map[string]any{"tag": "box"},
		Process: func(call *Call) (string, error) {
			tag := call.Defaults["tag"].(string)
			return "<" + tag + ">" + call.Content + "</" + tag + ">", nil
		},
	}))
	return r
}

func TestExpand_TextWithInline(t *testing.T) {
	e := New(Options{Registry: bracketRegistry(t)})

	out, err := e.Render(newTestParser(), "Hi {{who()}} and {{who(name=Ann)}}!")
	require.NoError(t, err)
	assert.Equal(t, "[Hi Bob and Ann!]", out)
}

func TestExpand_BlockMacro(t *testing.T) {
	e := New(Options{Registry: bracketRegistry(t)})

	out, err := e.Render(newTestParser(), "before\n||box()\n  inner {{who()}}\nafter")
	require.NoError(t, err)
	assert.Equal(t, "[before]\n<box>[inner Bob]</box>\n[after]", out)
}

func TestExpand_NestedBlocksAndRawSource(t *testing.T) {
	r := bracketRegistry(t)
	var sources []string
	require.NoError(t, r.Register(Processor{
		Name: "spy",
		Process: func(call *Call) (string, error) {
			sources = append(sources, call.Source)
			return call.Content, nil
		},
	}))
	e := New(Options{Registry: r})

	out, err := e.Render(newTestParser(), "||spy()\n  a {{who()}}\n  ||box()\n    b")
	require.NoError(t, err)
	assert.Equal(t, "[a Bob]\n<box>[b]</box>", out)
	require.Len(t, sources, 1)
	assert.Equal(t, "a {{who()}}\n||box()\nb", sources[0])
}

func TestExpand_ContextFallsBackToDefaultRenderer(t *testing.T) {
	e := New(Options{Registry: bracketRegistry(t)})

	out, err := e.Render(newTestParser(), "||docs:box()\n  text")
	require.NoError(t, err)
	assert.Equal(t, "<box>[text]</box>", out)
}

func TestExpand_ContextNamedLikeMacroUsesDefaultRenderer(t *testing.T) {
	e := New(Options{Registry: bracketRegistry(t)})

	out, err := e.Render(newTestParser(), "||box:who()\n  text")
	require.NoError(t, err)
	assert.Equal(t, "Bob", out)

	out, err = e.Render(newTestParser(), "||box:box()\n  text")
	require.NoError(t, err)
	assert.Equal(t, "<box>[text]</box>", out)
}

func TestExpand_ContextRenderer(t *testing.T) {
	r := bracketRegistry(t)
	require.NoError(t, r.Register(Processor{
		Name:    "docs",
		Context: "docs",
		Process: func(call *Call) (string, error) {
			return strings.ToUpper(call.Content), nil
		},
	}))
	e := New(Options{Registry: r})

	out, err := e.Render(newTestParser(), "||docs:box()\n  text")
	require.NoError(t, err)
	assert.Equal(t, "<box>TEXT</box>", out)
}

func TestExpand_UnknownMacro(t *testing.T) {
	e := New(Options{Registry: bracketRegistry(t)})

	tests := []struct {
		name  string
		input string
	}{
		{"block", "||nope()\n  x"},
		{"inline", "a {{nope()}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(newTestParser(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownMacro)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestExpand_NoRenderer(t *testing.T) {
	e := New(Options{Registry: NewRegistry()})

	_, err := e.Render(newTestParser(), "plain")
	assert.ErrorIs(t, err, ErrUnknownMacro)
}

func TestExpand_ProcessorError(t *testing.T) {
	r := bracketRegistry(t)
	boom := errors.New("boom")
	require.NoError(t, r.Register(Processor{
		Name:    "fail",
		Process: func(*Call) (string, error) { return "", boom },
	}))
	e := New(Options{Registry: r})

	_, err := e.Render(newTestParser(), "||fail()\n  x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "default:fail")
}

func TestReplacePlaceholder(t *testing.T) {
	assert.Equal(t, "<div>x</div>\n", replacePlaceholder("<p>PH0END</p>\n", "PH0END", "<div>x</div>"))
	assert.Equal(t, "<p>a X b</p>", replacePlaceholder("<p>a PH0END b</p>", "PH0END", "X"))
	assert.Equal(t, "none", replacePlaceholder("none", "PH0END", "X"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Processor{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidProcessor)

	noop := func(*Call) (string, error) { return "", nil }
	require.NoError(t, r.Register(Processor{Name: "a", Process: noop}))
	require.NoError(t, r.Register(Processor{Name: "a", Context: "docs", Process: noop}))
	require.NoError(t, r.Register(Processor{Name: "b", Process: noop}))

	p, ok := r.Lookup("docs", "a")
	require.True(t, ok)
	assert.Equal(t, "docs", p.Context)

	p, ok = r.Lookup("docs", "b")
	require.True(t, ok, "falls back to the default context")
	assert.Equal(t, macro.DefaultContext, p.Context)

	_, ok = r.Lookup("docs", "c")
	assert.False(t, ok)

	_, ok = r.Get("docs", "b")
	assert.False(t, ok, "Get does not fall back")

	assert.Equal(t, []string{"default:a", "default:b", "docs:a"}, r.Names())
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry().MustRegister(Processor{})
	})
}
