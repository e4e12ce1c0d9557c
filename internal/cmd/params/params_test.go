package params

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

func newOptions(t *testing.T, output string) (*paramsOptions, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	return &paramsOptions{
		Globals: cmdutil.Globals{
			ConfigPath: filepath.Join(t.TempDir(), "config.yml"),
			Output:     output,
			NoColor:    true,
		},
		stdout: &stdout,
	}, &stdout
}

func TestRunParams(t *testing.T) {
	tests := []struct {
		name string
		list string
		want string
	}{
		{"empty", "", ""},
		{"flag", "collapsed", "collapsed\tflag\t\n"},
		{"quoted", `title="Hello, world"`, "title\tvalue\tHello, world\n"},
		{"sorted names", "b=2, a=1", "a\tvalue\t1\nb\tvalue\t2\n"},
		{"repeated", "t=x, t=y", "t\tvalue\tx\nt\tvalue\ty\n"},
		{"escapes", `q="say \"hi\""`, "q\tvalue\tsay \"hi\"\n"},
		{"empty quoted value", `e=""`, "e\tvalue\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, stdout := newOptions(t, "plain")
			require.NoError(t, runParams(tt.list, opts))
			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestRunParams_JSON(t *testing.T) {
	opts, stdout := newOptions(t, "json")

	require.NoError(t, runParams("a=1, f, t=x, t=y", opts))

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, map[string]any{"a": "1", "f": nil, "t": []any{"x", "y"}}, got)
}

func TestRunParams_Table(t *testing.T) {
	opts, stdout := newOptions(t, "")

	require.NoError(t, runParams("name=Ann", opts))
	assert.Equal(t, "NAME  KIND   VALUE\nname  value  Ann\n", stdout.String())
}

func TestRunParams_Errors(t *testing.T) {
	tests := []struct {
		name string
		list string
		err  error
	}{
		{"unterminated quote", `a="x`, macro.ErrUnterminatedQuote},
		{"trailing escape", `a=x\`, macro.ErrUnterminatedEscape},
		{"bad name", "1a", macro.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _ := newOptions(t, "plain")
			assert.ErrorIs(t, runParams(tt.list, opts), tt.err)
		})
	}
}
