package parse

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newOptions(t *testing.T, output, file string) (*parseOptions, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return &parseOptions{
		Globals: cmdutil.Globals{
			ConfigPath: filepath.Join(t.TempDir(), "config.yml"),
			Output:     output,
			NoColor:    true,
			EOL:        "lf",
		},
		file:   file,
		stdout: &stdout,
		stderr: &stderr,
	}, &stdout, &stderr
}

const doc = "intro\n||docs:greet(who=\"Ann\", loud)\n  Hello {{b(x=1):bold}}\nbye"

func TestRunParse_Table(t *testing.T) {
	opts, stdout, stderr := newOptions(t, "", writeDoc(t, doc))

	require.NoError(t, runParse(opts))

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "NODE"))
	assert.True(t, strings.HasPrefix(lines[1], "text"))
	assert.Contains(t, lines[2], "||greet")
	assert.Contains(t, lines[2], `loud, who="Ann"`)
	assert.True(t, strings.HasPrefix(lines[3], "  text"))
	assert.Contains(t, lines[3], "docs")
	assert.True(t, strings.HasPrefix(lines[4], "    {{b}}"))
	assert.Contains(t, lines[4], `x="1"`)
	assert.Contains(t, lines[4], "bold")
	assert.True(t, strings.HasPrefix(lines[5], "text"))
	assert.Empty(t, stderr.String())
}

func TestRunParse_Plain(t *testing.T) {
	opts, stdout, _ := newOptions(t, "plain", writeDoc(t, "||note()\n  hi"))

	require.NoError(t, runParse(opts))
	assert.Equal(t, "||note\tdefault\t\t\n  text\tdefault\t\thi\n", stdout.String())
}

func TestRunParse_JSON(t *testing.T) {
	opts, stdout, _ := newOptions(t, "json", writeDoc(t, doc))

	require.NoError(t, runParse(opts))

	var result struct {
		Nodes []map[string]any `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	require.Len(t, result.Nodes, 3)
	assert.Equal(t, "context", result.Nodes[0]["type"])
	assert.Equal(t, "macro", result.Nodes[1]["type"])
	assert.Equal(t, "docs", result.Nodes[1]["context"])
	assert.Equal(t, map[string]any{"who": "Ann", "loud": nil}, result.Nodes[1]["params"])
}

func TestRunParse_Stdin(t *testing.T) {
	opts, stdout, _ := newOptions(t, "plain", "-")
	opts.stdin = strings.NewReader("just text")

	require.NoError(t, runParse(opts))
	assert.Equal(t, "text\tdefault\t\tjust text\n", stdout.String())
}

func TestRunParse_Warnings(t *testing.T) {
	opts, stdout, stderr := newOptions(t, "plain", writeDoc(t, `||x(a="open)`))

	require.NoError(t, runParse(opts))
	assert.Equal(t, "text\tdefault\t\t||x(a=\"open)\n", stdout.String())
	assert.Contains(t, stderr.String(), "kept as text")
}

func TestRunParse_TruncatesContent(t *testing.T) {
	long := strings.Repeat("a", 100)

	opts, stdout, _ := newOptions(t, "plain", writeDoc(t, long))
	require.NoError(t, runParse(opts))
	assert.Contains(t, stdout.String(), strings.Repeat("a", contentWidth-3)+"...")

	opts, stdout, _ = newOptions(t, "plain", writeDoc(t, long))
	opts.full = true
	require.NoError(t, runParse(opts))
	assert.Contains(t, stdout.String(), long)
}

func TestRunParse_Errors(t *testing.T) {
	opts, _, _ := newOptions(t, "xml", writeDoc(t, "x"))
	assert.Error(t, runParse(opts))

	opts, _, _ = newOptions(t, "", filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, runParse(opts))

	opts, _, _ = newOptions(t, "", writeDoc(t, "x"))
	opts.EOL = "bogus"
	assert.Error(t, runParse(opts))
}
