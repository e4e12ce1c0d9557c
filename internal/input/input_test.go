package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notTerminal() bool { return false }
func terminal() bool    { return true }

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("||greet()\n  hi"), 0644))

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"file", Source{Path: path, Stdin: strings.NewReader("ignored"), Interactive: terminal}, "||greet()\n  hi"},
		{"piped stdin", Source{Stdin: strings.NewReader("from pipe"), Interactive: notTerminal}, "from pipe"},
		{"dash reads a terminal too", Source{Path: "-", Stdin: strings.NewReader("typed"), Interactive: terminal}, "typed"},
		{"empty stdin", Source{Stdin: strings.NewReader(""), Interactive: notTerminal}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(Source{Stdin: strings.NewReader("x"), Interactive: terminal})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Read(Source{Path: filepath.Join(t.TempDir(), "missing.md")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read file")
}
