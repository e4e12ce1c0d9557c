// Package input reads the document a command operates on.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoInput is returned when no file is named and stdin is a terminal.
var ErrNoInput = errors.New("no input: pass a file, '-' for stdin, or pipe a document")

// Source describes where a document comes from.
type Source struct {
	Path  string    // file path; "" or "-" means stdin
	Stdin io.Reader // defaults to os.Stdin
	// Interactive reports whether stdin is a terminal. Defaults to
	// term.IsTerminal on os.Stdin.
	Interactive func() bool
}

// Read returns the document named by s.
func Read(s Source) (string, error) {
	if s.Path != "" && s.Path != "-" {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	stdin := s.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	interactive := s.Interactive
	if interactive == nil {
		interactive = isTerminal
	}
	if s.Path == "" && interactive() {
		return "", ErrNoInput
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
