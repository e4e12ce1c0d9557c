// Package repl provides an interactive shell for trying out macros.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/cmd/render"
	"github.com/open-cli-collective/macroed/internal/view"
	"github.com/open-cli-collective/macroed/pkg/engine"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

const (
	promptMain  = "macroed> "
	promptCont  = "     ... "
	historyFile = ".macroed_history"
)

const help = `Type a document; a blank line renders it.

  :to html|markdown|text   change the output target
  :params <list>           decode a parameter list
  :macros                  list registered macros
  :help                    show this help
  :quit                    exit`

type replOptions struct {
	cmdutil.Globals
	to     string
	stdout io.Writer
	stderr io.Writer
}

// NewCmdRepl creates the repl command.
func NewCmdRepl() *cobra.Command {
	opts := &replOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Render macros interactively",
		Long: `Start an interactive shell. Lines are collected until a blank line,
then parsed and rendered like 'macroed render' would.

` + help,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runRepl(opts)
		},
	}

	cmd.Flags().StringVar(&opts.to, "to", render.TargetHTML, "Output target: html, markdown, text")

	return cmd
}

func runRepl(opts *replOptions) error {
	if err := render.ValidateTarget(opts.to); err != nil {
		return err
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	log := opts.Logger(opts.stderr)
	p, err := cmdutil.NewParser(cfg, log)
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	s := newSession(p, cmdutil.NewLocalEngine(cfg, p, log), opts.to, opts.NoColor, opts.stdout, opts.stderr)
	s.history = ln.AppendHistory

	fmt.Fprintln(opts.stdout, "macroed repl. Type :help for commands.")
	err = s.run(ln)

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return err
}

// lineReader is satisfied by *liner.State.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

type session struct {
	parser  *macro.Parser
	engine  *engine.Engine
	to      string
	out     io.Writer
	msg     *view.Renderer
	history func(string)
}

func newSession(p *macro.Parser, e *engine.Engine, to string, noColor bool, stdout, stderr io.Writer) *session {
	msg := view.NewRenderer(view.FormatPlain, noColor)
	msg.SetWriter(stderr)
	return &session{
		parser:  p,
		engine:  e,
		to:      to,
		out:     stdout,
		msg:     msg,
		history: func(string) {},
	}
}

// run reads until EOF or :quit. Ctrl-C drops the pending lines.
func (s *session) run(r lineReader) error {
	var lines []string
	for {
		prompt := promptMain
		if len(lines) > 0 {
			prompt = promptCont
		}

		line, err := r.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			lines = nil
			continue
		case errors.Is(err, io.EOF):
			s.submit(lines)
			return nil
		case err != nil:
			return err
		}

		if len(lines) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if s.command(strings.TrimSpace(line)) {
				return nil
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			s.submit(lines)
			lines = nil
			continue
		}
		lines = append(lines, line)
	}
}

func (s *session) submit(lines []string) {
	if len(lines) == 0 {
		return
	}
	s.history(strings.Join(lines, " "))
	s.render(strings.Join(lines, s.parser.EOL()))
}

func (s *session) render(doc string) {
	result := s.parser.Parse(doc)
	for _, w := range result.Warnings {
		s.msg.Warning(w)
	}

	out, err := s.engine.Expand(result.Nodes)
	if err == nil {
		out, err = render.Convert(out, s.to)
	}
	if err != nil {
		s.msg.Error(err.Error())
		return
	}
	fmt.Fprintln(s.out, strings.TrimRight(out, "\r\n"))
}

// command runs a :command and reports whether the session should end.
func (s *session) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(s.out, help)
	case ":to":
		if err := render.ValidateTarget(arg); err != nil {
			s.msg.Error(err.Error())
			return false
		}
		s.to = arg
	case ":params":
		params, err := macro.ParseParams(arg)
		if err != nil {
			s.msg.Error(err.Error())
			return false
		}
		fmt.Fprintln(s.out, macro.FormatParams(params))
	case ":macros":
		fmt.Fprintln(s.out, strings.Join(s.engine.Registry().Names(), "\n"))
	default:
		s.msg.Error(fmt.Sprintf("unknown command %q, type :help", name))
	}
	return false
}
