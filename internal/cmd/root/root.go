// Package root provides the root command for the macroed CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/completion"
	"github.com/open-cli-collective/macroed/internal/cmd/configcmd"
	initcmd "github.com/open-cli-collective/macroed/internal/cmd/init"
	"github.com/open-cli-collective/macroed/internal/cmd/params"
	"github.com/open-cli-collective/macroed/internal/cmd/parse"
	"github.com/open-cli-collective/macroed/internal/cmd/render"
	"github.com/open-cli-collective/macroed/internal/cmd/repl"
	"github.com/open-cli-collective/macroed/internal/cmd/serve"
	"github.com/open-cli-collective/macroed/internal/config"
	"github.com/open-cli-collective/macroed/internal/version"
	"github.com/open-cli-collective/macroed/internal/view"
)

// NewCmdRoot creates the root command for macroed.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "macroed",
		Short: "Parse and render documents with indentation-scoped macros",
		Long: `macroed parses text documents that embed macros and renders them.

A block macro sits on a line of its own and owns every following line
indented deeper than it:

  ||note(title="Heads up")
    This paragraph is inside the note.

An inline macro sits anywhere in a line:

  Read the {{link(href="https://go.dev"):Go docs}}.

Get started by running: macroed init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/macroed/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, plain (default from config, then table)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().String("eol", "", "line endings: lf, crlf, cr, native (default from config)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log parser and renderer details to stderr")

	_ = cmd.RegisterFlagCompletionFunc("output", completion.FixedValues(view.ValidFormats()...))
	_ = cmd.RegisterFlagCompletionFunc("eol", completion.FixedValues(config.EOLLF, config.EOLCRLF, config.EOLCR, config.EOLNative))

	// Set version template
	cmd.SetVersionTemplate("macroed version " + version.String() + "\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(parse.NewCmdParse())
	cmd.AddCommand(params.NewCmdParams())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newReplCmd())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}

var targets = completion.FixedValues(render.TargetHTML, render.TargetMarkdown, render.TargetText)

func newRenderCmd() *cobra.Command {
	cmd := render.NewCmdRender()
	_ = cmd.RegisterFlagCompletionFunc("to", targets)
	return cmd
}

func newReplCmd() *cobra.Command {
	cmd := repl.NewCmdRepl()
	_ = cmd.RegisterFlagCompletionFunc("to", targets)
	return cmd
}
