// Package params provides the params command.
package params

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/view"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

type paramsOptions struct {
	cmdutil.Globals
	stdout io.Writer
}

// NewCmdParams creates the params command.
func NewCmdParams() *cobra.Command {
	opts := &paramsOptions{}

	cmd := &cobra.Command{
		Use:   "params <list>",
		Short: "Decode a macro parameter list",
		Long: `Decode the text between a macro's parentheses.

Entries are separated by commas. An entry is a bare name (a flag), name=value,
or name="quoted value" where backslash escapes the next character. A name
given more than once keeps every value in order.`,
		Example: `  macroed params 'title="Hello, world", collapsed'
  macroed params 'tag=a, tag=b' -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			opts.stdout = cmd.OutOrStdout()
			return runParams(args[0], opts)
		},
	}

	return cmd
}

func runParams(list string, opts *paramsOptions) error {
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	params, err := macro.ParseParams(list)
	if err != nil {
		return err
	}

	renderer, err := opts.Renderer(cfg, opts.stdout)
	if err != nil {
		return err
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(params)
	}

	var rows [][]string
	for _, name := range params.Names() {
		for _, v := range params[name] {
			value, kind := v.String, "value"
			if !v.Valid {
				value, kind = "", "flag"
			} else if strings.ContainsAny(value, "\r\n\t") {
				value = view.OneLine(value)
			}
			rows = append(rows, []string{name, kind, value})
		}
	}
	renderer.RenderTable([]string{"NAME", "KIND", "VALUE"}, rows)
	return nil
}
