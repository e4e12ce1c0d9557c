// Package parse provides the parse command.
package parse

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/input"
	"github.com/open-cli-collective/macroed/internal/view"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

const contentWidth = 60

type parseOptions struct {
	cmdutil.Globals
	file   string
	full   bool
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCmdParse creates the parse command.
func NewCmdParse() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the macro tree of a document",
		Long: `Parse a document and print its macro tree.

Block macros (||name(params) on a line of their own) open a block that
holds every following line indented deeper. Inline macros
({{name(params):content}}) are listed under the text run they appear in.

Reads stdin when no file is given.`,
		Example: `  # Outline of a document
  macroed parse README.md

  # Full tree as JSON
  macroed parse README.md -o json

  # From stdin
  cat doc.md | macroed parse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) == 1 {
				opts.file = args[0]
			}
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runParse(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.full, "full", false, "Do not truncate text content in table output")

	return cmd
}

func runParse(opts *parseOptions) error {
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	doc, err := input.Read(input.Source{Path: opts.file, Stdin: opts.stdin})
	if err != nil {
		return err
	}

	p, err := cmdutil.NewParser(cfg, opts.Logger(opts.stderr))
	if err != nil {
		return err
	}
	result := p.Parse(doc)

	renderer, err := opts.Renderer(cfg, opts.stdout)
	if err != nil {
		return err
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(result)
	}

	renderer.RenderTable([]string{"NODE", "CONTEXT", "PARAMS", "CONTENT"}, treeRows(result, opts.full))

	if len(result.Warnings) > 0 {
		warn := view.NewRenderer(view.FormatPlain, opts.NoColor)
		warn.SetWriter(opts.stderr)
		for _, w := range result.Warnings {
			warn.Warning(w)
		}
	}
	return nil
}

// treeRows flattens the tree into table rows, indenting by depth.
func treeRows(result *macro.Result, full bool) [][]string {
	var rows [][]string
	cell := func(s string) string {
		s = view.OneLine(s)
		if full {
			return s
		}
		return view.Truncate(s, contentWidth)
	}

	macro.Walk(result.Nodes, func(n macro.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		switch n.Type {
		case macro.NodeMacro:
			rows = append(rows, []string{
				indent + "||" + n.Macro.Name,
				n.Macro.Context,
				macro.FormatParams(n.Macro.Params),
				"",
			})
		case macro.NodeContext:
			rows = append(rows, []string{indent + "text", n.Text.Context, "", cell(n.Text.Content)})
			for _, holder := range n.Text.Placeholders() {
				in := n.Text.Inline[holder]
				rows = append(rows, []string{
					indent + "  {{" + in.Name + "}}",
					in.Context,
					macro.FormatParams(in.Params),
					cell(in.Content),
				})
			}
		}
		return true
	})
	return rows
}
