// Package render provides the render command.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/input"
	"github.com/open-cli-collective/macroed/internal/view"
	"github.com/open-cli-collective/macroed/pkg/engine"
)

// Output targets.
const (
	TargetHTML     = "html"
	TargetMarkdown = "markdown"
	TargetText     = "text"
)

type renderOptions struct {
	cmdutil.Globals
	file   string
	to     string
	out    string
	list   bool
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Expand macros and render a document",
		Long: `Parse a document, expand every macro and print the result.

Text is rendered as markdown. Built-in block macros: info, note, tip,
warning (panels, optional title), expand (collapsible, optional title),
code (lang) and raw. Built-in inline macros: raw, link (href) and
env (name, default).

Reads stdin when no file is given.`,
		Example: `  # Render to HTML
  macroed render doc.md

  # Render and convert back to markdown
  macroed render doc.md --to markdown

  # Plain text only
  macroed render doc.md --to text

  # Write to a file
  macroed render doc.md --out doc.html

  # List available macros
  macroed render --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) == 1 {
				opts.file = args[0]
			}
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runRender(opts)
		},
	}

	cmd.Flags().StringVar(&opts.to, "to", TargetHTML, "Output target: html, markdown, text")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List the registered macros and exit")

	return cmd
}

func runRender(opts *renderOptions) error {
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}

	if err := ValidateTarget(opts.to); err != nil {
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
	eng := cmdutil.NewLocalEngine(cfg, p, log)

	if opts.list {
		renderer, err := opts.Renderer(cfg, opts.stdout)
		if err != nil {
			return err
		}
		var rows [][]string
		for _, name := range eng.Registry().Names() {
			rows = append(rows, []string{name})
		}
		renderer.RenderTable([]string{"MACRO"}, rows)
		return nil
	}

	doc, err := input.Read(input.Source{Path: opts.file, Stdin: opts.stdin})
	if err != nil {
		return err
	}

	result := p.Parse(doc)
	out, err := eng.Expand(result.Nodes)
	if err != nil {
		return err
	}

	out, err = Convert(out, opts.to)
	if err != nil {
		return err
	}

	if len(result.Warnings) > 0 {
		warn := view.NewRenderer(view.FormatPlain, opts.NoColor)
		warn.SetWriter(opts.stderr)
		for _, w := range result.Warnings {
			warn.Warning(w)
		}
	}

	if opts.out != "" {
		if err := os.WriteFile(opts.out, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	_, err = io.WriteString(opts.stdout, out)
	return err
}

// ValidateTarget checks a --to value.
func ValidateTarget(to string) error {
	switch to {
	case TargetHTML, TargetMarkdown, TargetText:
		return nil
	}
	return fmt.Errorf("invalid --to %q: must be html, markdown or text", to)
}

// Convert turns expanded HTML into the requested target.
func Convert(out, to string) (string, error) {
	var err error
	switch to {
	case TargetMarkdown:
		out, err = engine.ToMarkdown(out)
	case TargetText:
		out, err = engine.ToText(out)
	}
	if err != nil {
		return "", fmt.Errorf("failed to convert to %s: %w", to, err)
	}
	return out, nil
}
