package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current macroed configuration and where each value comes from.`,
		Example: `  # Show current config
  macroed config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.GlobalsFrom(cmd)
			return runShow(g.Path(), g.NoColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runShow(configPath string, noColor bool, w io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)

	// Load full config with env overrides
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value string, fromFile func(*config.Config) string, envVar string) {
		_, _ = bold.Fprintf(w, "%-18s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(w, "-")
			return
		}
		fmt.Fprint(w, value)

		source := "default"
		switch {
		case envVar != "" && os.Getenv(envVar) != "":
			source = envVar
		case fileErr == nil && fromFile != nil && fromFile(fileCfg) == value:
			source = "config"
		}
		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	printField("EOL", cfg.EOL, func(c *config.Config) string { return c.EOL }, "MACROED_EOL")
	printField("Default context", cfg.DefaultContext, func(c *config.Config) string { return c.DefaultContext }, "MACROED_DEFAULT_CONTEXT")
	printField("Placeholder", cfg.PlaceholderPrefix, func(c *config.Config) string { return c.PlaceholderPrefix }, "")
	printField("Output format", cfg.OutputFormat, func(c *config.Config) string { return c.OutputFormat }, "MACROED_OUTPUT_FORMAT")
	printField("Serve address", cfg.Addr, func(c *config.Config) string { return c.Addr }, "MACROED_ADDR")

	md := cfg.MarkdownOptions()
	printField("Markdown gfm", strconv.FormatBool(md.GFM), nil, "")
	printField("Markdown breaks", strconv.FormatBool(md.Breaks), nil, "")
	printField("Markdown smart", strconv.FormatBool(md.Typographer), nil, "")
	printField("Markdown unsafe", strconv.FormatBool(md.Unsafe), nil, "")

	fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	return nil
}
