package configcmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/config"
)

// NewCmdCheck creates the config check command.
func NewCmdCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration",
		Long:  `Load the configuration with environment overrides and report whether every value is usable.`,
		Example: `  # Check config
  macroed config check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.GlobalsFrom(cmd)
			return runCheck(g.Path(), g.NoColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runCheck(configPath string, noColor bool, w io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	red := color.New(color.FgRed)
	if err := cfg.Validate(); err != nil {
		_, _ = red.Fprintf(w, "✗ %v\n", err)
		return fmt.Errorf("configuration check failed: %w", err)
	}

	eol, _ := config.EOLToken(cfg.EOL)
	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(w, "✓ Configuration is valid (eol=%q, context=%s)\n", eol, cfg.DefaultContext)
	return nil
}
