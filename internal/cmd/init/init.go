// Package init provides the init command for macroed.
package init

import (
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/config"
)

// Markdown features offered by the form.
const (
	featureGFM         = "gfm"
	featureBreaks      = "breaks"
	featureTypographer = "typographer"
	featureUnsafe      = "unsafe"
)

// answers holds the form values before they become a Config.
type answers struct {
	eol            string
	defaultContext string
	outputFormat   string
	addr           string
	features       []string
}

func answersFrom(cfg *config.Config) *answers {
	a := &answers{
		eol:            cfg.EOL,
		defaultContext: cfg.DefaultContext,
		outputFormat:   cfg.OutputFormat,
		addr:           cfg.Addr,
	}
	if a.eol == "" {
		a.eol = config.EOLNative
	}
	if a.outputFormat == "" {
		a.outputFormat = "table"
	}
	if md := cfg.Markdown; md != nil {
		for _, f := range []struct {
			name string
			on   bool
		}{
			{featureGFM, md.GFM},
			{featureBreaks, md.Breaks},
			{featureTypographer, md.Typographer},
			{featureUnsafe, md.Unsafe},
		} {
			if f.on {
				a.features = append(a.features, f.name)
			}
		}
	}
	return a
}

func (a *answers) config() *config.Config {
	return &config.Config{
		EOL:            a.eol,
		DefaultContext: a.defaultContext,
		OutputFormat:   a.outputFormat,
		Addr:           a.addr,
		Markdown: &config.Markdown{
			GFM:         slices.Contains(a.features, featureGFM),
			Breaks:      slices.Contains(a.features, featureBreaks),
			Typographer: slices.Contains(a.features, featureTypographer),
			Unsafe:      slices.Contains(a.features, featureUnsafe),
		},
	}
}

func validateContext(s string) error {
	return (&config.Config{DefaultContext: s}).Validate()
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize macroed configuration",
		Long: `Create the macroed configuration file.

This command asks for the line terminator, the default context, the output
format, the serve address and the markdown features used to render text.
The configuration is saved to ~/.config/macroed/config.yml.`,
		Example: `  # Interactive setup
  macroed init

  # Write the defaults without prompting
  macroed init --defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.GlobalsFrom(cmd)
			return runInit(g.Path(), defaults)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Write the default configuration without prompting")

	return cmd
}

func runInit(configPath string, defaults bool) error {
	if defaults {
		return save(config.Default(), configPath)
	}

	// Check if config already exists
	current := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
		if existing, err := config.Load(configPath); err == nil {
			current = existing
		}
	}

	a := answersFrom(current)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Line endings").
				Description("Terminator used to split documents and join output").
				Options(
					huh.NewOption("Native", config.EOLNative),
					huh.NewOption("LF (\\n)", config.EOLLF),
					huh.NewOption("CRLF (\\r\\n)", config.EOLCRLF),
					huh.NewOption("CR (\\r)", config.EOLCR),
				).
				Value(&a.eol),

			huh.NewInput().
				Title("Default context").
				Description("Context of text outside any ||context:name() block").
				Placeholder("default").
				Value(&a.defaultContext).
				Validate(validateContext),

			huh.NewSelect[string]().
				Title("Output format").
				Options(
					huh.NewOption("Table", "table"),
					huh.NewOption("JSON", "json"),
					huh.NewOption("Plain", "plain"),
				).
				Value(&a.outputFormat),

			huh.NewInput().
				Title("Serve address").
				Description("Listen address for macroed serve").
				Placeholder(config.DefaultAddr).
				Value(&a.addr),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Markdown features").
				Options(
					huh.NewOption("GitHub flavored markdown", featureGFM),
					huh.NewOption("Line breaks become <br>", featureBreaks),
					huh.NewOption("Smart punctuation", featureTypographer),
					huh.NewOption("Allow raw HTML", featureUnsafe),
				).
				Value(&a.features),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	return save(a.config(), configPath)
}

func save(cfg *config.Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("Configuration saved to %s\n", configPath)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  macroed parse <file>")
	fmt.Println("  macroed render <file>")

	return nil
}
