// Package cmdutil holds the setup shared by macroed commands.
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/config"
	"github.com/open-cli-collective/macroed/internal/view"
	"github.com/open-cli-collective/macroed/pkg/engine"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

// Globals are the persistent flags defined on the root command.
type Globals struct {
	ConfigPath string
	Output     string
	NoColor    bool
	EOL        string
	Verbose    bool
}

// GlobalsFrom reads the persistent flags of cmd.
func GlobalsFrom(cmd *cobra.Command) Globals {
	var g Globals
	g.ConfigPath, _ = cmd.Flags().GetString("config")
	g.Output, _ = cmd.Flags().GetString("output")
	g.NoColor, _ = cmd.Flags().GetBool("no-color")
	g.EOL, _ = cmd.Flags().GetString("eol")
	g.Verbose, _ = cmd.Flags().GetBool("verbose")
	return g
}

// Path returns the config file in use.
func (g Globals) Path() string {
	if g.ConfigPath != "" {
		return g.ConfigPath
	}
	return config.DefaultConfigPath()
}

// LoadConfig loads the config file, applies environment and flag overrides
// and validates the result.
func (g Globals) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(g.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.EOL != "" {
		cfg.EOL = g.EOL
	}
	if g.Output != "" {
		cfg.OutputFormat = g.Output
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'macroed init' to reconfigure)", err)
	}
	return cfg, nil
}

// Renderer creates the output renderer for cfg.
func (g Globals) Renderer(cfg *config.Config, w io.Writer) (*view.Renderer, error) {
	if err := view.ValidateFormat(cfg.OutputFormat); err != nil {
		return nil, err
	}
	r := view.NewRenderer(view.Format(cfg.OutputFormat), g.NoColor)
	r.SetWriter(w)
	return r, nil
}

// Logger returns a text logger on w. Only errors are shown unless verbose.
func (g Globals) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelError
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewParser builds a parser from cfg.
func NewParser(cfg *config.Config, log *slog.Logger) (*macro.Parser, error) {
	opts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = log
	return macro.New(opts), nil
}

// NewEngine builds an engine with the built-in processors, sharing the
// parser's line terminator. It is safe to expose to remote documents.
func NewEngine(cfg *config.Config, p *macro.Parser, log *slog.Logger) *engine.Engine {
	return newEngine(engine.DefaultRegistry(cfg.MarkdownOptions()), p, log)
}

// NewLocalEngine is NewEngine plus processors that read the local
// environment. Use it only for documents the user runs themselves.
func NewLocalEngine(cfg *config.Config, p *macro.Parser, log *slog.Logger) *engine.Engine {
	r := engine.DefaultRegistry(cfg.MarkdownOptions())
	engine.RegisterEnv(r)
	return newEngine(r, p, log)
}

func newEngine(r *engine.Registry, p *macro.Parser, log *slog.Logger) *engine.Engine {
	return engine.New(engine.Options{
		Registry: r,
		EOL:      p.EOL(),
		Logger:   log,
	})
}
