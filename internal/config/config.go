// Package config provides configuration management for macroed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/macroed/pkg/engine"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

// Supported values for the eol setting.
const (
	EOLNative = "native"
	EOLLF     = "lf"
	EOLCRLF   = "crlf"
	EOLCR     = "cr"
)

// DefaultAddr is where `macroed serve` listens when nothing is configured.
const DefaultAddr = "127.0.0.1:8095"

// Markdown holds the settings of the default context renderer.
type Markdown struct {
	GFM         bool `yaml:"gfm"`
	Breaks      bool `yaml:"breaks"`
	Typographer bool `yaml:"typographer"`
	Unsafe      bool `yaml:"unsafe"`
}

// Config holds the macroed configuration.
type Config struct {
	EOL               string    `yaml:"eol,omitempty"`
	DefaultContext    string    `yaml:"default_context,omitempty"`
	PlaceholderPrefix string    `yaml:"placeholder_prefix,omitempty"`
	OutputFormat      string    `yaml:"output_format,omitempty"`
	Addr              string    `yaml:"addr,omitempty"`
	Markdown          *Markdown `yaml:"markdown,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	md := engine.DefaultMarkdownOptions()
	return &Config{
		EOL:            EOLNative,
		DefaultContext: macro.DefaultContext,
		Addr:           DefaultAddr,
		Markdown: &Markdown{
			GFM:         md.GFM,
			Breaks:      md.Breaks,
			Typographer: md.Typographer,
			Unsafe:      md.Unsafe,
		},
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if _, err := EOLToken(c.EOL); err != nil {
		return err
	}
	if c.DefaultContext != "" && !isIdentifier(c.DefaultContext) {
		return errors.New("default_context may only contain letters, digits, '_' and '-'")
	}
	if c.PlaceholderPrefix != "" && !isAlnum(c.PlaceholderPrefix) {
		return errors.New("placeholder_prefix may only contain letters and digits")
	}
	switch c.OutputFormat {
	case "", "table", "json", "plain":
	default:
		return fmt.Errorf("invalid output_format %q", c.OutputFormat)
	}
	return nil
}

// EOLToken maps an eol setting to the line terminator it names.
func EOLToken(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", EOLNative:
		return macro.NativeEOL(), nil
	case EOLLF:
		return "\n", nil
	case EOLCRLF:
		return "\r\n", nil
	case EOLCR:
		return "\r", nil
	}
	return "", fmt.Errorf("invalid eol %q: use lf, crlf, cr or native", name)
}

// ParserOptions builds parser options from the configuration.
func (c *Config) ParserOptions() (macro.Options, error) {
	eol, err := EOLToken(c.EOL)
	if err != nil {
		return macro.Options{}, err
	}

	opts := macro.Options{
		EOL:            eol,
		DefaultContext: c.DefaultContext,
	}
	if c.PlaceholderPrefix != "" {
		opts.Placeholders = macro.NewCounter(c.PlaceholderPrefix, macro.DefaultPlaceholderSuffix)
	}
	return opts, nil
}

// MarkdownOptions returns the renderer settings, falling back to the defaults.
func (c *Config) MarkdownOptions() engine.MarkdownOptions {
	if c.Markdown == nil {
		return engine.DefaultMarkdownOptions()
	}
	return engine.MarkdownOptions{
		GFM:         c.Markdown.GFM,
		Breaks:      c.Markdown.Breaks,
		Typographer: c.Markdown.Typographer,
		Unsafe:      c.Markdown.Unsafe,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	if eol := os.Getenv("MACROED_EOL"); eol != "" {
		c.EOL = eol
	}
	if ctx := os.Getenv("MACROED_DEFAULT_CONTEXT"); ctx != "" {
		c.DefaultContext = ctx
	}
	if addr := os.Getenv("MACROED_ADDR"); addr != "" {
		c.Addr = addr
	}
	if format := os.Getenv("MACROED_OUTPUT_FORMAT"); format != "" {
		c.OutputFormat = format
	}
}

// EnvVars lists the environment variables LoadFromEnv reads.
func EnvVars() []string {
	return []string{"MACROED_EOL", "MACROED_DEFAULT_CONTEXT", "MACROED_ADDR", "MACROED_OUTPUT_FORMAT"}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "macroed", "config.yml")
	}

	// Fall back to ~/.config/macroed/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".macroed", "config.yml")
	}

	return filepath.Join(home, ".config", "macroed", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path. Fields missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// If file doesn't exist, start with the defaults
		cfg = Default()
	}

	cfg.LoadFromEnv()
	return cfg, nil
}

func isIdentifier(s string) bool {
	for _, r := range s {
		if !(r == '_' || r == '-' || isAlnumRune(r)) {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !isAlnumRune(r) {
			return false
		}
	}
	return true
}

func isAlnumRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
