package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults",
			config: *Default(),
		},
		{
			name:   "empty config",
			config: Config{},
		},
		{
			name:    "invalid eol",
			config:  Config{EOL: "unix"},
			wantErr: true,
			errMsg:  "invalid eol",
		},
		{
			name:    "invalid default context",
			config:  Config{DefaultContext: "my context"},
			wantErr: true,
			errMsg:  "default_context",
		},
		{
			name:    "invalid placeholder prefix",
			config:  Config{PlaceholderPrefix: "PH_"},
			wantErr: true,
			errMsg:  "placeholder_prefix",
		},
		{
			name:    "invalid output format",
			config:  Config{OutputFormat: "xml"},
			wantErr: true,
			errMsg:  "invalid output_format",
		},
		{
			name:   "all fields set",
			config: Config{EOL: "CRLF", DefaultContext: "docs-v2", PlaceholderPrefix: "PH1", OutputFormat: "json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEOLToken(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"lf", "\n"},
		{"LF", "\n"},
		{"crlf", "\r\n"},
		{"cr", "\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EOLToken(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	native, err := EOLToken("")
	require.NoError(t, err)
	assert.NotEmpty(t, native)

	_, err = EOLToken("nl")
	assert.Error(t, err)
}

func TestConfig_ParserOptions(t *testing.T) {
	cfg := &Config{EOL: "crlf", DefaultContext: "docs", PlaceholderPrefix: "X"}

	opts, err := cfg.ParserOptions()
	require.NoError(t, err)
	assert.Equal(t, "\r\n", opts.EOL)
	assert.Equal(t, "docs", opts.DefaultContext)
	require.NotNil(t, opts.Placeholders)
	assert.Equal(t, "X0END", opts.Placeholders.Next())

	opts, err = (&Config{}).ParserOptions()
	require.NoError(t, err)
	assert.Nil(t, opts.Placeholders)

	_, err = (&Config{EOL: "bad"}).ParserOptions()
	assert.Error(t, err)
}

func TestConfig_MarkdownOptions(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.MarkdownOptions().GFM, "nil markdown block uses defaults")

	cfg.Markdown = &Markdown{Unsafe: true}
	opts := cfg.MarkdownOptions()
	assert.False(t, opts.GFM)
	assert.True(t, opts.Unsafe)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		t.Setenv("MACROED_EOL", "crlf")
		t.Setenv("MACROED_DEFAULT_CONTEXT", "docs")
		t.Setenv("MACROED_ADDR", ":9000")
		t.Setenv("MACROED_OUTPUT_FORMAT", "json")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "crlf", cfg.EOL)
		assert.Equal(t, "docs", cfg.DefaultContext)
		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, "json", cfg.OutputFormat)
	})

	t.Run("empty env vars keep existing values", func(t *testing.T) {
		t.Setenv("MACROED_EOL", "lf")
		t.Setenv("MACROED_DEFAULT_CONTEXT", "")
		t.Setenv("MACROED_ADDR", "")
		t.Setenv("MACROED_OUTPUT_FORMAT", "")

		cfg := &Config{EOL: "crlf", DefaultContext: "site"}
		cfg.LoadFromEnv()

		assert.Equal(t, "lf", cfg.EOL)
		assert.Equal(t, "site", cfg.DefaultContext)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("xdg config home", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		assert.Equal(t, filepath.Join(dir, "macroed", "config.yml"), DefaultConfigPath())
	})

	t.Run("home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		path := DefaultConfigPath()
		assert.True(t, strings.HasPrefix(path, home))
		assert.Contains(t, path, "macroed")
		assert.Equal(t, ".yml", filepath.Ext(path))
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yml")

	original := Config{
		EOL:               "lf",
		DefaultContext:    "docs",
		PlaceholderPrefix: "PH",
		OutputFormat:      "json",
		Addr:              ":9000",
		Markdown:          &Markdown{GFM: true, Unsafe: true},
	}

	require.NoError(t, original.Save(configPath))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("eol: crlf\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "crlf", cfg.EOL)
	assert.Equal(t, "default", cfg.DefaultContext)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	require.NotNil(t, cfg.Markdown)
	assert.True(t, cfg.Markdown.GFM)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("eol: [unclosed\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("MACROED_EOL", "cr")
	t.Setenv("MACROED_DEFAULT_CONTEXT", "")
	t.Setenv("MACROED_ADDR", "")
	t.Setenv("MACROED_OUTPUT_FORMAT", "")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "cr", cfg.EOL)
	assert.Equal(t, "default", cfg.DefaultContext)
}
