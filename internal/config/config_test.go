package config

import (
	"os"
	"path/filepath"
	"testing"

	"dupescan/internal/chunker"
	"dupescan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.9, cfg.Threshold)
	assert.Equal(t, 2, cfg.MinGroupSize)
	assert.Equal(t, 3, cfg.MinLines)
	assert.Equal(t, 150, cfg.MaxLines)
	assert.Equal(t, 6000, cfg.MaxChars)
	assert.Equal(t, 0.8, cfg.Similar.Threshold)
	assert.Equal(t, 10, cfg.Similar.Limit)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(t.TempDir(), "")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("explicit missing file fails", func(t *testing.T) {
		_, err := Load("", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		root := t.TempDir()
		data := `threshold: 0.85
kind: hook
exclude:
  - __generated__
max_lines: 80
similar:
  limit: 5
embedding:
  model: mxbai-embed-large
`
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(data), 0o644))

		cfg, err := Load(root, "")
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 0.85, cfg.Threshold)
		assert.Equal(t, 80, cfg.MaxLines)
		assert.Equal(t, 5, cfg.Similar.Limit)
		assert.Equal(t, 0.8, cfg.Similar.Threshold)
		assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)
		assert.Equal(t, "ollama", cfg.Embedding.Provider)

		dup := cfg.DuplicateOptions()
		assert.Equal(t, model.KindHook, dup.Kind)
		assert.Equal(t, []string{"__generated__"}, dup.ExcludePaths)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("threshold: [1"), 0o644))
		_, err := Load(root, "")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold above one", func(c *Config) { c.Threshold = 1.2 }, "threshold"},
		{"threshold negative", func(c *Config) { c.Threshold = -0.1 }, "threshold"},
		{"group of one", func(c *Config) { c.MinGroupSize = 1 }, "min_group_size"},
		{"unknown kind", func(c *Config) { c.Kind = "widget" }, "kind"},
		{"unknown extract kind", func(c *Config) { c.Kinds = []string{"component", "class"} }, "kinds"},
		{"zero min lines", func(c *Config) { c.MinLines = 0 }, "min_lines"},
		{"negative max lines", func(c *Config) { c.MaxLines = -1 }, "max_lines"},
		{"max below min", func(c *Config) { c.MinLines = 10; c.MaxLines = 5 }, "max_lines"},
		{"unknown split", func(c *Config) { c.Split = "always" }, "split"},
		{"tiny max chars", func(c *Config) { c.MaxChars = 10 }, "max_chars"},
		{"similar limit", func(c *Config) { c.Similar.Limit = 0 }, "similar.limit"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"negative rps", func(c *Config) { c.Embedding.RequestsPerSecond = -1 }, "requests_per_second"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("splitting disabled", func(t *testing.T) {
		cfg := Default()
		cfg.MaxLines = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestDerivedOptions(t *testing.T) {
	cfg := Default()
	cfg.Kinds = []string{"component", "jsx-section"}
	cfg.Split = "none"

	opts := cfg.ChunkOptions()
	assert.Equal(t, chunker.SplitNone, opts.SplitStrategy)
	assert.Equal(t, []model.ChunkKind{model.KindComponent, model.KindJSXSection}, opts.Kinds)

	t.Setenv(APIKeyEnv, "sk-test")
	cfg.Embedding.Provider = "openai"
	eo := cfg.EmbedderOptions()
	assert.Equal(t, "sk-test", eo.APIKey)
	assert.Empty(t, eo.BaseURL)

	ic := cfg.IndexConfig()
	assert.Equal(t, 32, ic.BatchSize)
	assert.Equal(t, 6000, ic.Embed.MaxChars)
}

func TestLoadEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, LoadEnv(root), "missing .env is fine")

	require.NoError(t, os.WriteFile(filepath.Join(root, EnvFile),
		[]byte("DUPESCAN_TEST_FROM_FILE=file\nDUPESCAN_TEST_SHELL=file\n"), 0o644))
	t.Setenv("DUPESCAN_TEST_SHELL", "shell")
	t.Cleanup(func() { os.Unsetenv("DUPESCAN_TEST_FROM_FILE") })

	require.NoError(t, LoadEnv(root))
	assert.Equal(t, "file", os.Getenv("DUPESCAN_TEST_FROM_FILE"))
	assert.Equal(t, "shell", os.Getenv("DUPESCAN_TEST_SHELL"))
}
