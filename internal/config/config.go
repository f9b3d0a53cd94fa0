// Package config loads dupescan settings from .dupescan.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"dupescan/internal/chunker"
	"dupescan/internal/duplicates"
	"dupescan/internal/embedder"
	"dupescan/internal/embedinput"
	"dupescan/internal/index"
	"dupescan/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up at the scan root.
const FileName = ".dupescan.yaml"

// APIKeyEnv holds the key for the openai provider.
const APIKeyEnv = "OPENAI_API_KEY"

// EnvFile is read from the scan root into the process environment.
const EnvFile = ".env"

// Config holds every tunable of a scan.
type Config struct {
	// Threshold is the cosine similarity (0.0-1.0) at which two chunks
	// are linked into a duplicate group.
	Threshold float64 `yaml:"threshold"`

	// MinGroupSize drops groups with fewer members.
	MinGroupSize int `yaml:"min_group_size"`

	// Kind restricts grouping to one chunk kind. Empty groups every kind
	// separately.
	Kind string `yaml:"kind"`

	// Exclude lists path substrings whose chunks never join a group.
	Exclude []string `yaml:"exclude"`

	// Ignore adds walker ignore patterns on top of .dupescanignore.
	Ignore []string `yaml:"ignore"`

	MinLines int    `yaml:"min_lines"`
	MaxLines int    `yaml:"max_lines"`
	Split    string `yaml:"split"`

	// Kinds limits which chunk kinds are extracted at all.
	Kinds []string `yaml:"kinds"`

	// MaxChars caps the embedding input length.
	MaxChars int `yaml:"max_chars"`

	Similar   SimilarConfig   `yaml:"similar"`
	Embedding EmbeddingConfig `yaml:"embedding"`

	// ChatModel is the Ollama model asked for consolidation advice.
	ChatModel string `yaml:"chat_model"`

	// Workers is the number of chunking goroutines. Zero uses every CPU.
	Workers int `yaml:"workers"`
}

// SimilarConfig tunes similar and query lookups.
type SimilarConfig struct {
	Threshold float64 `yaml:"threshold"`
	Limit     int     `yaml:"limit"`
}

// EmbeddingConfig selects the embedding model.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"`
	URL               string  `yaml:"url"`
	Model             string  `yaml:"model"`
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Threshold:    duplicates.DefaultThreshold,
		MinGroupSize: duplicates.DefaultMinGroupSize,
		MinLines:     chunker.DefaultMinLines,
		MaxLines:     chunker.DefaultMaxLines,
		Split:        string(chunker.SplitAuto),
		MaxChars:     embedinput.DefaultMaxChars,
		Similar: SimilarConfig{
			Threshold: duplicates.DefaultSimilarThreshold,
			Limit:     duplicates.DefaultSimilarLimit,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			URL:       embedder.DefaultOllamaURL,
			Model:     "nomic-embed-text",
			BatchSize: index.DefaultBatchSize,
		},
		ChatModel: "qwen3:8b",
	}
}

// Load reads path over the defaults. When path is empty it looks for
// FileName in root and quietly falls back to the defaults if there is none.
func Load(root, path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv copies variables from root/.env into the environment. Variables
// already set in the shell win. A missing file is not an error.
func LoadEnv(root string) error {
	err := godotenv.Load(filepath.Join(root, EnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", EnvFile, err)
	}
	return nil
}

// Validate rejects out-of-range values instead of clamping them.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", c.Threshold)
	}
	if c.MinGroupSize < 2 {
		return fmt.Errorf("min_group_size must be at least 2 (got %d)", c.MinGroupSize)
	}
	if c.Kind != "" {
		if _, err := model.ParseKind(c.Kind); err != nil {
			return fmt.Errorf("kind: %w", err)
		}
	}
	for _, k := range c.Kinds {
		if _, err := model.ParseKind(k); err != nil {
			return fmt.Errorf("kinds: %w", err)
		}
	}
	if c.MinLines < 1 {
		return fmt.Errorf("min_lines must be at least 1 (got %d)", c.MinLines)
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines cannot be negative (got %d)", c.MaxLines)
	}
	if c.MaxLines > 0 && c.MaxLines < c.MinLines {
		return fmt.Errorf("max_lines (%d) must be 0 or at least min_lines (%d)", c.MaxLines, c.MinLines)
	}
	switch chunker.SplitStrategy(c.Split) {
	case chunker.SplitAuto, chunker.SplitNone:
	default:
		return fmt.Errorf("split must be %q or %q (got %q)", chunker.SplitAuto, chunker.SplitNone, c.Split)
	}
	if c.MaxChars < 100 {
		return fmt.Errorf("max_chars must be at least 100 (got %d)", c.MaxChars)
	}
	if c.Similar.Threshold < 0 || c.Similar.Threshold > 1 {
		return fmt.Errorf("similar.threshold must be between 0.0 and 1.0 (got %.2f)", c.Similar.Threshold)
	}
	if c.Similar.Limit < 1 {
		return fmt.Errorf("similar.limit must be positive (got %d)", c.Similar.Limit)
	}
	if !slices.Contains(embedder.Providers, c.Embedding.Provider) {
		return fmt.Errorf("embedding.provider must be one of %v (got %q)", embedder.Providers, c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return errors.New("embedding.model is required")
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be positive (got %d)", c.Embedding.BatchSize)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("embedding.requests_per_second cannot be negative (got %g)", c.Embedding.RequestsPerSecond)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative (got %d)", c.Workers)
	}
	return nil
}

// ChunkOptions returns the extractor options. Call after Validate.
func (c Config) ChunkOptions() chunker.Options {
	opts := chunker.Options{
		MinLines:      c.MinLines,
		MaxLines:      c.MaxLines,
		SplitStrategy: chunker.SplitStrategy(c.Split),
	}
	for _, k := range c.Kinds {
		opts.Kinds = append(opts.Kinds, model.ChunkKind(k))
	}
	return opts
}

// DuplicateOptions returns the grouping options.
func (c Config) DuplicateOptions() duplicates.Options {
	return duplicates.Options{
		Threshold:    c.Threshold,
		MinGroupSize: c.MinGroupSize,
		Kind:         model.ChunkKind(c.Kind),
		ExcludePaths: c.Exclude,
	}
}

// SimilarOptions returns the options of similar and query lookups.
func (c Config) SimilarOptions() duplicates.SimilarOptions {
	return duplicates.SimilarOptions{Threshold: c.Similar.Threshold, Limit: c.Similar.Limit}
}

// EmbedderOptions returns the provider settings. The API key comes from
// the environment (see LoadEnv), never from the YAML file.
func (c Config) EmbedderOptions() embedder.Options {
	url := c.Embedding.URL
	if c.Embedding.Provider == "openai" && url == embedder.DefaultOllamaURL {
		url = ""
	}
	return embedder.Options{
		Provider:          c.Embedding.Provider,
		BaseURL:           url,
		Model:             c.Embedding.Model,
		APIKey:            os.Getenv(APIKeyEnv),
		RequestsPerSecond: c.Embedding.RequestsPerSecond,
	}
}

// IndexConfig returns the pipeline settings.
func (c Config) IndexConfig() index.Config {
	return index.Config{
		Chunk:     c.ChunkOptions(),
		Embed:     embedinput.Options{MaxChars: c.MaxChars},
		BatchSize: c.Embedding.BatchSize,
		Workers:   c.Workers,
		Ignore:    c.Ignore,
	}
}
