package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"dupescan/internal/config"
	"dupescan/internal/embedder"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagConfig        string
	flagProvider      string
	flagOllama        string
	flagModel         string
	flagOpenAIBaseURL string
	flagEmbedRPS      float64
	flagChatModel     string
)

var rootCmd = &cobra.Command{
	Use:           "dupescan",
	Short:         "Find near-duplicate UI components with embeddings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default <path>/"+config.FileName+")")
	pf.StringVar(&flagProvider, "provider", "ollama", "embedding provider (ollama or openai)")
	pf.StringVar(&flagOllama, "ollama", embedder.DefaultOllamaURL, "ollama base URL")
	pf.StringVar(&flagModel, "model", "nomic-embed-text", "embedding model")
	pf.StringVar(&flagOpenAIBaseURL, "openai-base-url", "", "OpenAI-compatible API base URL (key from $"+config.APIKeyEnv+")")
	pf.Float64Var(&flagEmbedRPS, "embed-rps", 0, "embedding requests per second (0 = unlimited)")
	pf.StringVar(&flagChatModel, "chat-model", "qwen3:8b", "ollama model for consolidation advice")
}

// resolveRoot returns the absolute project directory named by arg.
func resolveRoot(arg string) (string, error) {
	root, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return root, nil
}

// loadConfig reads the project config, applies flags the user set
// explicitly, and validates the result. local applies command flags.
func loadConfig(cmd *cobra.Command, root string, local func(cfg *config.Config)) (config.Config, error) {
	if err := config.LoadEnv(root); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(root, flagConfig)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("provider") {
		cfg.Embedding.Provider = flagProvider
	}
	if f.Changed("ollama") && cfg.Embedding.Provider == "ollama" {
		cfg.Embedding.URL = flagOllama
	}
	if f.Changed("openai-base-url") && cfg.Embedding.Provider == "openai" {
		cfg.Embedding.URL = flagOpenAIBaseURL
	}
	if f.Changed("model") {
		cfg.Embedding.Model = flagModel
	}
	if f.Changed("embed-rps") {
		cfg.Embedding.RequestsPerSecond = flagEmbedRPS
	}
	if f.Changed("chat-model") {
		cfg.ChatModel = flagChatModel
	}
	if local != nil {
		local(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// chatURL is where consolidation requests go. The chat model always runs on
// Ollama, even when embeddings come from another provider.
func chatURL(cfg config.Config) string {
	if cfg.Embedding.Provider == "ollama" && cfg.Embedding.URL != "" {
		return cfg.Embedding.URL
	}
	return flagOllama
}

func newEmbedder(cfg config.Config) (embedder.Embedder, error) {
	emb, err := embedder.New(cfg.EmbedderOptions())
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return emb, nil
}
