package cmd

import (
	"dupescan/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui <path>",
	Short: "Scan a project and browse duplicate groups interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, root, applyScanFlags(cmd))
		if err != nil {
			return err
		}
		emb, err := newEmbedder(cfg)
		if err != nil {
			return err
		}

		return tui.Run(tui.Config{
			Root:       root,
			Provider:   cfg.Embedding.Provider,
			OllamaURL:  cfg.Embedding.URL,
			Model:      cfg.Embedding.Model,
			Embedder:   emb,
			Index:      cfg.IndexConfig(),
			Duplicates: cfg.DuplicateOptions(),
		})
	},
}

func init() {
	addScanFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}
