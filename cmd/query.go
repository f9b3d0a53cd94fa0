package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dupescan/internal/config"
	"dupescan/internal/embedder"
	"dupescan/internal/report"
	"dupescan/internal/snapshot"

	"github.com/spf13/cobra"
)

var flagFromSnapshot string

var queryCmd = &cobra.Command{
	Use:   "query <path> <text>",
	Short: "Find chunks matching a description or code snippet",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		cfg, err := loadConfig(cmd, root, applySimilarFlags(cmd))
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(flagFormat)
		if err != nil {
			return err
		}

		if flagFromSnapshot != "" {
			return querySnapshot(cmd.Context(), cfg, text)
		}

		idx, _, err := scanProject(cmd.Context(), root, cfg)
		if err != nil {
			return err
		}
		matches, err := idx.SimilarToQuery(cmd.Context(), text, cfg.SimilarOptions())
		if err != nil {
			return err
		}
		return report.WriteMatches(os.Stdout, fmt.Sprintf("Matches for %q", text), report.Matches(matches), format)
	},
}

// querySnapshot searches a previously written snapshot instead of
// rescanning. The snapshot must have been embedded with the same model.
func querySnapshot(ctx context.Context, cfg config.Config, text string) error {
	snap, err := snapshot.Open(flagFromSnapshot)
	if err != nil {
		return err
	}
	defer snap.Close()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	if m, err := snap.Meta("model"); err != nil {
		return err
	} else if m != "" && m != emb.Model() {
		return fmt.Errorf("snapshot was embedded with %s, not %s", m, emb.Model())
	}

	vec, err := embedder.EmbedSingle(ctx, emb, text)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}
	results, err := snap.Search(vec, cfg.Similar.Limit)
	if err != nil {
		return fmt.Errorf("search snapshot: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%.4f  %s:%d-%d  %s (%s)\n", r.Distance, r.FilePath, r.StartLine, r.EndLine, r.Name, r.Kind)
	}
	return nil
}

func init() {
	addSimilarFlags(queryCmd)
	queryCmd.Flags().StringVar(&flagFormat, "format", "text", "output format (text, markdown or json)")
	queryCmd.Flags().StringVar(&flagFromSnapshot, "snapshot", "", "search this snapshot instead of scanning <path>")
	rootCmd.AddCommand(queryCmd)
}
