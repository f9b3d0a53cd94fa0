package cmd

import (
	"fmt"
	"os"

	"dupescan/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagFile string
	flagLine int
)

var similarCmd = &cobra.Command{
	Use:   "similar <path>",
	Short: "List chunks similar to the one at a file and line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, root, applySimilarFlags(cmd))
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		if flagLine < 1 {
			return fmt.Errorf("--line must be positive (got %d)", flagLine)
		}

		idx, _, err := scanProject(cmd.Context(), root, cfg)
		if err != nil {
			return err
		}
		matches := idx.SimilarToLocation(flagFile, flagLine, cfg.SimilarOptions())
		title := fmt.Sprintf("Similar to %s:%d", flagFile, flagLine)
		return report.WriteMatches(os.Stdout, title, report.Matches(matches), format)
	},
}

func init() {
	addSimilarFlags(similarCmd)
	similarCmd.Flags().StringVar(&flagFile, "file", "", "file containing the chunk (absolute or relative to <path>)")
	similarCmd.Flags().IntVar(&flagLine, "line", 0, "1-based line inside the chunk")
	similarCmd.Flags().StringVar(&flagFormat, "format", "text", "output format (text, markdown or json)")
	_ = similarCmd.MarkFlagRequired("file")
	_ = similarCmd.MarkFlagRequired("line")
	rootCmd.AddCommand(similarCmd)
}
