package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"dupescan/internal/config"
	"dupescan/internal/consolidate"
	"dupescan/internal/index"
	"dupescan/internal/llm"
	"dupescan/internal/report"
	"dupescan/internal/snapshot"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagFormat   string
	flagSnapshot string
	flagExplain  int
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Report groups of near-duplicate components, hooks and functions",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	addScanFlags(scanCmd)
	scanCmd.Flags().StringVar(&flagFormat, "format", "text", "output format (text, markdown or json)")
	scanCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "also write the scan to this SQLite file")
	scanCmd.Flags().IntVar(&flagExplain, "explain", 0, "ask the chat model for consolidation advice on the top N groups")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, root, applyScanFlags(cmd))
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	idx, stats, err := scanProject(ctx, root, cfg)
	if err != nil {
		return err
	}

	dups := idx.Duplicates(cfg.DuplicateOptions())
	groups := report.BuildGroups(idx, dups)

	if flagExplain > 0 && len(groups) > 0 {
		gen := llm.NewOllamaChat(chatURL(cfg), cfg.ChatModel)
		if err := consolidate.Advise(ctx, gen, groups, idx.Content, flagExplain); err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if flagSnapshot != "" {
		snapGroups := make([]snapshot.Group, len(dups))
		for i, g := range dups {
			snapGroups[i] = snapshot.Group{DuplicateGroup: g, Scores: idx.PairScores(g)}
		}
		run := snapshot.NewRun(root, idx.Model(), cfg.Threshold)
		if err := snapshot.Write(flagSnapshot, run, idx.Records(), snapGroups); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Snapshot %s written to %s\n", run.ID, flagSnapshot)
	}

	r := report.Report{
		Root:         root,
		Model:        idx.Model(),
		Threshold:    cfg.Threshold,
		Files:        stats.FilesTotal,
		Chunks:       stats.ChunksTotal,
		Groups:       groups,
		DuplicateLOC: report.RedundantLines(groups),
	}
	return writeReport(r, format)
}

// writeReport prints r to stdout. Markdown is styled when stdout is a
// terminal.
func writeReport(r report.Report, format report.Format) error {
	if format == report.FormatMarkdown && isatty.IsTerminal(os.Stdout.Fd()) {
		out, err := report.RenderTerminal(report.Markdown(r), 0)
		if err != nil {
			return err
		}
		_, err = fmt.Print(out)
		return err
	}
	return report.Write(os.Stdout, r, format)
}

// scanProject indexes root, reporting progress on stderr.
func scanProject(ctx context.Context, root string, cfg config.Config) (*index.Indexer, *index.Stats, error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	icfg := cfg.IndexConfig()
	tty := isatty.IsTerminal(os.Stderr.Fd())
	if tty {
		icfg.OnProgress = func(phase string, processed, total int) {
			fmt.Fprintf(os.Stderr, "\r  %s %d/%d files", phase, processed, total)
		}
	}
	idx := index.New(emb, icfg)

	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "Scanning %s with %s...\n", root, emb.Model())
	start := time.Now()

	stats, err := idx.Index(ctx, root)
	if tty && stats != nil && stats.FilesIndexed > 0 {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("scan %s: %w", root, err)
	}

	fmt.Fprintf(os.Stderr, "Done in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  Files:   %d total, %d embedded, %d unparsed\n",
		stats.FilesTotal, stats.FilesIndexed, stats.FilesUnparsed)
	fmt.Fprintf(os.Stderr, "  Chunks:  %d\n", stats.ChunksTotal)
	return idx, stats, nil
}
