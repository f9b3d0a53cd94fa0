package cmd

import (
	"runtime"

	"dupescan/internal/config"

	"github.com/spf13/cobra"
)

// Grouping and extraction flags shared by scan, tui and mcp.
var (
	flagThreshold    float64
	flagMinGroupSize int
	flagKind         string
	flagExclude      []string
	flagMinLines     int
	flagMaxLines     int
	flagSplit        string
	flagWorkers      int
)

func addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&flagThreshold, "threshold", 0.9, "cosine similarity at which chunks are grouped")
	f.IntVar(&flagMinGroupSize, "min-group-size", 2, "smallest group to report")
	f.StringVar(&flagKind, "kind", "", "only group chunks of this kind")
	f.StringSliceVar(&flagExclude, "exclude", nil, "path substrings whose chunks are never grouped")
	f.IntVar(&flagMinLines, "min-lines", 3, "drop chunks shorter than this")
	f.IntVar(&flagMaxLines, "max-lines", 150, "split units longer than this (0 disables splitting)")
	f.StringVar(&flagSplit, "split", "auto", "split strategy (auto or none)")
	f.IntVar(&flagWorkers, "workers", runtime.NumCPU(), "parallel chunking workers")
}

// applyScanFlags copies explicitly set scan flags over cfg.
func applyScanFlags(cmd *cobra.Command) func(cfg *config.Config) {
	return func(cfg *config.Config) {
		f := cmd.Flags()
		if f.Changed("threshold") {
			cfg.Threshold = flagThreshold
		}
		if f.Changed("min-group-size") {
			cfg.MinGroupSize = flagMinGroupSize
		}
		if f.Changed("kind") {
			cfg.Kind = flagKind
		}
		if f.Changed("exclude") {
			cfg.Exclude = append(cfg.Exclude, flagExclude...)
		}
		if f.Changed("min-lines") {
			cfg.MinLines = flagMinLines
		}
		if f.Changed("max-lines") {
			cfg.MaxLines = flagMaxLines
		}
		if f.Changed("split") {
			cfg.Split = flagSplit
		}
		if f.Changed("workers") {
			cfg.Workers = flagWorkers
		}
	}
}

var (
	flagSimilarThreshold float64
	flagLimit            int
)

func addSimilarFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&flagSimilarThreshold, "threshold", 0.8, "minimum cosine similarity of a match")
	cmd.Flags().IntVar(&flagLimit, "limit", 10, "maximum number of matches")
}

func applySimilarFlags(cmd *cobra.Command) func(cfg *config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("threshold") {
			cfg.Similar.Threshold = flagSimilarThreshold
		}
		if cmd.Flags().Changed("limit") {
			cfg.Similar.Limit = flagLimit
		}
	}
}
