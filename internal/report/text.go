package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

func writeText(w io.Writer, r Report) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	if len(r.Groups) == 0 {
		_, err := fmt.Fprintf(w, "%s No duplicate groups at threshold %.2f (%d chunks in %d files).\n",
			green("✓"), r.Threshold, r.Chunks, r.Files)
		return err
	}

	fmt.Fprintf(w, "%s %d duplicate groups, %d redundant lines (threshold %.2f, %d chunks in %d files)\n\n",
		cyan("dupescan:"), len(r.Groups), r.DuplicateLOC, r.Threshold, r.Chunks, r.Files)

	for _, g := range r.Groups {
		fmt.Fprintf(w, "%s %s, %d members, avg similarity %s\n",
			cyan(fmt.Sprintf("Group %d", g.Number)), g.Kind, len(g.Members), yellow(fmt.Sprintf("%.3f", g.AvgSimilarity)))
		for _, m := range g.Members {
			score := gray("anchor")
			if m.Score != nil {
				score = fmt.Sprintf("sim %.3f  size %.2f  score %.3f", m.Score.Similarity, m.Score.SizeRatio, m.Score.CombinedScore)
			}
			fmt.Fprintf(w, "  %s:%d-%d  %s  %s\n", m.FilePath, m.StartLine, m.EndLine, m.Name, score)
		}
		if g.Advice != "" {
			fmt.Fprintf(w, "\n%s\n", indent(g.Advice, "    "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeMatchesText(w io.Writer, title string, ms []Match) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(w, cyan(title))
	if len(ms) == 0 {
		_, err := fmt.Fprintln(w, "  no matches")
		return err
	}
	for _, m := range ms {
		fmt.Fprintf(w, "  %s  %s:%d-%d  %s (%s)\n",
			yellow(fmt.Sprintf("%.3f", m.Similarity)), m.FilePath, m.StartLine, m.EndLine, m.Name, m.Kind)
	}
	return nil
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n"+prefix)
}
