package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders r as a markdown document.
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("# Duplicate report\n\n")
	fmt.Fprintf(&b, "- **Root:** `%s`\n", r.Root)
	fmt.Fprintf(&b, "- **Model:** `%s`\n", r.Model)
	fmt.Fprintf(&b, "- **Threshold:** %.2f\n", r.Threshold)
	fmt.Fprintf(&b, "- **Scanned:** %d chunks in %d files\n", r.Chunks, r.Files)
	fmt.Fprintf(&b, "- **Groups:** %d (%d redundant lines)\n\n", len(r.Groups), r.DuplicateLOC)

	if len(r.Groups) == 0 {
		b.WriteString("No duplicate groups found.\n")
		return b.String()
	}

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "## Group %d: %s (avg similarity %.3f)\n\n", g.Number, g.Kind, g.AvgSimilarity)
		b.WriteString("| Location | Name | Similarity | Size ratio | Score |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, m := range g.Members {
			sim, ratio, score := "anchor", "", ""
			if m.Score != nil {
				sim = fmt.Sprintf("%.3f", m.Score.Similarity)
				ratio = fmt.Sprintf("%.2f", m.Score.SizeRatio)
				score = fmt.Sprintf("%.3f", m.Score.CombinedScore)
			}
			fmt.Fprintf(&b, "| `%s:%d-%d` | %s | %s | %s | %s |\n", m.FilePath, m.StartLine, m.EndLine, m.Name, sim, ratio, score)
		}
		b.WriteString("\n")
		if g.Advice != "" {
			b.WriteString("### Consolidation advice\n\n")
			b.WriteString(strings.TrimSpace(g.Advice))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// MatchesMarkdown renders similarity hits as a markdown table.
func MatchesMarkdown(title string, ms []Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(ms) == 0 {
		b.WriteString("No matches.\n")
		return b.String()
	}
	b.WriteString("| Similarity | Location | Name | Kind |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, m := range ms {
		fmt.Fprintf(&b, "| %.3f | `%s:%d-%d` | %s | %s |\n", m.Similarity, m.FilePath, m.StartLine, m.EndLine, m.Name, m.Kind)
	}
	return b.String()
}

// RenderTerminal styles markdown for a terminal of the given width.
func RenderTerminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render(md)
}
