package tui

import (
	"fmt"
	"strings"

	"dupescan/internal/index"
	"dupescan/internal/report"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// resultsModel lists duplicate groups and shows one in detail.
type resultsModel struct {
	stats    *index.Stats
	groups   []report.Group
	indexer  *index.Indexer
	err      error
	cursor   int
	offset   int
	detail   bool
	viewport viewport.Model
	width    int
	height   int
}

func newResultsModel(msg scanDoneMsg, width, height int) resultsModel {
	return resultsModel{
		stats:   msg.stats,
		groups:  msg.groups,
		indexer: msg.indexer,
		err:     msg.err,
		width:   width,
		height:  height,
	}
}

// listHeight is the number of group rows that fit under the header.
func (m resultsModel) listHeight() int {
	return max(m.height-8, 3)
}

func (m resultsModel) Update(msg tea.Msg) (resultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.detail {
			m.openDetail()
		}
		return m, nil

	case tea.KeyMsg:
		if m.detail {
			switch msg.String() {
			case "esc", "backspace", "left", "h":
				m.detail = false
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.groups)-1 {
				m.cursor++
			}
		case "enter", "right", "l":
			if len(m.groups) > 0 {
				m.openDetail()
			}
		}
		if m.cursor < m.offset {
			m.offset = m.cursor
		}
		if m.cursor >= m.offset+m.listHeight() {
			m.offset = m.cursor - m.listHeight() + 1
		}
	}
	return m, nil
}

func (m *resultsModel) openDetail() {
	vpHeight := max(m.height-1, 5)
	m.viewport = viewport.New(m.width, vpHeight)

	md := groupMarkdown(m.groups[m.cursor], m.indexer)
	if out, err := report.RenderTerminal(md, m.width); err == nil {
		md = out
	}
	m.viewport.SetContent(md)
	m.detail = true
}

// groupMarkdown renders one group with the source of every member.
func groupMarkdown(g report.Group, idx *index.Indexer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Group %d: %s\n\n", g.Number, g.Kind)
	fmt.Fprintf(&b, "Average similarity **%.3f** across %d members.\n\n", g.AvgSimilarity, len(g.Members))
	for _, mem := range g.Members {
		fmt.Fprintf(&b, "## %s\n\n`%s:%d-%d`", mem.Name, mem.FilePath, mem.StartLine, mem.EndLine)
		if mem.Score != nil {
			fmt.Fprintf(&b, " similarity %.3f, size ratio %.2f", mem.Score.Similarity, mem.Score.SizeRatio)
		}
		b.WriteString("\n\n")
		if idx != nil {
			if code, ok := idx.Content(mem.ID); ok {
				b.WriteString("```tsx\n" + code + "\n```\n\n")
			}
		}
	}
	return b.String()
}

func (m resultsModel) View() string {
	if m.err != nil {
		s := "\n" + headingStyle.Render("  Scan failed") + "\n\n"
		s += failStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
		s += hintStyle.Render("  Press q to quit") + "\n"
		return s
	}

	if m.detail {
		bar := barStyle.Width(m.width).Render(
			fmt.Sprintf(" group %d/%d • %3.f%% • esc back • q quit", m.cursor+1, len(m.groups), m.viewport.ScrollPercent()*100))
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), bar)
	}

	var s strings.Builder
	s.WriteString("\n")
	s.WriteString(headingStyle.Render("  Duplicate groups") + "\n")
	if m.stats != nil {
		s.WriteString(hintStyle.Render(fmt.Sprintf("  %d files, %d chunks", m.stats.FilesTotal, m.stats.ChunksTotal)) + "\n")
	}
	s.WriteString("\n")

	if len(m.groups) == 0 {
		s.WriteString(okStyle.Render("  ✓ No duplicates found") + "\n\n")
		s.WriteString(hintStyle.Render("  Press q to quit") + "\n")
		return s.String()
	}

	end := min(m.offset+m.listHeight(), len(m.groups))
	for i := m.offset; i < end; i++ {
		g := m.groups[i]
		cursor := "  "
		style := rowStyle
		if i == m.cursor {
			cursor = "▸ "
			style = cursorStyle
		}
		first := g.Members[0]
		line := fmt.Sprintf("#%d %s ×%d  %s (%s)", g.Number, g.Kind, len(g.Members), first.Name, first.FilePath)
		s.WriteString(fmt.Sprintf("  %s%s  %s\n", cursor, style.Render(line), scoreStyle.Render(fmt.Sprintf("%.3f", g.AvgSimilarity))))
	}
	s.WriteString("\n")
	s.WriteString(hintStyle.Render("  ↑/↓ move • enter details • q quit") + "\n")
	return s.String()
}
