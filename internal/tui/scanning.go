package tui

import (
	"context"
	"fmt"
	"os"

	"dupescan/internal/index"
	"dupescan/internal/report"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type scanningModel struct {
	spinner   spinner.Model
	phase     string
	processed int
	total     int
}

func newScanningModel() scanningModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle
	return scanningModel{
		spinner: sp,
		phase:   "Scanning files...",
	}
}

// scanDoneMsg is sent when the scan and grouping complete.
type scanDoneMsg struct {
	stats   *index.Stats
	groups  []report.Group
	indexer *index.Indexer
	err     error
}

// scanProgressMsg is sent as files are embedded.
type scanProgressMsg struct {
	phase     string
	processed int
	total     int
}

func runScan(cfg Config) tea.Cmd {
	return func() tea.Msg {
		icfg := cfg.Index
		icfg.OnProgress = func(phase string, processed, total int) {
			cfg.program.send(scanProgressMsg{phase: phase, processed: processed, total: total})
		}
		idx := index.New(cfg.Embedder, icfg)

		// Pipeline warnings would tear the alternate screen.
		origStderr := os.Stderr
		devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err == nil {
			os.Stderr = devNull
		}
		stats, err := idx.Index(context.Background(), cfg.Root)
		os.Stderr = origStderr
		if devNull != nil {
			devNull.Close()
		}
		if err != nil {
			return scanDoneMsg{stats: stats, err: err}
		}

		groups := report.BuildGroups(idx, idx.Duplicates(cfg.Duplicates))
		return scanDoneMsg{stats: stats, groups: groups, indexer: idx}
	}
}

func (m scanningModel) Update(msg tea.Msg) (scanningModel, tea.Cmd) {
	switch msg := msg.(type) {
	case scanProgressMsg:
		m.phase = msg.phase
		m.processed = msg.processed
		m.total = msg.total
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m scanningModel) View() string {
	s := "\n"
	s += headingStyle.Render("  Scanning") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", m.spinner.View(), m.phase)
	if m.total > 0 {
		s += fmt.Sprintf("  %d / %d files embedded\n", m.processed, m.total)
	}
	s += "\n"
	s += hintStyle.Render("  Embedding every component may take a while on large projects...") + "\n"
	return s
}
