package tui

import (
	"context"
	"fmt"

	"dupescan/internal/embedder"

	tea "github.com/charmbracelet/bubbletea"
)

type preflightStatus int

const (
	preflightReady preflightStatus = iota
	preflightModelMissing
	preflightUnreachable
	preflightSkipped
)

type welcomeModel struct {
	status preflightStatus
	detail string
	ready  bool // true once the check has completed
}

// preflightMsg is sent after checking the embedding model.
type preflightMsg struct {
	status preflightStatus
	detail string
}

// checkModel confirms the embedding model is installed before a scan.
// Only the Ollama provider can be checked.
func checkModel(cfg Config) tea.Cmd {
	return func() tea.Msg {
		if cfg.Provider != "" && cfg.Provider != "ollama" {
			return preflightMsg{status: preflightSkipped, detail: cfg.Provider + " provider"}
		}
		models, err := embedder.ListModels(context.Background(), cfg.OllamaURL)
		if err != nil {
			return preflightMsg{status: preflightUnreachable, detail: err.Error()}
		}
		if !embedder.HasModel(models, cfg.Model) {
			return preflightMsg{
				status: preflightModelMissing,
				detail: fmt.Sprintf("run: ollama pull %s", cfg.Model),
			}
		}
		return preflightMsg{status: preflightReady}
	}
}

func (m welcomeModel) Update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	if msg, ok := msg.(preflightMsg); ok {
		m.status = msg.status
		m.detail = msg.detail
		m.ready = true
	}
	return m, nil
}

// canScan reports whether Enter should start the scan.
func (m welcomeModel) canScan() bool {
	return m.ready && (m.status == preflightReady || m.status == preflightSkipped)
}

func (m welcomeModel) View(cfg Config) string {
	s := "\n"
	s += headingStyle.Render("  ◆ dupescan") + "\n"
	s += captionStyle.Render("  Near-duplicate UI components in "+cfg.Root) + "\n\n"

	if !m.ready {
		s += hintStyle.Render("  Checking embedding model...") + "\n"
		return s
	}

	switch m.status {
	case preflightReady:
		s += okStyle.Render("  ✓ Model "+cfg.Model+" ready") + "\n"
	case preflightSkipped:
		s += okStyle.Render("  ✓ Using "+m.detail) + "\n"
	case preflightModelMissing:
		s += warnStyle.Render("  ✗ Model "+cfg.Model+" not installed") + "\n"
		s += hintStyle.Render("    "+m.detail) + "\n"
	case preflightUnreachable:
		s += failStyle.Render("  ✗ Ollama unreachable at "+cfg.OllamaURL) + "\n"
		s += hintStyle.Render("    "+m.detail) + "\n"
	}

	s += "\n"
	if m.canScan() {
		s += hintStyle.Render("  Press Enter to scan, q to quit") + "\n"
	} else {
		s += hintStyle.Render("  Press q to quit") + "\n"
	}
	return s
}
