// Package tui is the interactive front-end: model check, scan progress, and
// a browser over the duplicate groups found.
package tui

import (
	"dupescan/internal/duplicates"
	"dupescan/internal/embedder"
	"dupescan/internal/index"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewState is the active screen.
type ViewState int

const (
	ViewWelcome ViewState = iota
	ViewScanning
	ViewResults
)

// programRef lets the scan goroutine reach the running program. p is set
// between tea.NewProgram and Run.
type programRef struct {
	p *tea.Program
}

func (r *programRef) send(msg tea.Msg) {
	if r != nil && r.p != nil {
		r.p.Send(msg)
	}
}

// Config is what the CLI hands the TUI.
type Config struct {
	Root       string
	Provider   string
	OllamaURL  string
	Model      string
	Embedder   embedder.Embedder
	Index      index.Config
	Duplicates duplicates.Options

	program *programRef
}

// Model is the top-level Bubble Tea model. It owns the window size and
// routes messages to the active screen.
type Model struct {
	state         ViewState
	config        Config
	width, height int

	welcome  welcomeModel
	scanning scanningModel
	results  resultsModel
}

func New(cfg Config) Model {
	return Model{state: ViewWelcome, config: cfg}
}

func (m Model) Init() tea.Cmd {
	return checkModel(m.config)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case scanDoneMsg:
		m.state = ViewResults
		m.results = newResultsModel(msg, m.width, m.height)
		return m, nil
	}

	switch m.state {
	case ViewWelcome:
		return m.updateWelcome(msg)
	case ViewScanning:
		var cmd tea.Cmd
		m.scanning, cmd = m.scanning.Update(msg)
		return m, cmd
	case ViewResults:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateWelcome starts the scan on Enter once the model check passed.
func (m Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.welcome, _ = m.welcome.Update(msg)

	key, ok := msg.(tea.KeyMsg)
	if !ok || key.Type != tea.KeyEnter || !m.welcome.canScan() {
		return m, nil
	}
	m.state = ViewScanning
	m.scanning = newScanningModel()
	return m, tea.Batch(m.scanning.spinner.Tick, runScan(m.config))
}

func (m Model) View() string {
	switch m.state {
	case ViewScanning:
		return m.scanning.View()
	case ViewResults:
		return m.results.View()
	default:
		return m.welcome.View(m.config)
	}
}

// Run blocks until the user quits.
func Run(cfg Config) error {
	ref := &programRef{}
	cfg.program = ref
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	ref.p = p
	_, err := p.Run()
	return err
}
