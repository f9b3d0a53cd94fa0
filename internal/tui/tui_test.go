package tui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dupescan/internal/index"
	"dupescan/internal/model"
	"dupescan/internal/report"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGroups() []report.Group {
	return []report.Group{
		{
			Number: 1, Kind: model.KindComponent, AvgSimilarity: 0.97,
			Members: []report.Member{
				{ID: "a", FilePath: "src/Card.tsx", Name: "Card", StartLine: 1, EndLine: 12},
				{ID: "b", FilePath: "src/Tile.tsx", Name: "Tile", StartLine: 1, EndLine: 12,
					Score: &model.DuplicateScore{Similarity: 0.97, SizeRatio: 1, CombinedScore: 0.979}},
			},
		},
		{
			Number: 2, Kind: model.KindHook, AvgSimilarity: 0.93,
			Members: []report.Member{
				{ID: "c", FilePath: "src/useA.ts", Name: "useA", StartLine: 3, EndLine: 9},
				{ID: "d", FilePath: "src/useB.ts", Name: "useB", StartLine: 3, EndLine: 9},
			},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestResultsNavigation(t *testing.T) {
	m := newResultsModel(scanDoneMsg{
		stats:  &index.Stats{FilesTotal: 4, ChunksTotal: 4},
		groups: sampleGroups(),
	}, 80, 30)

	view := m.View()
	assert.Contains(t, view, "Duplicate groups")
	assert.Contains(t, view, "4 files, 4 chunks")
	assert.Contains(t, view, "#1 component ×2")

	m, _ = m.Update(key("down"))
	assert.Equal(t, 1, m.cursor)
	m, _ = m.Update(key("down"))
	assert.Equal(t, 1, m.cursor, "cursor stops at the last group")

	m, _ = m.Update(key("enter"))
	require.True(t, m.detail)
	assert.Contains(t, m.View(), "group 2/2")

	m, _ = m.Update(key("esc"))
	assert.False(t, m.detail)
	m, _ = m.Update(key("k"))
	assert.Equal(t, 0, m.cursor)
}

func TestResultsEmptyAndError(t *testing.T) {
	empty := newResultsModel(scanDoneMsg{stats: &index.Stats{}}, 80, 30)
	assert.Contains(t, empty.View(), "No duplicates found")

	empty, _ = empty.Update(key("enter"))
	assert.False(t, empty.detail)

	failed := newResultsModel(scanDoneMsg{err: assert.AnError}, 80, 30)
	assert.Contains(t, failed.View(), "Scan failed")
}

func TestGroupMarkdown(t *testing.T) {
	md := groupMarkdown(sampleGroups()[0], nil)
	assert.Contains(t, md, "# Group 1: component")
	assert.Contains(t, md, "## Tile")
	assert.Contains(t, md, "`src/Tile.tsx:1-12` similarity 0.970, size ratio 1.00")
	assert.NotContains(t, md, "```")
}

func TestCheckModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"nomic-embed-text:latest"}]}`))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		cfg  Config
		want preflightStatus
	}{
		{"installed", Config{Provider: "ollama", OllamaURL: srv.URL, Model: "nomic-embed-text"}, preflightReady},
		{"missing", Config{Provider: "ollama", OllamaURL: srv.URL, Model: "mxbai-embed-large"}, preflightModelMissing},
		{"unreachable", Config{Provider: "ollama", OllamaURL: "http://127.0.0.1:1", Model: "m"}, preflightUnreachable},
		{"openai", Config{Provider: "openai", Model: "text-embedding-3-small"}, preflightSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := checkModel(tt.cfg)().(preflightMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg.status)

			w, _ := welcomeModel{}.Update(msg)
			assert.Equal(t, tt.want == preflightReady || tt.want == preflightSkipped, w.canScan())
		})
	}
}

func TestModelStartsScanOnEnter(t *testing.T) {
	m := New(Config{Root: "/tmp/project", Model: "m"})
	next, _ := m.Update(preflightMsg{status: preflightReady})
	m = next.(Model)
	assert.Equal(t, ViewWelcome, m.state)

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, ViewScanning, m.state)
	assert.NotNil(t, cmd)

	next, _ = m.Update(scanDoneMsg{stats: &index.Stats{}})
	assert.Equal(t, ViewResults, next.(Model).state)
}
