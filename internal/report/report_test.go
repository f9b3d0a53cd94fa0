package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"dupescan/internal/duplicates"
	"dupescan/internal/model"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[string]model.DuplicateScore

func (f fakeSource) PairScores(g model.DuplicateGroup) []duplicates.PairScore {
	var out []duplicates.PairScore
	for _, m := range g.Members[1:] {
		out = append(out, duplicates.PairScore{ID: m.ID, Score: f[m.ID]})
	}
	return out
}

func member(id, path string, start, end int) model.GroupMember {
	return model.GroupMember{ID: id, Metadata: model.StoredChunkMetadata{
		FilePath: path, StartLine: start, EndLine: end, Kind: model.KindComponent, Name: id,
	}}
}

func sampleReport() Report {
	groups := []model.DuplicateGroup{{
		Kind:          model.KindComponent,
		AvgSimilarity: 0.95,
		Members: []model.GroupMember{
			member("Card", "src/Card.tsx", 1, 20),
			member("Tile", "src/Tile.tsx", 5, 24),
			member("Panel", "src/Panel.tsx", 1, 10),
		},
	}}
	src := fakeSource{
		"Tile":  {Similarity: 0.96, SizeRatio: 1, CombinedScore: 0.966},
		"Panel": {Similarity: 0.94, SizeRatio: 0.5, CombinedScore: 0.874},
	}
	rg := BuildGroups(src, groups)
	return Report{Root: "/repo", Model: "nomic-embed-text", Threshold: 0.9, Files: 3, Chunks: 3, Groups: rg, DuplicateLOC: RedundantLines(rg)}
}

func TestBuildGroups(t *testing.T) {
	r := sampleReport()
	require.Len(t, r.Groups, 1)
	g := r.Groups[0]
	assert.Equal(t, 1, g.Number)
	require.Len(t, g.Members, 3)
	assert.Nil(t, g.Members[0].Score)
	require.NotNil(t, g.Members[2].Score)
	assert.Equal(t, 0.5, g.Members[2].Score.SizeRatio)
	assert.Equal(t, 30, r.DuplicateLOC)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": FormatText, "markdown": FormatMarkdown, "md": FormatMarkdown, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestWriteFormats(t *testing.T) {
	color.NoColor = true
	r := sampleReport()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, r, FormatText))
		out := buf.String()
		assert.Contains(t, out, "1 duplicate groups, 30 redundant lines")
		assert.Contains(t, out, "src/Tile.tsx:5-24  Tile  sim 0.960  size 1.00  score 0.966")
		assert.Contains(t, out, "src/Card.tsx:1-20  Card  anchor")
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		r := r
		r.Groups = append([]Group(nil), r.Groups...)
		r.Groups[0].Advice = "Extract a shared `<Card>`."
		require.NoError(t, Write(&buf, r, FormatMarkdown))
		out := buf.String()
		assert.Contains(t, out, "## Group 1: component (avg similarity 0.950)")
		assert.Contains(t, out, "| `src/Panel.tsx:1-10` | Panel | 0.940 | 0.50 | 0.874 |")
		assert.Contains(t, out, "### Consolidation advice")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, r, FormatJSON))
		var decoded Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, r.Groups[0].Members[1].ID, decoded.Groups[0].Members[1].ID)
		assert.Equal(t, 30, decoded.DuplicateLOC)
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, Report{Threshold: 0.9}, FormatText))
		assert.Contains(t, buf.String(), "No duplicate groups")
	})
}

func TestWriteMatches(t *testing.T) {
	color.NoColor = true
	ms := Matches([]model.LocatedMatch{{
		ID:         "x",
		Similarity: 0.912,
		Metadata:   model.StoredChunkMetadata{FilePath: "src/X.tsx", StartLine: 3, EndLine: 9, Name: "X", Kind: model.KindHook},
	}})

	var buf bytes.Buffer
	require.NoError(t, WriteMatches(&buf, "Similar to src/Y.tsx:4", ms, FormatText))
	assert.Contains(t, buf.String(), "0.912  src/X.tsx:3-9  X (hook)")

	buf.Reset()
	require.NoError(t, WriteMatches(&buf, "Similar", nil, FormatMarkdown))
	assert.Contains(t, buf.String(), "No matches.")
}

func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal(Markdown(sampleReport()), 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Duplicate report")
}
