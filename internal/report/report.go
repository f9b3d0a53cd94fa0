// Package report renders duplicate groups and similarity matches as plain
// text, markdown, or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"dupescan/internal/duplicates"
	"dupescan/internal/model"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, markdown, or json)", s)
}

// Source supplies the per-group detail a report shows.
type Source interface {
	PairScores(g model.DuplicateGroup) []duplicates.PairScore
}

// Member is one chunk of a reported group.
type Member struct {
	ID        string                `json:"id"`
	FilePath  string                `json:"filePath"`
	Name      string                `json:"name"`
	Kind      model.ChunkKind       `json:"kind"`
	StartLine int                   `json:"startLine"`
	EndLine   int                   `json:"endLine"`
	Score     *model.DuplicateScore `json:"score,omitempty"`
}

// Group is a reported duplicate group.
type Group struct {
	Number        int             `json:"number"`
	Kind          model.ChunkKind `json:"kind"`
	AvgSimilarity float64         `json:"avgSimilarity"`
	Members       []Member        `json:"members"`
	Advice        string          `json:"advice,omitempty"`
}

// Report is the outcome of one scan.
type Report struct {
	Root         string  `json:"root"`
	Model        string  `json:"model"`
	Threshold    float64 `json:"threshold"`
	Files        int     `json:"files"`
	Chunks       int     `json:"chunks"`
	Groups       []Group `json:"groups"`
	DuplicateLOC int     `json:"duplicateLines"`
}

// BuildGroups attaches pair scores to groups, numbered from 1.
func BuildGroups(src Source, groups []model.DuplicateGroup) []Group {
	out := make([]Group, 0, len(groups))
	for i, g := range groups {
		scores := make(map[string]model.DuplicateScore)
		for _, s := range src.PairScores(g) {
			scores[s.ID] = s.Score
		}
		rg := Group{Number: i + 1, Kind: g.Kind, AvgSimilarity: g.AvgSimilarity}
		for _, m := range g.Members {
			member := Member{
				ID:        m.ID,
				FilePath:  m.Metadata.FilePath,
				Name:      m.Metadata.Name,
				Kind:      m.Metadata.Kind,
				StartLine: m.Metadata.StartLine,
				EndLine:   m.Metadata.EndLine,
			}
			if s, ok := scores[m.ID]; ok {
				member.Score = &s
			}
			rg.Members = append(rg.Members, member)
		}
		out = append(out, rg)
	}
	return out
}

// RedundantLines counts the lines every member but the first of each group
// repeats.
func RedundantLines(groups []Group) int {
	n := 0
	for _, g := range groups {
		if len(g.Members) < 2 {
			continue
		}
		for _, m := range g.Members[1:] {
			n += m.EndLine - m.StartLine + 1
		}
	}
	return n
}

// Write renders r in format f.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	default:
		return writeText(w, r)
	}
}

// Match is one similarity hit.
type Match struct {
	ID         string          `json:"id"`
	Similarity float64         `json:"similarity"`
	FilePath   string          `json:"filePath"`
	Name       string          `json:"name"`
	Kind       model.ChunkKind `json:"kind"`
	StartLine  int             `json:"startLine"`
	EndLine    int             `json:"endLine"`
}

// Matches converts located matches for rendering.
func Matches(ms []model.LocatedMatch) []Match {
	out := make([]Match, len(ms))
	for i, m := range ms {
		out[i] = Match{
			ID:         m.ID,
			Similarity: m.Similarity,
			FilePath:   m.Metadata.FilePath,
			Name:       m.Metadata.Name,
			Kind:       m.Metadata.Kind,
			StartLine:  m.Metadata.StartLine,
			EndLine:    m.Metadata.EndLine,
		}
	}
	return out
}

// WriteMatches renders similarity hits in format f.
func WriteMatches(w io.Writer, title string, ms []Match, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ms)
	case FormatMarkdown:
		_, err := io.WriteString(w, MatchesMarkdown(title, ms))
		return err
	default:
		return writeMatchesText(w, title, ms)
	}
}
