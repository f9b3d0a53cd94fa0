package duplicates

import (
	"path/filepath"
	"strings"

	"dupescan/internal/model"
	"dupescan/internal/scorer"
	"dupescan/internal/vectorstore"
)

// Defaults for similarity queries.
const (
	DefaultSimilarThreshold = 0.8
	DefaultSimilarLimit     = 10
)

// SimilarOptions controls the nearest-neighbour queries. A Limit of zero or
// less means DefaultSimilarLimit.
type SimilarOptions struct {
	Threshold float64
	Limit     int
}

func (o SimilarOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultSimilarLimit
	}
	return o.Limit
}

// DefaultSimilarOptions returns the documented defaults.
func DefaultSimilarOptions() SimilarOptions {
	return SimilarOptions{Threshold: DefaultSimilarThreshold, Limit: DefaultSimilarLimit}
}

// ResolveLocation finds the chunk at filePath covering line. A chunk that
// starts exactly on line wins over one that merely contains it; otherwise
// the first containing chunk in store order is used.
func ResolveLocation(ms MetadataIndex, filePath string, line int) (string, model.StoredChunkMetadata, bool) {
	var (
		firstID string
		first   model.StoredChunkMetadata
		found   bool
	)
	for id, m := range ms.Entries() {
		if !samePath(m.FilePath, filePath) || !m.Contains(line) {
			continue
		}
		if m.StartLine == line {
			return id, m, true
		}
		if !found {
			firstID, first, found = id, m, true
		}
	}
	return firstID, first, found
}

// samePath matches identical paths, or a stored path that ends with the
// query on a path-segment boundary.
func samePath(stored, query string) bool {
	stored = filepath.ToSlash(filepath.Clean(stored))
	query = filepath.ToSlash(filepath.Clean(query))
	if stored == query {
		return true
	}
	return strings.HasSuffix(stored, "/"+strings.TrimPrefix(query, "./"))
}

// FindSimilarToLocation returns the chunks most similar to the chunk found
// at filePath:line, excluding that chunk. An unknown location yields nil.
func FindSimilarToLocation(vs VectorIndex, ms MetadataIndex, filePath string, line int, opts SimilarOptions) []model.LocatedMatch {
	id, _, ok := ResolveLocation(ms, filePath, line)
	if !ok {
		return nil
	}
	vec, ok := vs.Get(id)
	if !ok {
		return nil
	}

	var out []model.LocatedMatch
	for _, m := range vs.TopK(vec, opts.limit(), vectorstore.WithThreshold(opts.Threshold), vectorstore.WithExclude(id)) {
		meta, ok := ms.Get(m.ID)
		if !ok {
			continue
		}
		out = append(out, model.LocatedMatch{ID: m.ID, Similarity: m.Similarity, Metadata: meta})
	}
	return out
}

// FindSimilarToQuery returns stored vectors most similar to query.
func FindSimilarToQuery(vs VectorIndex, query []float32, opts SimilarOptions) []model.Match {
	return vs.TopK(query, opts.limit(), vectorstore.WithThreshold(opts.Threshold))
}

// PairScore is a group member's score against the group's first member.
type PairScore struct {
	ID    string               `json:"id"`
	Score model.DuplicateScore `json:"score"`
}

// PairScores scores every member after the first against the first one.
func PairScores(vs VectorIndex, g model.DuplicateGroup) []PairScore {
	if len(g.Members) < 2 {
		return nil
	}
	anchor := g.Members[0]
	out := make([]PairScore, 0, len(g.Members)-1)
	for _, m := range g.Members[1:] {
		sim := vs.SimilarityByID(anchor.ID, m.ID)
		out = append(out, PairScore{
			ID:    m.ID,
			Score: scorer.CalculateDuplicateScore(sim, anchor.Metadata, m.Metadata),
		})
	}
	return out
}
