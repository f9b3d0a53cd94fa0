// Package duplicates discovers groups of near-duplicate chunks and answers
// similarity queries over the vector and metadata stores.
package duplicates

import (
	"iter"
	"runtime"
	"strings"

	"dupescan/internal/metastore"
	"dupescan/internal/model"
	"dupescan/internal/scorer"
	"dupescan/internal/vectorstore"

	"golang.org/x/sync/errgroup"
)

// Defaults for duplicate grouping.
const (
	DefaultThreshold    = 0.9
	DefaultMinGroupSize = 2
)

// VectorIndex is the read side of a vector store.
type VectorIndex interface {
	Has(id string) bool
	Get(id string) ([]float32, bool)
	SimilarityByID(a, b string) float64
	TopK(query []float32, k int, opts ...vectorstore.QueryOption) []model.Match
}

// MetadataIndex is the read side of a metadata store.
type MetadataIndex interface {
	Get(id string) (model.StoredChunkMetadata, bool)
	Entries() iter.Seq2[string, model.StoredChunkMetadata]
}

var (
	_ VectorIndex   = (*vectorstore.Store)(nil)
	_ MetadataIndex = (*metastore.Store)(nil)
)

// Options controls FindDuplicateGroups.
type Options struct {
	// Threshold is the minimum cosine similarity for an edge.
	Threshold float64
	// MinGroupSize drops smaller connected components.
	MinGroupSize int
	// Kind restricts grouping to one partition. Empty groups every kind
	// separately.
	Kind model.ChunkKind
	// ExcludePaths drops candidates whose file path contains any entry.
	ExcludePaths []string
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		MinGroupSize: DefaultMinGroupSize,
	}
}

type partition struct {
	kind model.ChunkKind
	ids  []string
}

// FindDuplicateGroups builds a similarity graph per kind partition and
// returns its connected components as duplicate groups, largest and most
// similar first. Partitions are compared on separate goroutines; the stores
// must not be written to while this runs.
func FindDuplicateGroups(vs VectorIndex, ms MetadataIndex, opts Options) []model.DuplicateGroup {
	parts := partitionCandidates(vs, ms, opts)

	results := make([][]model.DuplicateGroup, len(parts))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range parts {
		g.Go(func() error {
			results[i] = groupPartition(vs, ms, p, opts)
			return nil
		})
	}
	_ = g.Wait()

	var groups []model.DuplicateGroup
	for _, r := range results {
		groups = append(groups, r...)
	}
	return scorer.SortDuplicateGroups(groups)
}

// partitionCandidates splits eligible ids by kind, keeping first-seen order
// for both partitions and their members.
func partitionCandidates(vs VectorIndex, ms MetadataIndex, opts Options) []partition {
	var parts []partition
	byKind := make(map[model.ChunkKind]int)
	for id, m := range ms.Entries() {
		if opts.Kind != "" && m.Kind != opts.Kind {
			continue
		}
		if excluded(m.FilePath, opts.ExcludePaths) {
			continue
		}
		if !vs.Has(id) {
			continue
		}
		i, ok := byKind[m.Kind]
		if !ok {
			i = len(parts)
			byKind[m.Kind] = i
			parts = append(parts, partition{kind: m.Kind})
		}
		parts[i].ids = append(parts[i].ids, id)
	}
	return parts
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func groupPartition(vs VectorIndex, ms MetadataIndex, p partition, opts Options) []model.DuplicateGroup {
	n := len(p.ids)
	minSize := max(opts.MinGroupSize, 1)
	if n < minSize {
		return nil
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if vs.SimilarityByID(p.ids[i], p.ids[j]) >= opts.Threshold {
				uf.union(i, j)
			}
		}
	}

	var groups []model.DuplicateGroup
	for _, comp := range uf.components() {
		if len(comp) < minSize {
			continue
		}
		sims := make([]float64, 0, len(comp)*(len(comp)-1)/2)
		for a := 0; a < len(comp); a++ {
			for b := a + 1; b < len(comp); b++ {
				sims = append(sims, vs.SimilarityByID(p.ids[comp[a]], p.ids[comp[b]]))
			}
		}
		members := make([]model.GroupMember, len(comp))
		for k, idx := range comp {
			id := p.ids[idx]
			m, _ := ms.Get(id)
			members[k] = model.GroupMember{ID: id, Metadata: m}
		}
		groups = append(groups, model.DuplicateGroup{
			Kind:          p.kind,
			Members:       members,
			AvgSimilarity: scorer.CalculateGroupAverageSimilarity(sims),
		})
	}
	return groups
}
