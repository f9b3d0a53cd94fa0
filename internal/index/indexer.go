// Package index scans a project into in-memory vector and metadata stores
// and answers duplicate and similarity queries over them.
package index

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"dupescan/internal/chunker"
	"dupescan/internal/chunker/languages"
	"dupescan/internal/duplicates"
	"dupescan/internal/embedder"
	"dupescan/internal/embedinput"
	"dupescan/internal/metastore"
	"dupescan/internal/model"
	"dupescan/internal/vectorstore"
)

// DefaultBatchSize is the number of texts sent per embedding request.
const DefaultBatchSize = 32

// ProgressFunc receives pipeline progress. total may grow while the walk
// is still running.
type ProgressFunc func(phase string, processed, total int)

// Config holds the indexer configuration.
type Config struct {
	Chunk      chunker.Options
	Embed      embedinput.Options
	BatchSize  int
	Workers    int
	Ignore     []string
	OnProgress ProgressFunc
}

// stores is one scan's worth of chunks. A scan fills fresh stores and
// swaps them in whole, so queries never see a half-built index.
type stores struct {
	vectors  *vectorstore.Store
	meta     *metastore.Store
	contents map[string]string
}

func newStores() *stores {
	return &stores{
		vectors:  vectorstore.New(),
		meta:     metastore.New(),
		contents: make(map[string]string),
	}
}

func (s *stores) add(chunks []model.Chunk, vecs [][]float32) {
	for i, c := range chunks {
		s.vectors.Add(c.ID, vecs[i])
		s.meta.Set(c.ID, c.Stored())
		s.contents[c.ID] = c.Content
	}
}

// Indexer owns one project's stores and answers queries over the last
// completed scan.
type Indexer struct {
	mu   sync.RWMutex
	root string
	cur  *stores

	embedder embedder.Embedder
	chunker  *chunker.ASTChunker
	registry *chunker.Registry
	config   Config
}

// New creates an Indexer that embeds with emb.
func New(emb embedder.Embedder, cfg Config) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	reg := languages.Default()
	return &Indexer{
		cur:      newStores(),
		embedder: emb,
		chunker:  chunker.NewASTChunker(reg),
		registry: reg,
		config:   cfg,
	}
}

// Index chunks and embeds every source file under root. Each call starts
// from scratch; on success the new stores replace the previous scan, on
// failure the previous scan stays queryable.
func (idx *Indexer) Index(ctx context.Context, root string) (*Stats, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	next := newStores()
	stats, err := idx.runPipeline(ctx, absRoot, next)
	if err != nil {
		return stats, err
	}

	idx.mu.Lock()
	idx.root = absRoot
	idx.cur = next
	idx.mu.Unlock()
	return stats, nil
}

// Root returns the absolute path of the last scanned project.
func (idx *Indexer) Root() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.root
}

// Model returns the embedding model name.
func (idx *Indexer) Model() string { return idx.embedder.Model() }

// Size returns the number of indexed chunks.
func (idx *Indexer) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.cur.meta.Size()
}

// Duplicates groups near-duplicate chunks.
func (idx *Indexer) Duplicates(opts duplicates.Options) []model.DuplicateGroup {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return duplicates.FindDuplicateGroups(idx.cur.vectors, idx.cur.meta, opts)
}

// PairScores scores every member of g against the group's first member.
func (idx *Indexer) PairScores(g model.DuplicateGroup) []duplicates.PairScore {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return duplicates.PairScores(idx.cur.vectors, g)
}

// SimilarToLocation finds chunks similar to the one covering path:line.
// path may be absolute or relative to the scanned root.
func (idx *Indexer) SimilarToLocation(path string, line int, opts duplicates.SimilarOptions) []model.LocatedMatch {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return duplicates.FindSimilarToLocation(idx.cur.vectors, idx.cur.meta, idx.relPath(path), line, opts)
}

// SimilarToQuery embeds free text and returns the nearest chunks.
func (idx *Indexer) SimilarToQuery(ctx context.Context, text string, opts duplicates.SimilarOptions) ([]model.LocatedMatch, error) {
	vec, err := embedder.EmbedSingle(ctx, idx.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	matches := duplicates.FindSimilarToQuery(idx.cur.vectors, vec, opts)
	out := make([]model.LocatedMatch, 0, len(matches))
	for _, m := range matches {
		meta, ok := idx.cur.meta.Get(m.ID)
		if !ok {
			continue
		}
		out = append(out, model.LocatedMatch{ID: m.ID, Similarity: m.Similarity, Metadata: meta})
	}
	return out, nil
}

// Metadata returns the stored metadata of a chunk.
func (idx *Indexer) Metadata(id string) (model.StoredChunkMetadata, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.cur.meta.Get(id)
}

// Content returns the source text of a chunk.
func (idx *Indexer) Content(id string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	c, ok := idx.cur.contents[id]
	return c, ok
}

// Record is one indexed chunk with everything known about it.
type Record struct {
	ID       string
	Metadata model.StoredChunkMetadata
	Content  string
	Vector   []float32
}

// Records lists every indexed chunk in insertion order.
func (idx *Indexer) Records() []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Record, 0, idx.cur.meta.Size())
	for id, meta := range idx.cur.meta.Entries() {
		vec, _ := idx.cur.vectors.Get(id)
		out = append(out, Record{ID: id, Metadata: meta, Content: idx.cur.contents[id], Vector: vec})
	}
	return out
}

// relPath maps a user-supplied path onto the slash-separated form stored in
// metadata. Callers hold mu.
func (idx *Indexer) relPath(p string) string {
	if filepath.IsAbs(p) && idx.root != "" {
		if rel, err := filepath.Rel(idx.root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}
