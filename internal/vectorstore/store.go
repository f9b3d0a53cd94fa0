// Package vectorstore keeps embedding vectors in memory and answers
// brute-force cosine similarity queries over them.
package vectorstore

import (
	"iter"
	"sort"

	"dupescan/internal/model"
)

// slot locates one vector inside the arena.
type slot struct {
	id  string
	off int
	dim int
}

// Store is an in-memory vector collection keyed by chunk id. Vectors live
// back to back in a single arena; slots keep insertion order.
//
// A Store is not safe for concurrent writes. Concurrent reads are fine once
// writes have stopped.
type Store struct {
	arena   []float32
	slots   []slot
	index   map[string]int
	garbage int
}

// New creates an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts or replaces the vector for id. A replaced vector keeps its
// original insertion position.
func (s *Store) Add(id string, vec []float32) {
	if i, ok := s.index[id]; ok {
		sl := &s.slots[i]
		if sl.dim == len(vec) {
			copy(s.arena[sl.off:sl.off+sl.dim], vec)
			return
		}
		s.garbage += sl.dim
		sl.off = len(s.arena)
		sl.dim = len(vec)
		s.arena = append(s.arena, vec...)
		s.maybeCompact()
		return
	}
	s.index[id] = len(s.slots)
	s.slots = append(s.slots, slot{id: id, off: len(s.arena), dim: len(vec)})
	s.arena = append(s.arena, vec...)
}

// Get returns a copy of the vector stored for id.
func (s *Store) Get(id string) ([]float32, bool) {
	v, ok := s.view(id)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Has reports whether a vector is stored for id.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// view returns the arena slice for id without copying.
func (s *Store) view(id string) ([]float32, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.at(i), true
}

func (s *Store) at(i int) []float32 {
	sl := s.slots[i]
	return s.arena[sl.off : sl.off+sl.dim : sl.off+sl.dim]
}

// Remove deletes the vector for id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.garbage += s.slots[i].dim
	delete(s.index, id)
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
	for j := i; j < len(s.slots); j++ {
		s.index[s.slots[j].id] = j
	}
	s.maybeCompact()
	return true
}

// Clear removes every vector.
func (s *Store) Clear() {
	s.arena = nil
	s.slots = nil
	s.index = make(map[string]int)
	s.garbage = 0
}

// Size returns the number of stored vectors.
func (s *Store) Size() int { return len(s.slots) }

// Dimension returns the length of the first stored vector, or 0.
func (s *Store) Dimension() int {
	if len(s.slots) == 0 {
		return 0
	}
	return s.slots[0].dim
}

// Entries iterates vectors in insertion order. The yielded slices alias
// store memory and must not be modified or retained across writes.
func (s *Store) Entries() iter.Seq2[string, []float32] {
	return func(yield func(string, []float32) bool) {
		for i := range s.slots {
			if !yield(s.slots[i].id, s.at(i)) {
				return
			}
		}
	}
}

// maybeCompact rewrites the arena once more than half of it is dead space.
func (s *Store) maybeCompact() {
	if s.garbage == 0 || s.garbage*2 < len(s.arena) {
		return
	}
	live := make([]float32, 0, len(s.arena)-s.garbage)
	for i := range s.slots {
		v := s.at(i)
		s.slots[i].off = len(live)
		live = append(live, v...)
	}
	s.arena = live
	s.garbage = 0
}

// SimilarityByID returns the cosine similarity of two stored vectors, or 0
// when either id is unknown.
func (s *Store) SimilarityByID(a, b string) float64 {
	va, ok := s.view(a)
	if !ok {
		return 0
	}
	vb, ok := s.view(b)
	if !ok {
		return 0
	}
	return Cosine(va, vb)
}

// SimilarityTo returns the cosine similarity of a stored vector and v, or 0
// when id is unknown.
func (s *Store) SimilarityTo(id string, v []float32) float64 {
	va, ok := s.view(id)
	if !ok {
		return 0
	}
	return Cosine(va, v)
}

type queryConfig struct {
	threshold    float64
	hasThreshold bool
	exclude      map[string]bool
}

// QueryOption tunes TopK.
type QueryOption func(*queryConfig)

// WithThreshold drops results whose similarity is below t.
func WithThreshold(t float64) QueryOption {
	return func(c *queryConfig) {
		c.threshold = t
		c.hasThreshold = true
	}
}

// WithExclude drops the given ids from the results.
func WithExclude(ids ...string) QueryOption {
	return func(c *queryConfig) {
		if c.exclude == nil {
			c.exclude = make(map[string]bool, len(ids))
		}
		for _, id := range ids {
			c.exclude[id] = true
		}
	}
}

// TopK returns up to k stored vectors most similar to query, ordered by
// similarity descending with ties in insertion order. k <= 0 yields nil.
func (s *Store) TopK(query []float32, k int, opts ...QueryOption) []model.Match {
	if k <= 0 {
		return nil
	}
	var cfg queryConfig
	for _, o := range opts {
		o(&cfg)
	}

	matches := make([]model.Match, 0, len(s.slots))
	for i := range s.slots {
		id := s.slots[i].id
		if cfg.exclude[id] {
			continue
		}
		sim := Cosine(query, s.at(i))
		if cfg.hasThreshold && sim < cfg.threshold {
			continue
		}
		matches = append(matches, model.Match{ID: id, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
