// Package metastore keeps chunk descriptors keyed by chunk id.
package metastore

import (
	"iter"

	"dupescan/internal/model"
)

// Store is an in-memory, insertion-ordered map of chunk metadata.
// It is not safe for concurrent writes.
type Store struct {
	ids   []string
	items map[string]model.StoredChunkMetadata
}

// New creates an empty store.
func New() *Store {
	return &Store{items: make(map[string]model.StoredChunkMetadata)}
}

// Set inserts or replaces metadata for id.
func (s *Store) Set(id string, m model.StoredChunkMetadata) {
	if _, ok := s.items[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.items[id] = m
}

// Get returns the metadata for id.
func (s *Store) Get(id string) (model.StoredChunkMetadata, bool) {
	m, ok := s.items[id]
	return m, ok
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Delete removes id and reports whether it was present.
func (s *Store) Delete(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes everything.
func (s *Store) Clear() {
	s.ids = nil
	s.items = make(map[string]model.StoredChunkMetadata)
}

// Size returns the number of entries.
func (s *Store) Size() int { return len(s.ids) }

// Entries iterates in insertion order.
func (s *Store) Entries() iter.Seq2[string, model.StoredChunkMetadata] {
	return func(yield func(string, model.StoredChunkMetadata) bool) {
		for _, id := range s.ids {
			if !yield(id, s.items[id]) {
				return
			}
		}
	}
}
