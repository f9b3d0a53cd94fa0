package metastore

import (
	"testing"

	"dupescan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := New()
	s.Set("b", model.StoredChunkMetadata{Name: "B"})
	s.Set("a", model.StoredChunkMetadata{Name: "A"})
	s.Set("b", model.StoredChunkMetadata{Name: "B2"})

	require.Equal(t, 2, s.Size())
	m, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "B2", m.Name)

	var order []string
	for id := range s.Entries() {
		order = append(order, id)
	}
	assert.Equal(t, []string{"b", "a"}, order)

	assert.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"))
	assert.False(t, s.Has("b"))
	_, ok = s.Get("b")
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Size())
}
