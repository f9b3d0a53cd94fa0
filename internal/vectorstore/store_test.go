package vectorstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestStore_AddGetRemove(t *testing.T) {
	s := New()
	s.Add("a", []float32{1, 0})
	s.Add("b", []float32{0, 1})
	require.Equal(t, 2, s.Size())

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, v)

	// Get returns a copy.
	v[0] = 42
	v2, _ := s.Get("a")
	assert.Equal(t, float32(1), v2[0])

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, 1, s.Size())
	v, ok = s.Get("b")
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1}, v)

	s.Clear()
	assert.Equal(t, 0, s.Size())
	assert.False(t, s.Has("b"))
}

func TestStore_ReplaceKeepsPosition(t *testing.T) {
	s := New()
	s.Add("a", []float32{1, 0})
	s.Add("b", []float32{1, 0})
	s.Add("a", []float32{1, 0, 0})

	var ids []string
	for id, v := range s.Entries() {
		ids = append(ids, id)
		if id == "a" {
			assert.Len(t, v, 3)
		}
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestStore_CompactsAfterRemovals(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Add(fmt.Sprintf("v%d", i), []float32{float32(i), 1})
	}
	for i := 0; i < 8; i++ {
		s.Remove(fmt.Sprintf("v%d", i))
	}
	assert.Equal(t, 2, s.Size())
	assert.Len(t, s.arena, 4)

	v, ok := s.Get("v9")
	require.True(t, ok)
	assert.Equal(t, []float32{9, 1}, v)
}

func TestStore_SimilarityByID(t *testing.T) {
	s := New()
	s.Add("a", []float32{1, 0})
	s.Add("b", []float32{1, 0})
	assert.InDelta(t, 1.0, s.SimilarityByID("a", "b"), 1e-9)
	assert.Equal(t, 0.0, s.SimilarityByID("a", "missing"))
	assert.InDelta(t, 0.0, s.SimilarityTo("a", []float32{0, 1}), 1e-9)
}

func TestStore_TopK(t *testing.T) {
	s := New()
	s.Add("x", []float32{1, 0})
	s.Add("tie1", []float32{0, 1})
	s.Add("tie2", []float32{0, 2})
	s.Add("near", []float32{1, 0.1})

	got := s.TopK([]float32{1, 0}, 10)
	require.Len(t, got, 4)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "near", got[1].ID)
	assert.Equal(t, "tie1", got[2].ID)
	assert.Equal(t, "tie2", got[3].ID)

	got = s.TopK([]float32{1, 0}, 10, WithThreshold(0.5))
	require.Len(t, got, 2)

	got = s.TopK([]float32{1, 0}, 1, WithExclude("x"))
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].ID)

	assert.Nil(t, s.TopK([]float32{1, 0}, 0))
}
