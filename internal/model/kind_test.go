package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("class")
	assert.Error(t, err)
}

func TestSplitKinds(t *testing.T) {
	tests := []struct {
		kind    ChunkKind
		summary ChunkKind
		section ChunkKind
	}{
		{KindComponent, KindComponentSummary, KindJSXSection},
		{KindJSXFragment, KindComponentSummary, KindJSXSection},
		{KindHook, KindFunctionSummary, KindFunctionSection},
		{KindFunction, KindFunctionSummary, KindFunctionSection},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			summary, section := tt.kind.SplitKinds()
			assert.Equal(t, tt.summary, summary)
			assert.Equal(t, tt.section, section)
			assert.True(t, summary.IsSummary())
			assert.True(t, section.IsSection())
		})
	}
}

func TestChunkID(t *testing.T) {
	a := ChunkID("src/a.tsx", "const x = 1")
	assert.Equal(t, a, ChunkID("src/a.tsx", "const x = 1"))
	assert.NotEqual(t, a, ChunkID("src/b.tsx", "const x = 1"))
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
}

func TestStoredContains(t *testing.T) {
	m := StoredChunkMetadata{StartLine: 10, EndLine: 20}
	assert.True(t, m.Contains(10))
	assert.True(t, m.Contains(20))
	assert.False(t, m.Contains(9))
	assert.False(t, m.Contains(21))
}
