package scorer

import (
	"testing"

	"dupescan/internal/model"

	"github.com/stretchr/testify/assert"
)

type span struct{ start, end int }

func (s span) LineRange() (int, int) { return s.start, s.end }

func TestCalculateSizeRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b span
		want float64
	}{
		{"equal spans", span{1, 10}, span{20, 29}, 1},
		{"single lines", span{5, 5}, span{9, 9}, 1},
		{"half", span{1, 10}, span{1, 20}, 0.5},
		{"order independent", span{1, 20}, span{1, 10}, 0.5},
		{"degenerate span counts as one line", span{10, 9}, span{1, 2}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSizeRatio(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Greater(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestCalculateSizeRatio_Self(t *testing.T) {
	c := model.Chunk{StartLine: 3, EndLine: 41}
	assert.Equal(t, 1.0, CalculateSizeRatio(c, c))
}

func TestCalculateDuplicateScore(t *testing.T) {
	a := model.Chunk{StartLine: 1, EndLine: 10}
	b := model.Chunk{StartLine: 11, EndLine: 20}

	score := CalculateDuplicateScore(0.9, a, b)
	assert.Equal(t, 0.9, score.Similarity)
	assert.Equal(t, 1.0, score.SizeRatio)
	assert.InDelta(t, 0.915, score.CombinedScore, 1e-9)
}

func TestCalculateGroupAverageSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, CalculateGroupAverageSimilarity(nil))
	assert.Equal(t, 0.0, CalculateGroupAverageSimilarity([]float64{}))
	assert.InDelta(t, 0.9, CalculateGroupAverageSimilarity([]float64{0.8, 1.0}), 1e-9)
}

func group(members int, avg float64) model.DuplicateGroup {
	return model.DuplicateGroup{
		Kind:          model.KindComponent,
		Members:       make([]model.GroupMember, members),
		AvgSimilarity: avg,
	}
}

func TestSortDuplicateGroups(t *testing.T) {
	t.Run("member count first", func(t *testing.T) {
		got := SortDuplicateGroups([]model.DuplicateGroup{group(2, 0.9), group(3, 0.8)})
		assert.Len(t, got[0].Members, 3)
		assert.Len(t, got[1].Members, 2)
	})

	t.Run("similarity breaks ties", func(t *testing.T) {
		got := SortDuplicateGroups([]model.DuplicateGroup{group(2, 0.8), group(2, 0.9)})
		assert.Equal(t, 0.9, got[0].AvgSimilarity)
		assert.Equal(t, 0.8, got[1].AvgSimilarity)
	})

	t.Run("stable on full ties", func(t *testing.T) {
		first := group(2, 0.9)
		first.Kind = model.KindHook
		second := group(2, 0.9)
		got := SortDuplicateGroups([]model.DuplicateGroup{first, second})
		assert.Equal(t, model.KindHook, got[0].Kind)
		assert.Equal(t, model.KindComponent, got[1].Kind)
	})
}
