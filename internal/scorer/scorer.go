// Package scorer holds the pure scoring functions used to rank duplicates.
package scorer

import (
	"sort"

	"dupescan/internal/model"
)

// Weights of the combined duplicate score. Similarity dominates; size
// agreement corroborates.
const (
	SimilarityWeight = 0.85
	SizeWeight       = 0.15
)

// LineSpan is anything with a 1-based inclusive line range.
type LineSpan interface {
	LineRange() (start, end int)
}

func linesOf(s LineSpan) int {
	start, end := s.LineRange()
	n := end - start + 1
	if n < 1 {
		return 1
	}
	return n
}

// CalculateSizeRatio returns min(lines)/max(lines), always in (0, 1].
func CalculateSizeRatio(a, b LineSpan) float64 {
	la, lb := linesOf(a), linesOf(b)
	if la == lb {
		return 1
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

// CalculateDuplicateScore combines embedding similarity with size agreement.
func CalculateDuplicateScore(similarity float64, a, b LineSpan) model.DuplicateScore {
	ratio := CalculateSizeRatio(a, b)
	return model.DuplicateScore{
		Similarity:    similarity,
		SizeRatio:     ratio,
		CombinedScore: similarity*SimilarityWeight + ratio*SizeWeight,
	}
}

// CalculateGroupAverageSimilarity is the arithmetic mean, 0 for no input.
func CalculateGroupAverageSimilarity(similarities []float64) float64 {
	if len(similarities) == 0 {
		return 0
	}
	var sum float64
	for _, s := range similarities {
		sum += s
	}
	return sum / float64(len(similarities))
}

// SortDuplicateGroups orders groups by member count, then average
// similarity, both descending. The sort is stable and happens in place;
// the same slice is returned for chaining.
func SortDuplicateGroups(groups []model.DuplicateGroup) []model.DuplicateGroup {
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		return groups[i].AvgSimilarity > groups[j].AvgSimilarity
	})
	return groups
}
