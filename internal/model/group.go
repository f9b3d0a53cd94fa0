package model

// DuplicateScore is the per-pair score of two chunks.
type DuplicateScore struct {
	Similarity    float64 `json:"similarity"`
	SizeRatio     float64 `json:"sizeRatio"`
	CombinedScore float64 `json:"combinedScore"`
}

// GroupMember is one chunk inside a duplicate group.
type GroupMember struct {
	ID       string              `json:"id"`
	Metadata StoredChunkMetadata `json:"metadata"`
}

// DuplicateGroup is a connected set of same-kind chunks whose embeddings
// are similar above a threshold.
type DuplicateGroup struct {
	Kind          ChunkKind     `json:"kind"`
	Members       []GroupMember `json:"members"`
	AvgSimilarity float64       `json:"avgSimilarity"`
}

// Match is a nearest-neighbour result.
type Match struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
}

// LocatedMatch is a Match resolved to its stored metadata.
type LocatedMatch struct {
	ID         string              `json:"id"`
	Similarity float64             `json:"similarity"`
	Metadata   StoredChunkMetadata `json:"metadata"`
}
