package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Metadata describes what a chunk references.
//
// JSXElements is nil exactly for summary chunks; every other chunk carries a
// non-nil (possibly empty) slice. Sections leave Props nil.
type Metadata struct {
	Props           []string `json:"props"`
	JSXElements     []string `json:"jsxElements"`
	Hooks           []string `json:"hooks"`
	IsExported      bool     `json:"isExported"`
	IsDefaultExport bool     `json:"isDefaultExport"`
}

// HasJSXElements reports whether the element list is present.
func (m Metadata) HasJSXElements() bool { return m.JSXElements != nil }

// SectionInfo ties a section chunk to its summary.
type SectionInfo struct {
	ParentID string `json:"parentId"`
	Index    int    `json:"sectionIndex"`
	Label    string `json:"sectionLabel"`
}

// Chunk is a named, located, self-contained unit of source text.
type Chunk struct {
	ID          string    `json:"id"`
	Kind        ChunkKind `json:"kind"`
	Name        string    `json:"name"`
	FilePath    string    `json:"filePath"`
	StartLine   int       `json:"startLine"`
	EndLine     int       `json:"endLine"`
	StartColumn int       `json:"startColumn"`
	EndColumn   int       `json:"endColumn"`
	Content     string    `json:"content"`
	Metadata    Metadata  `json:"metadata"`

	// Section is set only on section chunks.
	Section *SectionInfo `json:"section,omitempty"`
}

// ParentID returns the summary id of a section chunk, or "".
func (c Chunk) ParentID() string {
	if c.Section == nil {
		return ""
	}
	return c.Section.ParentID
}

// LineRange returns the 1-based inclusive line span.
func (c Chunk) LineRange() (start, end int) { return c.StartLine, c.EndLine }

// Lines returns the number of lines the chunk spans.
func (c Chunk) Lines() int { return c.EndLine - c.StartLine + 1 }

// ChunkID derives the stable identifier for content found at path.
func ChunkID(path, content string) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes content alone, independent of where it lives.
func ContentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// StoredChunkMetadata is the subset of a chunk kept next to its vector.
type StoredChunkMetadata struct {
	FilePath    string    `json:"filePath"`
	StartLine   int       `json:"startLine"`
	EndLine     int       `json:"endLine"`
	StartColumn int       `json:"startColumn"`
	EndColumn   int       `json:"endColumn"`
	Kind        ChunkKind `json:"kind"`
	Name        string    `json:"name"`
	ContentHash string    `json:"contentHash"`
	Metadata    Metadata  `json:"metadata"`
}

// Stored converts a chunk into its stored form.
func (c Chunk) Stored() StoredChunkMetadata {
	return StoredChunkMetadata{
		FilePath:    c.FilePath,
		StartLine:   c.StartLine,
		EndLine:     c.EndLine,
		StartColumn: c.StartColumn,
		EndColumn:   c.EndColumn,
		Kind:        c.Kind,
		Name:        c.Name,
		ContentHash: ContentHash(c.Content),
		Metadata:    c.Metadata,
	}
}

// LineRange returns the 1-based inclusive line span.
func (m StoredChunkMetadata) LineRange() (start, end int) { return m.StartLine, m.EndLine }

// Contains reports whether line falls inside the span.
func (m StoredChunkMetadata) Contains(line int) bool {
	return line >= m.StartLine && line <= m.EndLine
}
