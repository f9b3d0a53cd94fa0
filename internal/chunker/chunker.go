package chunker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"dupescan/internal/model"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrSyntax is returned by Chunk when the parser recovered from errors.
var ErrSyntax = errors.New("source has syntax errors")

// SplitStrategy controls size-based splitting.
type SplitStrategy string

const (
	SplitAuto SplitStrategy = "auto"
	SplitNone SplitStrategy = "none"
)

// DefaultMinLines is used when Options.MinLines is not positive.
const DefaultMinLines = 3

// DefaultMaxLines is the split threshold of DefaultOptions.
const DefaultMaxLines = 150

// Options controls extraction.
type Options struct {
	// MinLines drops units (and split sections) shorter than this.
	MinLines int
	// MaxLines is the size above which a unit is split into a summary and
	// sections. Zero disables splitting.
	MaxLines int
	// Kinds keeps only chunks of these kinds. A split unit is matched by
	// its summary and section kinds, never by its own.
	Kinds         []model.ChunkKind
	SplitStrategy SplitStrategy
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MinLines:      DefaultMinLines,
		MaxLines:      DefaultMaxLines,
		SplitStrategy: SplitAuto,
	}
}

func (o Options) minLines() int {
	if o.MinLines <= 0 {
		return DefaultMinLines
	}
	return o.MinLines
}

func (o Options) splitting() bool {
	return o.SplitStrategy != SplitNone && o.MaxLines > 0
}

// ASTChunker parses source files using tree-sitter and extracts semantic chunks.
type ASTChunker struct {
	registry *Registry
}

// NewASTChunker creates a chunker backed by the given registry.
func NewASTChunker(r *Registry) *ASTChunker {
	return &ASTChunker{registry: r}
}

// Extract returns the chunks of one file. Unsupported, empty, or
// unparseable sources yield no chunks; Extract never fails.
func (c *ASTChunker) Extract(path string, src []byte, opts Options) []model.Chunk {
	chunks, err := c.Chunk(path, src, opts)
	if err != nil {
		return nil
	}
	return chunks
}

// Chunk is Extract with the reason for an empty result exposed. Files with
// no registered grammar return nil, nil.
func (c *ASTChunker) Chunk(path string, src []byte, opts Options) ([]model.Chunk, error) {
	spec := c.registry.Lookup(path)
	if spec == nil {
		return nil, nil
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: %w", path, ErrSyntax)
	}

	q, err := c.registry.query(spec)
	if err != nil {
		return nil, err
	}

	f := &file{
		path:       path,
		src:        src,
		query:      q,
		lineStarts: lineStarts(src),
	}

	var chunks []model.Chunk
	for _, u := range discoverUnits(root, src) {
		if u.span.lines() < opts.minLines() {
			continue
		}
		kind := classify(u)
		if !wantUnit(kind, opts.Kinds) {
			continue
		}
		for _, ch := range f.unitChunks(u, kind, opts) {
			if wantChunk(ch.Kind, opts.Kinds) {
				chunks = append(chunks, ch)
			}
		}
	}
	return chunks, nil
}

func wantUnit(kind model.ChunkKind, kinds []model.ChunkKind) bool {
	if len(kinds) == 0 || slices.Contains(kinds, kind) {
		return true
	}
	summary, section := kind.SplitKinds()
	return slices.Contains(kinds, summary) || slices.Contains(kinds, section)
}

func wantChunk(kind model.ChunkKind, kinds []model.ChunkKind) bool {
	return len(kinds) == 0 || slices.Contains(kinds, kind)
}

// file is the per-parse state shared by unit analysis and splitting.
type file struct {
	path       string
	src        []byte
	query      *sitter.Query
	lineStarts []uint32
}

func (f *file) text(s span) string {
	return string(f.src[s.startByte:s.endByte])
}

// unitChunks turns one unit into a whole chunk, or into a summary plus
// sections when it is too long.
func (f *file) unitChunks(u unit, kind model.ChunkKind, opts Options) []model.Chunk {
	tags, hooks := f.collectNames(u.fn, u.span.start.Row, u.span.end.Row)
	props := paramNames(u.fn, f.src)

	if opts.splitting() && u.span.lines() > opts.MaxLines {
		if split := f.split(u, kind, props, hooks, opts); len(split) > 0 {
			return split
		}
	}

	content := f.text(u.span)
	return []model.Chunk{f.newChunk(kind, u, u.span, content, model.Metadata{
		Props:           props,
		JSXElements:     tags,
		Hooks:           hooks,
		IsExported:      u.exported,
		IsDefaultExport: u.defaultExport,
	})}
}

func (f *file) newChunk(kind model.ChunkKind, u unit, s span, content string, meta model.Metadata) model.Chunk {
	return model.Chunk{
		ID:          model.ChunkID(f.path, content),
		Kind:        kind,
		Name:        u.name,
		FilePath:    f.path,
		StartLine:   int(s.start.Row) + 1,
		EndLine:     int(s.end.Row) + 1,
		StartColumn: int(s.start.Column) + 1,
		EndColumn:   max(int(s.end.Column), 1),
		Content:     content,
		Metadata:    meta,
	}
}

// collectNames runs the language query over n and returns the distinct
// markup tags and hook calls whose nodes start within [fromRow, toRow].
// Both slices are non-nil.
func (f *file) collectNames(n *sitter.Node, fromRow, toRow uint32) (tags, hooks []string) {
	tags, hooks = []string{}, []string{}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(f.query, n)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range m.Captures {
			row := capture.Node.StartPoint().Row
			if row < fromRow || row > toRow {
				continue
			}
			name := capture.Node.Content(f.src)
			switch f.query.CaptureNameForId(capture.Index) {
			case "tag":
				if !slices.Contains(tags, name) {
					tags = append(tags, name)
				}
			case "call":
				if isHookName(name) && !slices.Contains(hooks, name) {
					hooks = append(hooks, name)
				}
			}
		}
	}
	return tags, hooks
}

// lineStarts returns the byte offset at which every line begins.
func lineStarts(src []byte) []uint32 {
	starts := []uint32{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return starts
}

// lineEnd returns the byte offset just before the newline ending row.
func (f *file) lineEnd(row uint32) uint32 {
	if int(row)+1 < len(f.lineStarts) {
		end := f.lineStarts[row+1] - 1
		if end > 0 && f.src[end-1] == '\r' {
			end--
		}
		return end
	}
	return uint32(len(f.src))
}

// point returns the row and column of byte offset b.
func (f *file) point(b uint32) sitter.Point {
	row, found := slices.BinarySearch(f.lineStarts, b)
	if !found {
		row--
	}
	return sitter.Point{Row: uint32(row), Column: b - f.lineStarts[row]}
}

// trim narrows s to exclude surrounding whitespace, so the span starts on
// the line holding its first visible byte.
func (f *file) trim(s span) span {
	start, end := s.startByte, s.endByte
	for start < end && isSpace(f.src[start]) {
		start++
	}
	for end > start && isSpace(f.src[end-1]) {
		end--
	}
	if start == s.startByte && end == s.endByte {
		return s
	}
	return span{startByte: start, endByte: end, start: f.point(start), end: f.point(end)}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
