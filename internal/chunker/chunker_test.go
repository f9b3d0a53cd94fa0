package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"dupescan/internal/chunker"
	"dupescan/internal/chunker/languages"
	"dupescan/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgets = `import React, { useState } from "react";

export function Card({ title, body }: CardProps) {
  const [open, setOpen] = useState(false);
  return (
    <div className="card">
      <Header title={title} />
      <p>{body}</p>
    </div>
  );
}

function useToggle(initial: boolean) {
  const [on, setOn] = useState(initial);
  const toggle = () => setOn(!on);
  return [on, toggle];
}

const renderRow = (item: Item) => {
  const label = item.name;
  return <li>{label}</li>;
};

function formatPrice(cents: number) {
  const dollars = cents / 100;
  return dollars.toFixed(2);
}
`

func newChunker() *chunker.ASTChunker {
	return chunker.NewASTChunker(languages.Default())
}

func byName(chunks []model.Chunk) map[string]model.Chunk {
	m := make(map[string]model.Chunk, len(chunks))
	for _, c := range chunks {
		m[c.Name] = c
	}
	return m
}

func TestExtractClassifiesUnits(t *testing.T) {
	chunks := newChunker().Extract("src/widgets.tsx", []byte(widgets), chunker.DefaultOptions())
	require.Len(t, chunks, 4)

	got := byName(chunks)

	card := got["Card"]
	assert.Equal(t, model.KindComponent, card.Kind)
	assert.Equal(t, 3, card.StartLine)
	assert.Equal(t, 11, card.EndLine)
	assert.Equal(t, 1, card.StartColumn)
	assert.Equal(t, []string{"title", "body"}, card.Metadata.Props)
	assert.Equal(t, []string{"useState"}, card.Metadata.Hooks)
	assert.Equal(t, []string{"div", "Header", "p"}, card.Metadata.JSXElements)
	assert.True(t, card.Metadata.IsExported)
	assert.False(t, card.Metadata.IsDefaultExport)
	assert.Nil(t, card.Section)

	hook := got["useToggle"]
	assert.Equal(t, model.KindHook, hook.Kind)
	assert.Equal(t, []string{"useState"}, hook.Metadata.Hooks)
	assert.NotNil(t, hook.Metadata.JSXElements)
	assert.Empty(t, hook.Metadata.JSXElements)
	assert.False(t, hook.Metadata.IsExported)

	row := got["renderRow"]
	assert.Equal(t, model.KindJSXFragment, row.Kind)
	assert.Equal(t, []string{"item"}, row.Metadata.Props)
	assert.Equal(t, []string{"li"}, row.Metadata.JSXElements)

	price := got["formatPrice"]
	assert.Equal(t, model.KindFunction, price.Kind)
	assert.Equal(t, []string{"cents"}, price.Metadata.Props)
	assert.Empty(t, price.Metadata.Hooks)

	for _, c := range chunks {
		assert.Equal(t, "src/widgets.tsx", c.FilePath)
		assert.LessOrEqual(t, c.StartLine, c.EndLine)
		assert.NotEmpty(t, c.Content)
		assert.Equal(t, model.ChunkID(c.FilePath, c.Content), c.ID)
	}
}

func TestExtractDefaultExports(t *testing.T) {
	t.Run("anonymous function", func(t *testing.T) {
		src := `export default function () {
  return (
    <section>
      <h1>Hello</h1>
    </section>
  );
}
`
		chunks := newChunker().Extract("page.jsx", []byte(src), chunker.DefaultOptions())
		require.Len(t, chunks, 1)
		assert.Equal(t, "default", chunks[0].Name)
		assert.Equal(t, model.KindComponent, chunks[0].Kind)
		assert.True(t, chunks[0].Metadata.IsExported)
		assert.True(t, chunks[0].Metadata.IsDefaultExport)
	})

	t.Run("wrapped identifier", func(t *testing.T) {
		src := `const Card = memo(function Card({ label }) {
  return (
    <button>{label}</button>
  );
});

export default Card;
`
		chunks := newChunker().Extract("card.tsx", []byte(src), chunker.DefaultOptions())
		require.Len(t, chunks, 1)
		assert.Equal(t, "Card", chunks[0].Name)
		assert.Equal(t, model.KindComponent, chunks[0].Kind)
		assert.Equal(t, []string{"label"}, chunks[0].Metadata.Props)
		assert.True(t, chunks[0].Metadata.IsDefaultExport)
	})

	t.Run("export clause", func(t *testing.T) {
		src := `function Panel() {
  return (
    <aside>panel</aside>
  );
}

function helper() {
  const x = 1;
  return x;
}

export { Panel as default, helper };
`
		got := byName(newChunker().Extract("panel.jsx", []byte(src), chunker.DefaultOptions()))
		require.Len(t, got, 2)
		assert.True(t, got["Panel"].Metadata.IsDefaultExport)
		assert.True(t, got["helper"].Metadata.IsExported)
		assert.False(t, got["helper"].Metadata.IsDefaultExport)
	})
}

func TestExtractMinLines(t *testing.T) {
	src := `function short(a) {
  return a;
}

function longer(a) {
  const b = a + 1;
  return b;
}
`
	c := newChunker()

	chunks := c.Extract("util.js", []byte(src), chunker.Options{MinLines: 4})
	require.Len(t, chunks, 1)
	assert.Equal(t, "longer", chunks[0].Name)

	// Non-positive MinLines falls back to the default of 3.
	chunks = c.Extract("util.js", []byte(src), chunker.Options{MinLines: 0})
	assert.Len(t, chunks, 2)
}

func TestExtractEmptyResults(t *testing.T) {
	c := newChunker()
	opts := chunker.DefaultOptions()

	tests := []struct {
		name string
		path string
		src  string
	}{
		{"empty", "a.tsx", ""},
		{"whitespace", "a.tsx", "  \n\n\t"},
		{"imports only", "a.ts", "import { a } from \"./a\";\nimport b from \"./b\";\n"},
		{"unparseable", "a.tsx", "export function Broken( {\n  return <div\n"},
		{"unsupported extension", "a.css", ".card { color: red; }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, c.Extract(tt.path, []byte(tt.src), opts))
		})
	}
}

func TestChunkReportsSyntaxErrors(t *testing.T) {
	_, err := newChunker().Chunk("a.tsx", []byte("export function Broken( {\n"), chunker.DefaultOptions())
	assert.ErrorIs(t, err, chunker.ErrSyntax)
}

func TestExtractIDs(t *testing.T) {
	c := newChunker()
	opts := chunker.DefaultOptions()

	first := c.Extract("src/widgets.tsx", []byte(widgets), opts)
	again := c.Extract("src/widgets.tsx", []byte(widgets), opts)
	moved := c.Extract("lib/widgets.tsx", []byte(widgets), opts)
	require.Len(t, again, len(first))
	require.Len(t, moved, len(first))

	for i := range first {
		assert.Equal(t, first[i].ID, again[i].ID)
		assert.NotEqual(t, first[i].ID, moved[i].ID)
	}
}

func TestExtractKindsFilter(t *testing.T) {
	opts := chunker.DefaultOptions()
	opts.Kinds = []model.ChunkKind{model.KindHook}

	chunks := newChunker().Extract("src/widgets.tsx", []byte(widgets), opts)
	require.Len(t, chunks, 1)
	assert.Equal(t, "useToggle", chunks[0].Name)
}

// table renders a component whose root element holds n three-line children.
func table(n int) string {
	var b strings.Builder
	b.WriteString("export function Table({ rows }) {\n")
	b.WriteString("  return (\n")
	b.WriteString("    <div>\n")
	for i := range n {
		fmt.Fprintf(&b, "      <Row\n        id={%d}\n      />\n", i)
	}
	b.WriteString("    </div>\n")
	b.WriteString("  );\n")
	b.WriteString("}\n")
	return b.String()
}

func assertSplit(t *testing.T, chunks []model.Chunk, summary, section model.ChunkKind) {
	t.Helper()
	require.GreaterOrEqual(t, len(chunks), 2)

	head := chunks[0]
	assert.Equal(t, summary, head.Kind)
	assert.Nil(t, head.Section)
	assert.Nil(t, head.Metadata.JSXElements)

	for i, c := range chunks[1:] {
		assert.Equal(t, section, c.Kind)
		require.NotNil(t, c.Section)
		assert.Equal(t, head.ID, c.Section.ParentID)
		assert.Equal(t, i, c.Section.Index)
		assert.NotEmpty(t, c.Section.Label)
		assert.NotNil(t, c.Metadata.JSXElements)
		assert.Nil(t, c.Metadata.Props)
		assert.Equal(t, head.Name, c.Name)
		assert.Greater(t, c.StartLine, head.EndLine)
	}
}

func TestExtractSplitsLargeComponent(t *testing.T) {
	opts := chunker.Options{MinLines: 3, MaxLines: 8}

	chunks := newChunker().Extract("table.jsx", []byte(table(6)), opts)
	assertSplit(t, chunks, model.KindComponentSummary, model.KindJSXSection)
	require.Len(t, chunks, 4)

	head := chunks[0]
	assert.Equal(t, "Table", head.Name)
	assert.Equal(t, 1, head.StartLine)
	assert.Equal(t, 3, head.EndLine)
	assert.Equal(t, []string{"rows"}, head.Metadata.Props)

	for _, c := range chunks[1:] {
		assert.Equal(t, 6, c.Lines())
		assert.Equal(t, []string{"Row"}, c.Metadata.JSXElements)
		assert.Equal(t, "<Row /> (+1 more)", c.Section.Label)
	}
}

func TestExtractSplitsLargeFunction(t *testing.T) {
	var b strings.Builder
	b.WriteString("export function compute(values: number[]) {\n")
	for i := range 12 {
		fmt.Fprintf(&b, "  const v%d = values[%d] * 2;\n", i, i)
	}
	b.WriteString("}\n")

	chunks := newChunker().Extract("compute.ts", []byte(b.String()), chunker.Options{MinLines: 3, MaxLines: 5})
	assertSplit(t, chunks, model.KindFunctionSummary, model.KindFunctionSection)

	// The trailing two statements fall under MinLines and are dropped.
	require.Len(t, chunks, 3)
	assert.Equal(t, "const v0 (+4 more)", chunks[1].Section.Label)
	assert.Equal(t, 2, chunks[1].StartLine)
	assert.Equal(t, 6, chunks[1].EndLine)
}

func TestExtractSplitDisabled(t *testing.T) {
	src := []byte(table(6))
	c := newChunker()

	for _, opts := range []chunker.Options{
		{MinLines: 3, MaxLines: 8, SplitStrategy: chunker.SplitNone},
		{MinLines: 3, MaxLines: 0},
	} {
		chunks := c.Extract("table.jsx", src, opts)
		require.Len(t, chunks, 1)
		assert.Equal(t, model.KindComponent, chunks[0].Kind)
		assert.Nil(t, chunks[0].Section)
	}
}

func TestExtractSplitKindsFilter(t *testing.T) {
	opts := chunker.Options{MinLines: 3, MaxLines: 8, Kinds: []model.ChunkKind{model.KindJSXSection}}

	chunks := newChunker().Extract("table.jsx", []byte(table(6)), opts)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, model.KindJSXSection, c.Kind)
	}
}

func TestExtractSectionsMatchSourceLines(t *testing.T) {
	src := table(6)
	lines := strings.Split(src, "\n")

	chunks := newChunker().Extract("table.jsx", []byte(src), chunker.Options{MinLines: 3, MaxLines: 8})
	require.Len(t, chunks, 4)

	head := chunks[0]
	assert.Equal(t, strings.Join(lines[head.StartLine-1:head.EndLine], "\n"), head.Content)
	assert.Contains(t, head.Content, "<div>")

	prevEnd := head.EndLine
	for _, c := range chunks[1:] {
		want := strings.Join(lines[c.StartLine-1:c.EndLine], "\n")
		assert.Equal(t, strings.TrimSpace(want), c.Content)
		assert.False(t, strings.HasPrefix(c.Content, "\n"))
		assert.Greater(t, c.StartLine, prevEnd, "section %q overlaps the chunk before it", c.Section.Label)
		assert.NotContains(t, c.Metadata.JSXElements, "div")
		prevEnd = c.EndLine
	}
	assert.Equal(t, 4, chunks[1].StartLine)
	assert.Equal(t, 9, chunks[1].EndLine)
	assert.Equal(t, 10, chunks[2].StartLine)
}

func TestExtractSplitUnitKindFilter(t *testing.T) {
	c := newChunker()
	src := []byte(table(6))

	opts := chunker.Options{MinLines: 3, MaxLines: 8, Kinds: []model.ChunkKind{model.KindComponent}}
	assert.Empty(t, c.Extract("table.jsx", src, opts))

	opts.Kinds = []model.ChunkKind{model.KindComponentSummary}
	chunks := c.Extract("table.jsx", src, opts)
	require.Len(t, chunks, 1)
	assert.Equal(t, model.KindComponentSummary, chunks[0].Kind)

	opts.MaxLines = 0
	opts.Kinds = []model.ChunkKind{model.KindComponent}
	chunks = c.Extract("table.jsx", src, opts)
	require.Len(t, chunks, 1)
	assert.Equal(t, model.KindComponent, chunks[0].Kind)
}
