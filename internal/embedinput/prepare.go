// Package embedinput renders chunks into the text handed to the embedding
// model.
package embedinput

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dupescan/internal/model"
)

// DefaultMaxChars bounds the rendered text.
const DefaultMaxChars = 6000

// TruncationMarker is appended when content had to be cut.
const TruncationMarker = "[... content truncated for embedding ...]"

// Options controls Prepare.
type Options struct {
	// MaxChars is the rune budget for the whole rendered text. Zero means
	// DefaultMaxChars.
	MaxChars int
}

// Prepare renders a kind-specific header, the metadata lines that kind
// carries, and the chunk content. When the result would exceed MaxChars
// only the content is shortened; header lines are always kept.
func Prepare(c model.Chunk, opts Options) string {
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var b strings.Builder
	b.WriteString(header(c))
	b.WriteByte('\n')

	showHooks, showJSX := metadataLines(c.Kind)
	if len(c.Metadata.Props) > 0 {
		fmt.Fprintf(&b, "Props: %s\n", strings.Join(c.Metadata.Props, ", "))
	}
	if showHooks && len(c.Metadata.Hooks) > 0 {
		fmt.Fprintf(&b, "Hooks used: %s\n", strings.Join(c.Metadata.Hooks, ", "))
	}
	if showJSX && len(c.Metadata.JSXElements) > 0 {
		fmt.Fprintf(&b, "JSX elements: %s\n", strings.Join(c.Metadata.JSXElements, ", "))
	}
	b.WriteByte('\n')
	head := b.String()

	if utf8.RuneCountInString(head)+utf8.RuneCountInString(c.Content) <= maxChars {
		return head + c.Content
	}

	suffix := "\n" + TruncationMarker
	budget := maxChars - utf8.RuneCountInString(head) - utf8.RuneCountInString(suffix)
	return head + truncateRunes(c.Content, budget) + suffix
}

func header(c model.Chunk) string {
	switch c.Kind {
	case model.KindComponent:
		return "UI component: " + c.Name
	case model.KindHook:
		return "Stateful binding: " + c.Name
	case model.KindFunction:
		return "Function: " + c.Name
	case model.KindJSXFragment:
		return "JSX fragment: " + c.Name
	case model.KindComponentSummary:
		return "UI component summary: " + c.Name + " — large component, see sections for detail"
	case model.KindFunctionSummary:
		return "Function summary: " + c.Name + " — large function, split into sections"
	case model.KindJSXSection, model.KindFunctionSection:
		h := "Section from " + c.Name
		if c.Section != nil && c.Section.Label != "" {
			h += ": " + c.Section.Label
		}
		return h
	}
	return c.Name
}

// metadataLines reports which optional lines a kind renders. Summaries drop
// markup detail, sections drop hooks.
func metadataLines(k model.ChunkKind) (hooks, jsx bool) {
	switch k {
	case model.KindComponent, model.KindHook, model.KindFunction, model.KindJSXFragment:
		return true, true
	case model.KindComponentSummary, model.KindFunctionSummary:
		return true, false
	case model.KindJSXSection, model.KindFunctionSection:
		return false, true
	}
	return false, false
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
