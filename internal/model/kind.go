package model

import "fmt"

// ChunkKind is the closed set of chunk categories.
type ChunkKind string

const (
	KindComponent        ChunkKind = "component"
	KindHook             ChunkKind = "hook"
	KindFunction         ChunkKind = "function"
	KindJSXFragment      ChunkKind = "jsx-fragment"
	KindComponentSummary ChunkKind = "component-summary"
	KindJSXSection       ChunkKind = "jsx-section"
	KindFunctionSummary  ChunkKind = "function-summary"
	KindFunctionSection  ChunkKind = "function-section"
)

// AllKinds lists every kind in declaration order.
var AllKinds = []ChunkKind{
	KindComponent,
	KindHook,
	KindFunction,
	KindJSXFragment,
	KindComponentSummary,
	KindJSXSection,
	KindFunctionSummary,
	KindFunctionSection,
}

// ParseKind converts a string into a ChunkKind.
func ParseKind(s string) (ChunkKind, error) {
	k := ChunkKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown chunk kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k ChunkKind) Valid() bool {
	switch k {
	case KindComponent, KindHook, KindFunction, KindJSXFragment,
		KindComponentSummary, KindJSXSection, KindFunctionSummary, KindFunctionSection:
		return true
	}
	return false
}

// IsSummary reports whether k is a summary produced by size splitting.
func (k ChunkKind) IsSummary() bool {
	switch k {
	case KindComponentSummary, KindFunctionSummary:
		return true
	case KindComponent, KindHook, KindFunction, KindJSXFragment, KindJSXSection, KindFunctionSection:
		return false
	}
	return false
}

// IsSection reports whether k is a section produced by size splitting.
func (k ChunkKind) IsSection() bool {
	switch k {
	case KindJSXSection, KindFunctionSection:
		return true
	case KindComponent, KindHook, KindFunction, KindJSXFragment, KindComponentSummary, KindFunctionSummary:
		return false
	}
	return false
}

// ReturnsMarkup reports whether units of kind k render markup.
func (k ChunkKind) ReturnsMarkup() bool {
	switch k {
	case KindComponent, KindJSXFragment:
		return true
	case KindHook, KindFunction, KindComponentSummary, KindJSXSection, KindFunctionSummary, KindFunctionSection:
		return false
	}
	return false
}

// SplitKinds returns the summary and section kinds a unit of kind k
// becomes when it is too large to embed whole.
func (k ChunkKind) SplitKinds() (summary, section ChunkKind) {
	switch k {
	case KindComponent, KindJSXFragment:
		return KindComponentSummary, KindJSXSection
	case KindHook, KindFunction:
		return KindFunctionSummary, KindFunctionSection
	case KindComponentSummary, KindJSXSection:
		return KindComponentSummary, KindJSXSection
	case KindFunctionSummary, KindFunctionSection:
		return KindFunctionSummary, KindFunctionSection
	}
	return KindFunctionSummary, KindFunctionSection
}

func (k ChunkKind) String() string { return string(k) }
