// Package languages registers the tree-sitter grammars dupescan can chunk.
package languages

import "dupescan/internal/chunker"

const callQuery = `
	(call_expression function: (identifier) @call)
	(call_expression function: (member_expression property: (property_identifier) @call))
`

const markupQuery = callQuery + `
	(jsx_opening_element name: (_) @tag)
	(jsx_self_closing_element name: (_) @tag)
`

// Default returns a registry with every supported language.
func Default() *chunker.Registry {
	r := chunker.NewRegistry()
	RegisterJavaScript(r)
	RegisterTypeScript(r)
	RegisterTSX(r)
	return r
}
