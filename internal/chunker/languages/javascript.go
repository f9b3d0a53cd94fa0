package languages

import (
	"dupescan/internal/chunker"

	"github.com/smacker/go-tree-sitter/javascript"
)

// RegisterJavaScript adds JavaScript with JSX.
func RegisterJavaScript(r *chunker.Registry) {
	r.Register(&chunker.LanguageSpec{
		Name:       "javascript",
		Language:   javascript.GetLanguage(),
		Query:      markupQuery,
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
		Markup:     true,
	})
}
