package languages

import (
	"dupescan/internal/chunker"

	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// RegisterTypeScript adds plain TypeScript. The grammar has no JSX, so .ts
// files only ever yield hooks and functions.
func RegisterTypeScript(r *chunker.Registry) {
	r.Register(&chunker.LanguageSpec{
		Name:       "typescript",
		Language:   typescript.GetLanguage(),
		Query:      callQuery,
		Extensions: []string{"ts", "mts", "cts"},
	})
}

// RegisterTSX adds TypeScript with JSX.
func RegisterTSX(r *chunker.Registry) {
	r.Register(&chunker.LanguageSpec{
		Name:       "tsx",
		Language:   tsx.GetLanguage(),
		Query:      markupQuery,
		Extensions: []string{"tsx"},
		Markup:     true,
	})
}
