package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec pairs a grammar with the file extensions it parses.
type LanguageSpec struct {
	Name     string
	Language *sitter.Language
	// Query captures invoked callee names as @call and, for grammars with
	// markup, element names as @tag.
	Query      string
	Extensions []string
	// Markup is set for grammars that parse embedded JSX.
	Markup bool
}

// Registry resolves a file to its grammar. Registration happens up front;
// lookups and compiled queries are safe for concurrent use.
type Registry struct {
	byExt map[string]*LanguageSpec

	mu      sync.Mutex
	queries map[*LanguageSpec]*sitter.Query
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt:   make(map[string]*LanguageSpec),
		queries: make(map[*LanguageSpec]*sitter.Query),
	}
}

// Register claims spec's extensions. A later spec wins a shared extension.
func (r *Registry) Register(spec *LanguageSpec) {
	for _, ext := range spec.Extensions {
		r.byExt[strings.ToLower(ext)] = spec
	}
}

// Lookup returns the spec for path's extension, or nil.
func (r *Registry) Lookup(path string) *LanguageSpec {
	return r.byExt[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
}

// Extensions returns the registered extensions without the dot.
func (r *Registry) Extensions() map[string]bool {
	exts := make(map[string]bool, len(r.byExt))
	for ext := range r.byExt {
		exts[ext] = true
	}
	return exts
}

// query compiles spec's query once. Compiled queries are shared by every
// parse; each run gets its own cursor.
func (r *Registry) query(spec *LanguageSpec) (*sitter.Query, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queries[spec]; ok {
		return q, nil
	}
	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", spec.Name, err)
	}
	r.queries[spec] = q
	return q, nil
}
