// Package embedder turns prepared chunk text into vectors using an external
// embedding model.
package embedder

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Embedder maps texts to vectors. The result has the same length and order
// as the input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Providers lists the accepted Options.Provider values.
var Providers = []string{"ollama", "openai"}

// Options selects and configures an embedding provider.
type Options struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	// RequestsPerSecond paces Embed calls. Zero means unlimited.
	RequestsPerSecond float64
}

// New builds the embedder named by opts.Provider.
func New(opts Options) (Embedder, error) {
	var e Embedder
	switch opts.Provider {
	case "", "ollama":
		e = NewOllamaEmbedder(opts.BaseURL, opts.Model)
	case "openai":
		e = NewOpenAIEmbedder(opts.BaseURL, opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
	if opts.RequestsPerSecond > 0 {
		e = WithRateLimit(e, opts.RequestsPerSecond)
	}
	return e, nil
}

// EmbedSingle embeds one text.
func EmbedSingle(ctx context.Context, e Embedder, text string) ([]float32, error) {
	results, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(results))
	}
	return results[0], nil
}

type limited struct {
	Embedder
	limiter *rate.Limiter
}

// WithRateLimit wraps e so that at most rps Embed calls start per second.
func WithRateLimit(e Embedder, rps float64) Embedder {
	return &limited{
		Embedder: e,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (l *limited) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for embed rate limit: %w", err)
	}
	return l.Embedder.Embed(ctx, texts)
}
