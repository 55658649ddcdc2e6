// Package embeddings provides the optional dense-embedding backend
// dependency: a provider that maps text to fixed-length vectors. Whether a
// provider is usable is probed once per process; when none is, the index
// falls back to lexical search.
package embeddings

import (
	"context"
	"os"
)

// Provider embeds texts into fixed-length float vectors. Implementations
// must be deterministic for the same input text and model.
type Provider interface {
	// Name identifies the provider and model for the index manifest.
	Name() string
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Detect probes for a usable provider. Returns nil when the dense backend
// dependency is unavailable; callers degrade to lexical search.
func Detect() Provider {
	if key := apiKeyFromEnv(); key != "" {
		return NewOpenAI(key)
	}
	return nil
}

func apiKeyFromEnv() string {
	if key := os.Getenv("SKILLSCOUT_EMBEDDINGS_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}
