// Package embedder defines the Embedder interface consumed by the rebuttal
// matcher's semantic tier and the phrase repository's re-embedding path.
//
// An Embedder wraps a sentence-embedding service (e.g., a local sentence
// transformer served over Ollama, or OpenAI's text-embedding models) and maps
// text strings to dense float32 vectors used for cosine-similarity phrase
// matching. Per spec, this is an opaque external collaborator — the core
// depends only on this interface.
//
// Implementations must be safe for concurrent use.
package embedder

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All embedding vectors returned by a single Provider instance must share the same
// dimensionality (returned by Dimensions). Callers must not mix vectors from
// different Provider instances in the same similarity computation unless they have
// verified that both use the same model and space.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Encode computes embedding vectors for texts, internally chunking the
	// request into groups of at most batchSize for providers that cap request
	// size. The returned slice has the same length as texts and the i-th
	// element corresponds to texts[i].
	//
	// Returns an error if any chunk fails or if ctx is cancelled. Partial
	// results are not returned — on error the entire slice is nil.
	Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error)

	// Dimensions returns the fixed length of every embedding vector produced by this
	// provider. The value is determined by the underlying model and is constant for
	// the lifetime of the Provider instance.
	Dimensions() int

	// ModelID returns the provider-specific model identifier used for embeddings
	// (e.g., "text-embedding-3-small", "nomic-embed-text"). Useful for logging
	// and for ensuring consistent model usage across a run.
	ModelID() string
}
