// Package embeddings defines the provider interface for vector embedding
// backends.
//
// The engine embeds every completed answer and stores the vectors in the
// answer index (pkg/store/postgres). The contradiction checker retrieves
// the nearest prior answers by cosine distance to build focused LLM
// context instead of blindly replaying recent history.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality (returned by Dimensions). Vectors from different models
// must never be mixed in one similarity computation.
type Provider interface {
	// Embed computes the embedding vector for a single text string.
	// Returns a float32 slice of length Dimensions().
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes vectors for a slice of texts in one provider
	// call. The i-th result corresponds to texts[i]. On error the entire
	// result is nil; partial results are not returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by
	// this provider.
	Dimensions() int

	// ModelID returns the provider-specific model identifier, for logging
	// and for verifying consistent model usage across a session.
	ModelID() string
}
