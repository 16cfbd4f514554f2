package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
//
// Contract: returned vectors are unit-normalised, so dot product equals
// cosine similarity. The search engine never re-normalises; a provider
// violating this degrades ranking silently. Internal batching of large text
// lists is the provider's responsibility, not the caller's.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local models via inference servers
type EmbeddingProvider interface {
	// Embed generates one vector per input text, in input order.
	// Callable with a single-element list for query encoding.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
