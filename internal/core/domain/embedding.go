package domain

// Embedding is a stored vector representing one chunk of a source's content.
// The chunk itself is never persisted: ChunkIdx together with the recorded
// chunking parameters is the sole join key back to the text.
type Embedding struct {
	// ID is the unique identifier for the embedding.
	ID string

	// SourceID links to the Source that owns this embedding.
	SourceID string

	// Vector is the embedding, unit-normalised by the provider.
	Vector []float32

	// ChunkIdx is the ordinal position of the chunk in the chunking of the
	// source's most recently processed content.
	ChunkIdx int

	// ChunkSize and ChunkOverlap are the chunking parameters used when this
	// embedding was created. Recorded so chunk text can be relocated even
	// after the configured defaults change.
	ChunkSize    int
	ChunkOverlap int
}
