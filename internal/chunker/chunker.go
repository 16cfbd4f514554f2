// Package chunker splits normalised text into deterministic overlapping
// chunks. Chunks are never persisted: an embedding carries only its chunk
// index, so re-chunking identical normalised text with identical parameters
// must always reproduce identical boundaries.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// DefaultSize is the default chunk width in characters.
const DefaultSize = 1536

// DefaultOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultOverlap = 512

// Chunk is an ephemeral slice of normalised text, identified by its
// ordinal index.
type Chunk struct {
	// Index is the 0-based ordinal position of the chunk.
	Index int

	// Start and End are character offsets into the normalised text,
	// covering [Start, End).
	Start int
	End   int

	// Text is the chunk content.
	Text string
}

// Normalize collapses all whitespace runs to single spaces and trims the
// ends. The same normalisation must be applied wherever content is chunked,
// at processing time and at read time, since the chunk index is the only way
// to relocate a chunk's text.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split divides text into overlapping chunks of width size with the given
// overlap. Text at most size characters long yields a single chunk; longer
// text is covered by a window sliding in steps of size-overlap, with the
// final window possibly shorter than size. Empty text yields no chunks.
//
// Split is a pure function of its inputs: it returns
// domain.ErrChunkConfig unless size > 0 and 0 <= overlap < size.
func Split(text string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d must be positive", domain.ErrChunkConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrChunkConfig, overlap, size)
	}

	if text == "" {
		return nil, nil
	}
	if len(text) <= size {
		return []Chunk{{Index: 0, Start: 0, End: len(text), Text: text}}, nil
	}

	step := size - overlap
	chunks := make([]Chunk, 0, len(text)/step+1)
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  text[start:end],
		})
	}
	return chunks, nil
}
