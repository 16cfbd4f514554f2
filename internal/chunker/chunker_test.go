package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\t\tb\n\nc  "))
	assert.Equal(t, "hello world", Normalize("hello\r\n   world"))
	assert.Equal(t, "", Normalize("   \t\n  "))
	assert.Equal(t, "", Normalize(""))
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_SingleChunkWhenTextFits(t *testing.T) {
	chunks, err := Split("short text", 100, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len("short text"), chunks[0].End)
	assert.Equal(t, "short text", chunks[0].Text)
}

func TestSplit_ExactSizeYieldsSingleChunk(t *testing.T) {
	text := strings.Repeat("x", 10)
	chunks, err := Split(text, 10, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplit_OverlappingWindows(t *testing.T) {
	// 26 characters, size 10, overlap 4 -> step 6.
	// Windows: [0,10) [6,16) [12,22) [18,26) [24,26)
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks, err := Split(text, 10, 4)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "ghijklmnop", chunks[1].Text)
	assert.Equal(t, "mnopqrstuv", chunks[2].Text)
	assert.Equal(t, "stuvwxyz", chunks[3].Text)
	assert.Equal(t, "yz", chunks[4].Text)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, text[c.Start:c.End], c.Text)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic chunking ", 100)
	first, err := Split(text, 128, 32)
	require.NoError(t, err)
	second, err := Split(text, 128, 32)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplit_CoversAllText(t *testing.T) {
	text := strings.Repeat("0123456789", 37)
	chunks, err := Split(text, 50, 10)
	require.NoError(t, err)

	covered := make([]bool, len(text))
	for _, c := range chunks {
		for i := c.Start; i < c.End; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		require.True(t, ok, "character %d not covered", i)
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.size, tt.overlap)
			assert.ErrorIs(t, err, domain.ErrChunkConfig)
		})
	}
}

func TestSplit_NoZeroWidthFinalChunk(t *testing.T) {
	// Text length is an exact multiple of the step; the loop must not
	// emit an empty trailing window.
	text := strings.Repeat("x", 12)
	chunks, err := Split(text, 10, 4)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.Greater(t, c.End, c.Start)
	}
}
