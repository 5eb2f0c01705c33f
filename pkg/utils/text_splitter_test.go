package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short", 100, 10)
	assert.Equal(t, []string{"short"}, chunks)
}

func TestSplitTextChunksWithOverlap(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := SplitText(text, 10, 2)

	assert.Equal(t, "aaaaaaaaaa", chunks[0])
	for i := 0; i < len(chunks)-1; i++ {
		assert.Len(t, chunks[i], 10)
	}

	// Overlap means steps of chunkSize-overlap; every input rune is covered.
	var total int
	for _, c := range chunks {
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, len(text))
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("b", 30)
	chunks := SplitText(text, 10, 15)

	// Degenerate overlap falls back to non-overlapping steps.
	assert.Equal(t, 3, len(chunks))
}

func TestSplitTextUnicodeSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 10)
	chunks := SplitText(text, 20, 5)

	for _, c := range chunks {
		assert.True(t, strings.HasSuffix(text, c) || strings.Contains(text, c))
	}
}
