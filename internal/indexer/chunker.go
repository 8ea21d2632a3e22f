package indexer

import (
	"strings"

	"bookbot/internal/service"
)

// WordChunker splits text into fixed-size windows of words that overlap by a
// fixed number of words.
type WordChunker struct {
	size    int
	overlap int
}

// NewWordChunker creates a chunker emitting windows of size words, each
// starting size-overlap words after the previous one.
func NewWordChunker(size, overlap int) (*WordChunker, error) {
	switch {
	case size <= 0:
		return nil, service.NewValidationError("chunk_size", "chunk size must be greater than 0")
	case overlap < 0:
		return nil, service.NewValidationError("chunk_overlap", "chunk overlap must not be negative")
	case overlap >= size:
		return nil, service.NewValidationError("chunk_overlap", "chunk overlap must be smaller than chunk size")
	}
	return &WordChunker{size: size, overlap: overlap}, nil
}

// Split tokenizes text by whitespace and returns the windows in order.
// The window that reaches the last word is the final one, so the tail is
// never emitted twice. Empty text yields no chunks.
func (c *WordChunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]string, 0, c.Count(len(words)))
	for start := 0; start < len(words); start += step {
		end := min(start+c.size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// Count returns how many chunks Split produces for n words.
func (c *WordChunker) Count(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= c.size {
		return 1
	}
	step := c.size - c.overlap
	return (n - c.overlap + step - 1) / step
}
