package services

import (
	"fmt"

	"docqa/models"
)

// Default window parameters, matching the splitter settings the service has
// always indexed with. Changing them invalidates previously stored vectors
// only in the sense that old and new chunks of the same document won't line
// up; the embedding dimension is unaffected.
const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 40
)

// ChunkText splits text into contiguous windows of up to size runes, each
// window after the first starting size-overlap runes after the previous
// one. The final chunk may be shorter than size. This is a plain sliding
// window over runes, not sentence-aware splitting; boundary chunks may cut
// mid-word.
//
// Empty input yields an empty sequence. Every returned chunk carries a
// non-nil metadata map.
func ChunkText(text string, size, overlap int) ([]models.Chunk, error) {
	if size <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("chunk size must be positive, got %d", size)}
	}
	if overlap < 0 || overlap >= size {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)}
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return []models.Chunk{}, nil
	}

	step := size - overlap
	chunks := make([]models.Chunk, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, models.Chunk{
			Index:    len(chunks),
			Text:     string(runes[start:end]),
			Metadata: map[string]string{},
		})
		if end == n {
			break
		}
	}
	return chunks, nil
}
