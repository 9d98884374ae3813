// ABOUTME: Splits extracted document text into overlapping fixed-size windows
// ABOUTME: Operates on rune offsets so multibyte characters are never split
package chunker

import (
	"fmt"

	"docqa/internal/models"
)

// Chunk splits text into overlapping windows of at most chunkSize runes.
// Consecutive chunks overlap by exactly overlap runes except possibly the
// final pair, and the union of ranges covers the whole text with no gaps.
// Empty text yields zero chunks; the caller decides what that means.
func Chunk(text string, chunkSize, overlap int) ([]models.Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrValidation, chunkSize)
	}
	if overlap <= 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in (0, %d), got %d", models.ErrValidation, chunkSize, overlap)
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	stride := chunkSize - overlap
	var chunks []models.Chunk
	for offset := 0; ; offset += stride {
		end := offset + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, models.Chunk{
			ChunkID:   len(chunks),
			Text:      string(runes[offset:end]),
			CharStart: offset,
			CharEnd:   end,
		})
		if end == n {
			break
		}
	}

	return chunks, nil
}
