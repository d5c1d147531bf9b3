package service

import (
	"fmt"
	"strings"

	"github.com/docqa/docqa-be/types"
)

// minChunkChars is the smallest chunk worth indexing; shorter windows are
// usually page-number debris or trailing fragments.
const minChunkChars = 50

// ChunkText splits text into overlapping fixed-size word windows for
// retrieval-style consumption. Windows of chunkSize words start every
// chunkSize-overlap words; each window is joined with single spaces and
// windows whose trimmed length is at most minChunkChars are discarded.
// The output preserves text order and is a pure function of its inputs.
func ChunkText(text string, chunkSize, overlap int) ([]types.Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", types.ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", types.ErrInvalidConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", types.ErrInvalidConfiguration, overlap, chunkSize)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []types.Chunk{}, nil
	}

	stride := chunkSize - overlap
	chunks := make([]types.Chunk, 0, len(words)/stride+1)
	for start := 0; start < len(words); start += stride {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		content := strings.Join(words[start:end], " ")
		if len(strings.TrimSpace(content)) > minChunkChars {
			chunks = append(chunks, types.Chunk{
				Index:     len(chunks),
				Content:   content,
				WordStart: start,
			})
		}
		if end == len(words) {
			break
		}
	}

	return chunks, nil
}
