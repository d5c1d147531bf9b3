package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docqa/docqa-be/types"
)

// wordsText builds a text of n distinct words.
func wordsText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%04d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkText_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 128, 128},
		{"overlap exceeds size", 128, 512},
		{"zero size", 0, 0},
		{"negative overlap", 128, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChunkText("some text", tt.size, tt.overlap)
			if !errors.Is(err, types.ErrInvalidConfiguration) {
				t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestChunkText_WindowCount(t *testing.T) {
	// 1000 words at size 512 / overlap 128 gives a 384-word stride:
	// windows start at 0, 384 and 768.
	text := wordsText(1000)

	chunks, err := ChunkText(text, 512, 128)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	starts := []int{0, 384, 768}
	for i, chunk := range chunks {
		if chunk.WordStart != starts[i] {
			t.Errorf("Chunk %d starts at word %d, want %d", i, chunk.WordStart, starts[i])
		}
		if chunk.Index != i {
			t.Errorf("Chunk %d has index %d", i, chunk.Index)
		}
	}
}

func TestChunkText_CoversAllWords(t *testing.T) {
	text := wordsText(1000)
	chunks, err := ChunkText(text, 512, 128)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}

	seen := map[string]bool{}
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk.Content) {
			seen[w] = true
		}
	}
	if len(seen) != 1000 {
		t.Errorf("Union of chunks covers %d distinct words, want 1000", len(seen))
	}
}

func TestChunkText_OverlapContent(t *testing.T) {
	text := wordsText(1000)
	chunks, err := ChunkText(text, 512, 128)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}

	for i := 0; i < len(chunks)-1; i++ {
		lastWords := strings.Fields(chunks[i].Content)
		tail := lastWords[len(lastWords)-1]
		if !strings.Contains(chunks[i+1].Content, tail) && chunks[i+1].WordStart > chunks[i].WordStart+512-128 {
			t.Errorf("Chunks %d and %d do not overlap", i, i+1)
		}
	}
}

func TestChunkText_DiscardsShortWindows(t *testing.T) {
	// 4 short words: the only window is well under the 50-char minimum.
	chunks, err := ChunkText("one two three four", 512, 128)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected short window to be discarded, got %d chunks", len(chunks))
	}
}

func TestChunkText_EmptyText(t *testing.T) {
	chunks, err := ChunkText("", 512, 128)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected 0 chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkText_Deterministic(t *testing.T) {
	text := wordsText(900)
	first, err := ChunkText(text, 256, 64)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}
	second, err := ChunkText(text, 256, 64)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

func TestChunkText_PreservesOrder(t *testing.T) {
	text := wordsText(2000)
	chunks, err := ChunkText(text, 512, 128)
	if err != nil {
		t.Fatalf("ChunkText failed: %v", err)
	}

	for i := 1; i < len(chunks); i++ {
		if chunks[i].WordStart <= chunks[i-1].WordStart {
			t.Errorf("Chunk %d starts at %d, not after chunk %d at %d",
				i, chunks[i].WordStart, i-1, chunks[i-1].WordStart)
		}
	}
}
