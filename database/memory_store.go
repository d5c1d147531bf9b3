package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/docqa/docqa-be/types"
)

// MemoryStore is the default session store: documents and their chunks
// held in process memory. It also serves as a ChunkIndex with a plain
// term-overlap ranking, so the system works without a vector database.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*types.ExtractionResult
	chunks map[string][]types.Chunk
	order  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string]*types.ExtractionResult),
		chunks: make(map[string][]types.Chunk),
	}
}

func (s *MemoryStore) SaveDocument(_ context.Context, doc *types.ExtractionResult, chunks []types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
	s.chunks[doc.ID] = chunks
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id string) (*types.ExtractionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrDocumentNotFound, id)
	}
	return doc, nil
}

func (s *MemoryStore) GetChunks(_ context.Context, id string) ([]types.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrDocumentNotFound, id)
	}
	return chunks, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: %s", types.ErrDocumentNotFound, id)
	}
	delete(s.docs, id)
	delete(s.chunks, id)
	for i, docID := range s.order {
		if docID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListDocuments returns documents in upload order.
func (s *MemoryStore) ListDocuments(_ context.Context) ([]*types.ExtractionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*types.ExtractionResult, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.docs[id])
	}
	return docs, nil
}

func (s *MemoryStore) IndexChunks(ctx context.Context, doc *types.ExtractionResult, chunks []types.Chunk) error {
	// chunks are already held by SaveDocument
	return nil
}

// SearchChunks ranks a document's chunks by query-term overlap. It is a
// crude stand-in for vector search that keeps retrieval working when no
// weaviate instance is configured.
func (s *MemoryStore) SearchChunks(_ context.Context, documentID, query string, limit int) ([]types.Chunk, error) {
	s.mu.RLock()
	chunks, ok := s.chunks[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrDocumentNotFound, documentID)
	}

	terms := strings.Fields(strings.ToLower(query))
	type scored struct {
		chunk types.Chunk
		score int
	}
	ranked := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk.Content)
		score := 0
		for _, term := range terms {
			score += strings.Count(lower, term)
		}
		if score > 0 {
			ranked = append(ranked, scored{chunk: chunk, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	result := make([]types.Chunk, 0, limit)
	for _, r := range ranked[:limit] {
		result = append(result, r.chunk)
	}
	return result, nil
}

func (s *MemoryStore) RemoveDocument(ctx context.Context, documentID string) error {
	return s.DeleteDocument(ctx, documentID)
}
