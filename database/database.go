package database

import (
	"context"

	"github.com/docqa/docqa-be/types"
)

// DocumentStore holds extraction results for the lifetime of a session.
// A new upload with the same ID replaces the previous document.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *types.ExtractionResult, chunks []types.Chunk) error
	GetDocument(ctx context.Context, id string) (*types.ExtractionResult, error)
	GetChunks(ctx context.Context, id string) ([]types.Chunk, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]*types.ExtractionResult, error)
}

// ChunkIndex is an optional retrieval index over chunk content, used to
// pick question-relevant context when a document exceeds the prompt
// budget.
type ChunkIndex interface {
	IndexChunks(ctx context.Context, doc *types.ExtractionResult, chunks []types.Chunk) error
	SearchChunks(ctx context.Context, documentID, query string, limit int) ([]types.Chunk, error)
	RemoveDocument(ctx context.Context, documentID string) error
}
