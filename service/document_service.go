package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docqa/docqa-be/database"
	"github.com/docqa/docqa-be/types"
)

const retrievalChunkLimit = 8

// DocumentService runs the whole pipeline for one upload: extraction,
// cleaning, structural analysis, chunking and storage, then answers
// questions about the stored text through the gateway. Each upload is one
// sequential pipeline invocation with no state shared across documents.
type DocumentService struct {
	pdfService    *PDFService
	rasterService *RasterService
	gateway       *Gateway
	store         database.DocumentStore
	index         database.ChunkIndex
	chunkSize     int
	chunkOverlap  int
}

func NewDocumentService(
	pdfService *PDFService,
	rasterService *RasterService,
	gateway *Gateway,
	store database.DocumentStore,
	index database.ChunkIndex,
	cfg types.ExtractionConfig,
) *DocumentService {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = types.DefaultExtractionConfig.ChunkSize
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = types.DefaultExtractionConfig.ChunkOverlap
	}
	return &DocumentService{
		pdfService:    pdfService,
		rasterService: rasterService,
		gateway:       gateway,
		store:         store,
		index:         index,
		chunkSize:     chunkSize,
		chunkOverlap:  chunkOverlap,
	}
}

// ProcessBytes extracts text from a PDF buffer and stores the result. The
// byte-level pipeline runs first; when it reports an extraction failure
// (typically an image-based scan) and a raster pipeline is available, the
// document is re-opened page by page for the OCR ladder.
func (s *DocumentService) ProcessBytes(ctx context.Context, data []byte, title string, progress types.ProgressFunc) (*types.ExtractionResult, error) {
	result, err := s.pdfService.Extract(data, title)
	if err != nil {
		if !errors.Is(err, types.ErrExtractionFailed) || s.rasterService == nil {
			return nil, err
		}
		slog.Info("byte-level extraction failed, falling back to raster pipeline", "title", title, "error", err)
		result, err = s.rasterService.ExtractBytes(ctx, data, progress)
		if err != nil {
			return nil, err
		}
		result.Title = title
	}

	return s.finalize(ctx, result)
}

// ProcessDataURI is ProcessBytes for data:application/pdf;base64 payloads.
func (s *DocumentService) ProcessDataURI(ctx context.Context, uri, title string, progress types.ProgressFunc) (*types.ExtractionResult, error) {
	result, err := s.pdfService.ExtractFromDataURI(uri, title)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, result)
}

// finalize derives structure and chunks from the extracted text, assigns
// identity and persists everything.
func (s *DocumentService) finalize(ctx context.Context, result *types.ExtractionResult) (*types.ExtractionResult, error) {
	result.ID = uuid.New().String()
	result.CreatedAt = time.Now().Unix()
	result.Structure = AnalyzeStructure(result.Text)

	chunks, err := ChunkText(result.Text, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveDocument(ctx, result, chunks); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if s.externalIndex() {
		if err := s.index.IndexChunks(ctx, result, chunks); err != nil {
			// retrieval degrades to the full-text clip; the document itself is stored
			slog.Warn("failed to index chunks", "document_id", result.ID, "error", err)
		}
	}

	return result, nil
}

// Ask answers a question about a stored document. When a chunk index is
// available the prompt context is assembled from the most relevant chunks
// instead of a prefix of the whole text.
func (s *DocumentService) Ask(ctx context.Context, documentID, question string) (*types.AskResponse, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	contextText := doc.Text
	if s.index != nil {
		if chunks, err := s.index.SearchChunks(ctx, documentID, question, retrievalChunkLimit); err != nil {
			slog.Warn("chunk retrieval failed, using full text", "document_id", documentID, "error", err)
		} else if len(chunks) > 0 {
			parts := make([]string, 0, len(chunks))
			for _, chunk := range chunks {
				parts = append(parts, chunk.Content)
			}
			contextText = strings.Join(parts, "\n\n")
		}
	}

	answer, provider, err := s.gateway.Answer(ctx, contextText, question)
	if err != nil {
		return nil, err
	}
	return &types.AskResponse{
		DocumentID: documentID,
		Question:   question,
		Answer:     answer,
		Provider:   provider,
	}, nil
}

// Restructure reformats a stored document's text through the gateway and
// replaces the stored text, structure and chunks with the result.
func (s *DocumentService) Restructure(ctx context.Context, documentID string) (*types.ExtractionResult, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	restructured, provider, err := s.gateway.Restructure(ctx, doc.Text)
	if err != nil {
		return nil, err
	}
	slog.Info("document restructured", "document_id", documentID, "provider", provider)

	updated := *doc
	updated.Text = CleanText(restructured)
	updated.Structure = AnalyzeStructure(updated.Text)

	chunks, err := ChunkText(updated.Text, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}
	if s.externalIndex() {
		if err := s.index.RemoveDocument(ctx, documentID); err != nil {
			slog.Warn("failed to drop stale chunk index", "document_id", documentID, "error", err)
		}
	}
	if err := s.store.SaveDocument(ctx, &updated, chunks); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if s.externalIndex() {
		if err := s.index.IndexChunks(ctx, &updated, chunks); err != nil {
			slog.Warn("failed to index chunks", "document_id", documentID, "error", err)
		}
	}
	return &updated, nil
}

// Analyze recomputes the content analysis for a stored document.
func (s *DocumentService) Analyze(ctx context.Context, documentID string) (*types.ContentAnalysis, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	analysis := AnalyzeContent(doc.Text, doc.Structure)
	return &analysis, nil
}

// Get returns a stored document.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*types.ExtractionResult, error) {
	return s.store.GetDocument(ctx, documentID)
}

// Chunks returns a stored document's chunk sequence.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]types.Chunk, error) {
	return s.store.GetChunks(ctx, documentID)
}

// List returns all stored documents in upload order.
func (s *DocumentService) List(ctx context.Context) ([]*types.ExtractionResult, error) {
	return s.store.ListDocuments(ctx)
}

// Delete removes a stored document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if s.externalIndex() {
		if err := s.index.RemoveDocument(ctx, documentID); err != nil {
			slog.Warn("failed to remove document from chunk index", "document_id", documentID, "error", err)
		}
	}
	return s.store.DeleteDocument(ctx, documentID)
}

// externalIndex reports whether a chunk index distinct from the session
// store is configured. The memory store can serve both roles; indexing and
// removal must not run twice against it.
func (s *DocumentService) externalIndex() bool {
	return s.index != nil && any(s.index) != any(s.store)
}
