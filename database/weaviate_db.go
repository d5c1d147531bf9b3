package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/docqa/docqa-be/types"
)

const chunkBatchSize = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "wordStart", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStoreConfig configures the weaviate chunk index.
type WeaviateStoreConfig struct {
	Host     string `mapstructure:"host"`
	APIKey   string `mapstructure:"WEAVIATE_APIKEY"`
	Text2Vec string `mapstructure:"text2vec"`
}

// WeaviateStore indexes document chunks in weaviate for similarity
// retrieval. It implements ChunkIndex; session documents themselves live
// in the MemoryStore.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
	}
	CHUNK_CLASS_OBJECT.Vectorizer = config.Text2Vec

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &WeaviateStore{client: client}, nil
}

func (s *WeaviateStore) IndexChunks(ctx context.Context, doc *types.ExtractionResult, chunks []types.Chunk) error {
	total := len(chunks)
	for i := 0; i < total; i += chunkBatchSize {
		end := i + chunkBatchSize
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: CHUNK_CLASS,
				Properties: map[string]interface{}{
					"content":    chunks[j].Content,
					"documentId": doc.ID,
					"title":      doc.Title,
					"chunkIndex": chunks[j].Index,
					"wordStart":  chunks[j].WordStart,
				},
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		slog.Debug("indexed chunk batch", "from", i, "to", end, "total", total)
	}
	return nil
}

func (s *WeaviateStore) SearchChunks(ctx context.Context, documentID, query string, limit int) ([]types.Chunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "chunkIndex"},
		{Name: "wordStart"},
	}
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText).
		WithWhere(where)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	response, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}

	var chunks []types.Chunk
	if data, ok := response.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			props, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			chunk := types.Chunk{}
			if content, ok := props["content"].(string); ok {
				chunk.Content = content
			}
			if index, ok := props["chunkIndex"].(float64); ok {
				chunk.Index = int(index)
			}
			if start, ok := props["wordStart"].(float64); ok {
				chunk.WordStart = int(start)
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *WeaviateStore) RemoveDocument(ctx context.Context, documentID string) error {
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	return err
}
