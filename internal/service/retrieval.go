package service

import (
	"context"
	"strings"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/documind-ai/documind/internal/telemetry"
)

// DefaultSearchK is the number of nearest chunks retrieved per query.
const DefaultSearchK = 3

// ChunkMatch pairs a stored chunk with its cosine distance to a query vector.
type ChunkMatch struct {
	Chunk    domain.Chunk
	Distance float32
}

// ChunkSearcher defines the vector search the retriever depends on
type ChunkSearcher interface {
	NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]ChunkMatch, error)
}

// RetrievalService embeds a query and finds the nearest stored chunks.
type RetrievalService struct {
	embedder EmbeddingClient
	searcher ChunkSearcher
	k        int
}

// NewRetrievalService creates a new RetrievalService instance. k <= 0 falls
// back to DefaultSearchK.
func NewRetrievalService(embedder EmbeddingClient, searcher ChunkSearcher, k int) *RetrievalService {
	if k <= 0 {
		k = DefaultSearchK
	}
	return &RetrievalService{embedder: embedder, searcher: searcher, k: k}
}

// Search returns up to k retrieved documents ranked by similarity to query,
// best match first. An empty store yields an empty result, not an error.
func (s *RetrievalService) Search(ctx context.Context, query string) ([]domain.RetrievedDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Search", telemetry.SpanAttributes{
		Operation: "vector_search",
	})
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query cannot be empty")
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewEmbeddingFailure(err)
	}

	matches, err := s.searcher.NearestNeighbors(ctx, embedding, s.k)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewStoreFailure(err)
	}

	docs := make([]domain.RetrievedDocument, 0, len(matches))
	for _, match := range matches {
		page := match.Chunk.Metadata.Page
		if page <= 0 {
			page = 1
		}
		docs = append(docs, domain.RetrievedDocument{
			Content: match.Chunk.Text,
			Source:  match.Chunk.SourceName,
			Page:    page,
			// Cosine distance is in [0, 2]; 1 - distance keeps relative
			// ranking and reads as higher-is-closer.
			Score: 1 - match.Distance,
		})
	}
	return docs, nil
}
