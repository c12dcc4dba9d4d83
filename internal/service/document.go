package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/documind-ai/documind/internal/telemetry"
)

// EmbeddingClient defines the embedding operations the document pipeline depends on
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentChunkRepository defines the repository interface for chunk persistence
type DocumentChunkRepository interface {
	InsertMany(ctx context.Context, chunks []domain.Chunk) (int, error)
	ListSources(ctx context.Context) ([]SourceSummary, error)
}

// ArchiveStore stores original uploads alongside the indexed chunks. Optional;
// ingestion succeeds without one.
type ArchiveStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// SourceSummary is one row of the document listing: a source file and the
// chunks indexed from it.
type SourceSummary struct {
	SourceName     string
	ChunkCount     int
	LastIngestedAt time.Time
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	Filename        string
	ChunksProcessed int
}

// DocumentService runs the full ingestion pipeline: parse, split, embed,
// store. Either every chunk of a document is persisted or none are.
type DocumentService struct {
	ingestion           *IngestionService
	embedder            EmbeddingClient
	repo                DocumentChunkRepository
	archive             ArchiveStore
	embeddingTimeout    time.Duration
	downloadExpiry      time.Duration
	embeddingDimensions int
}

// NewDocumentService creates a new DocumentService instance. archive may be
// nil when no object store is configured.
func NewDocumentService(
	ingestion *IngestionService,
	embedder EmbeddingClient,
	repo DocumentChunkRepository,
	archive ArchiveStore,
) *DocumentService {
	return &DocumentService{
		ingestion:           ingestion,
		embedder:            embedder,
		repo:                repo,
		archive:             archive,
		embeddingTimeout:    15 * time.Second,
		downloadExpiry:      15 * time.Minute,
		embeddingDimensions: 1536,
	}
}

// SetEmbeddingTimeout overrides the per-document embedding deadline.
func (s *DocumentService) SetEmbeddingTimeout(d time.Duration) {
	if d > 0 {
		s.embeddingTimeout = d
	}
}

// SetEmbeddingDimensions overrides the embedding width chunks are validated
// against before persistence.
func (s *DocumentService) SetEmbeddingDimensions(n int) {
	if n > 0 {
		s.embeddingDimensions = n
	}
}

// IngestDocument parses data, embeds every chunk in one batch, and persists
// them transactionally. The original bytes are archived afterwards on a
// best-effort basis; an archive failure is logged, never surfaced.
func (s *DocumentService) IngestDocument(ctx context.Context, data []byte, filename string) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.IngestDocument", telemetry.SpanAttributes{
		Source:    filename,
		Operation: "ingest",
	})
	defer span.End()

	chunks, err := s.ingestion.ProcessFile(data, filename)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embeddingTimeout)
	defer cancel()

	embeddings, err := s.embedder.GenerateEmbeddings(embedCtx, texts)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewEmbeddingFailure(err)
	}

	if len(embeddings) != len(chunks) {
		err := fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks))
		span.SetError(err)
		return nil, domain.NewEmbeddingFailure(err)
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
		if err := domain.ValidateChunk(&chunks[i], s.embeddingDimensions); err != nil {
			span.SetError(err)
			return nil, domain.NewEmbeddingFailure(err)
		}
	}

	inserted, err := s.repo.InsertMany(ctx, chunks)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewStoreFailure(err)
	}

	if s.archive != nil {
		if err := s.archive.Upload(ctx, filename, data, contentTypeFor(filename)); err != nil {
			log.Printf("archive: failed to store original %q: %v", filename, err)
		}
	}

	return &IngestResult{Filename: filename, ChunksProcessed: inserted}, nil
}

// ListDocuments returns one summary per ingested source file.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]SourceSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.ListDocuments", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	summaries, err := s.repo.ListSources(ctx)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewStoreFailure(err)
	}
	return summaries, nil
}

// DownloadURL returns a presigned URL for the archived original of filename.
// Fails when no archive store is configured or the file was never ingested.
func (s *DocumentService) DownloadURL(ctx context.Context, filename string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.DownloadURL", telemetry.SpanAttributes{
		Source:    filename,
		Operation: "download",
	})
	defer span.End()

	if s.archive == nil {
		return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "document archive is not configured")
	}

	summaries, err := s.repo.ListSources(ctx)
	if err != nil {
		span.SetError(err)
		return "", domain.NewStoreFailure(err)
	}
	known := false
	for _, summary := range summaries {
		if summary.SourceName == filename {
			known = true
			break
		}
	}
	if !known {
		return "", domain.ErrDocumentNotFound
	}

	url, err := s.archive.DownloadURL(ctx, filename, s.downloadExpiry)
	if err != nil {
		span.SetError(err)
		return "", domain.NewStoreFailure(err)
	}
	return url, nil
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".md":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
