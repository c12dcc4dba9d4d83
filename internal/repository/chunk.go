package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/documind-ai/documind/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// dbtx is the subset of pgx operations shared by a pool and a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChunkRepository handles persistence of document chunks and their embeddings.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// InsertMany persists all chunks in one transaction and returns the number
// inserted. Existing chunks of the same sources are replaced, so re-uploading
// a file re-indexes it instead of duplicating rows. On any failure the
// transaction rolls back and 0 is returned; a document is either fully
// indexed or absent.
func (r *ChunkRepository) InsertMany(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	seen := make(map[string]struct{})
	for _, c := range chunks {
		if _, ok := seen[c.SourceName]; ok {
			continue
		}
		seen[c.SourceName] = struct{}{}
		if _, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE source_name = $1`, c.SourceName); err != nil {
			return 0, err
		}
	}

	for _, c := range chunks {
		if err := insertChunk(ctx, tx, c); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func insertChunk(ctx context.Context, db dbtx, c domain.Chunk) error {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	metadata, err := json.Marshal(c.Metadata.Map())
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx,
		`INSERT INTO document_chunks (id, source_name, sequence_index, content, metadata, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		c.SourceName,
		c.SequenceIndex,
		c.Text,
		metadata,
		pgvector.NewVector(c.Embedding),
		createdAt,
	)
	return err
}

// NearestNeighbors returns the k chunks closest to embedding by cosine
// distance, nearest first. Ties break on insertion time, then chunk order.
func (r *ChunkRepository) NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]service.ChunkMatch, error) {
	if k < 1 {
		k = 1
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, source_name, sequence_index, content, metadata, created_at, embedding <=> $1 AS distance
		 FROM document_chunks
		 ORDER BY embedding <=> $1, created_at, sequence_index
		 LIMIT $2`,
		pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []service.ChunkMatch
	for rows.Next() {
		var m service.ChunkMatch
		var metadata []byte
		var distance float64
		if err := rows.Scan(
			&m.Chunk.ID,
			&m.Chunk.SourceName,
			&m.Chunk.SequenceIndex,
			&m.Chunk.Text,
			&metadata,
			&m.Chunk.CreatedAt,
			&distance,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			var raw map[string]any
			if err := json.Unmarshal(metadata, &raw); err != nil {
				return nil, err
			}
			m.Chunk.Metadata = domain.ChunkMetadataFromMap(raw)
		}
		m.Distance = float32(distance)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListSources returns one summary per distinct source file, most recently
// ingested first.
func (r *ChunkRepository) ListSources(ctx context.Context) ([]service.SourceSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source_name, COUNT(*), MAX(created_at)
		 FROM document_chunks
		 GROUP BY source_name
		 ORDER BY MAX(created_at) DESC, source_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []service.SourceSummary
	for rows.Next() {
		var s service.SourceSummary
		if err := rows.Scan(&s.SourceName, &s.ChunkCount, &s.LastIngestedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
