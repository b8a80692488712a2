package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

// ChunkRepository persists chunk rows in a pgvector-backed table.
// Rows are append-only; there is no update or delete path.
type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunks (
	id BIGSERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	chunk_id TEXT NOT NULL UNIQUE,
	chunk_position INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding VECTOR NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) Insert(ctx context.Context, rows []domain.StoredChunk) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapError(domain.ErrStore, "begin chunk insert", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO chunks (source, chunk_id, chunk_position, content, embedding)
VALUES ($1, $2, $3, $4, $5::vector)
`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query,
			row.Source, row.ChunkID, row.Position, row.Content, encodeVector(row.Embedding),
		); err != nil {
			return domain.WrapError(domain.ErrStore, "insert chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(domain.ErrStore, "commit chunk insert", err)
	}
	return nil
}

// SimilaritySearch is the native retrieval path: cosine similarity
// computed by pgvector, ordered and truncated server-side. The floor is
// inclusive; passing -1 accepts every row.
func (r *ChunkRepository) SimilaritySearch(ctx context.Context, queryVector []float32, topK int, minSimilarity float64) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	const query = `
SELECT id, source, chunk_id, chunk_position, content, 1 - (embedding <=> $1::vector) AS similarity
FROM chunks
WHERE 1 - (embedding <=> $1::vector) >= $2
ORDER BY similarity DESC
LIMIT $3
`
	rows, err := r.db.QueryContext(ctx, query, encodeVector(queryVector), minSimilarity, topK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStore, "similarity search", err)
	}
	defer rows.Close()

	out := make([]domain.RetrievedChunk, 0, topK)
	for rows.Next() {
		var chunk domain.RetrievedChunk
		if err := rows.Scan(
			&chunk.RowID, &chunk.Source, &chunk.ChunkID, &chunk.Position, &chunk.Content, &chunk.Similarity,
		); err != nil {
			return nil, domain.WrapError(domain.ErrStore, "scan search row", err)
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "iterate search rows", err)
	}
	return out, nil
}

// ScanAll reads the whole table for the client-side fallback. The
// embedding comes back in pgvector's textual form and is parsed here,
// at the store boundary.
func (r *ChunkRepository) ScanAll(ctx context.Context) ([]domain.StoredChunk, error) {
	const query = `
SELECT id, source, chunk_id, chunk_position, content, embedding::text
FROM chunks
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStore, "scan chunks", err)
	}
	defer rows.Close()

	var out []domain.StoredChunk
	for rows.Next() {
		var row domain.StoredChunk
		var rawEmbedding string
		if err := rows.Scan(
			&row.RowID, &row.Source, &row.ChunkID, &row.Position, &row.Content, &rawEmbedding,
		); err != nil {
			return nil, domain.WrapError(domain.ErrStore, "scan chunk row", err)
		}
		row.Embedding, err = parseVector(rawEmbedding)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStore, "parse chunk embedding", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "iterate chunk rows", err)
	}
	return out, nil
}
