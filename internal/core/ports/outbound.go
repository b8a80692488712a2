package ports

import (
	"context"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

// Chunker splits raw text into overlapping token-window chunks.
type Chunker interface {
	Split(text, source string) []domain.Chunk
}

// Embedder builds vectors for chunk and query texts. The returned slice
// has the same length and order as the input; a count mismatch from the
// backend is an error, never a truncated result.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker reorders candidates by relevance to the query, truncated to
// topN. Backend order and scores are authoritative.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []domain.RetrievedChunk, topN int) ([]domain.RerankedChunk, error)
}

// AnswerGenerator creates the final user-facing answer from reranked
// context, honoring the abstention contract.
type AnswerGenerator interface {
	Generate(ctx context.Context, query string, chunks []domain.RerankedChunk) (string, error)
}

// ChunkStore persists chunk rows and serves the two retrieval reads:
// native similarity search and the full-table fallback scan.
type ChunkStore interface {
	Insert(ctx context.Context, rows []domain.StoredChunk) error
	SimilaritySearch(ctx context.Context, queryVector []float32, topK int, minSimilarity float64) ([]domain.RetrievedChunk, error)
	ScanAll(ctx context.Context) ([]domain.StoredChunk, error)
}

// IngestNotifier publishes ingest-completed events. Best effort: a
// failed publish never fails the ingest request.
type IngestNotifier interface {
	PublishIngested(ctx context.Context, source string, chunks int) error
}

// PipelineObserver receives diagnostic pipeline events. Implementations
// must be safe for concurrent use.
type PipelineObserver interface {
	RetrievalFallback()
	Abstention()
}
