package ports

import (
	"context"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

// Ingestor is the inbound contract for text ingestion.
type Ingestor interface {
	Ingest(ctx context.Context, text, source string) (*domain.IngestResult, error)
}

// QueryService is the inbound contract for grounded question answering.
type QueryService interface {
	Answer(ctx context.Context, query string) (*domain.QueryResult, error)
}
