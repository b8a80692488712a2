package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
	"github.com/Tanish196/mini-RAG/internal/core/ports"
)

const defaultSource = "user"

// IngestUseCase runs the ingest flow: chunk, embed in one batch, pair
// chunks with vectors 1:1 and bulk-insert the rows.
type IngestUseCase struct {
	chunker  ports.Chunker
	embedder ports.Embedder
	store    ports.ChunkStore
	notifier ports.IngestNotifier
}

func NewIngestUseCase(
	chunker ports.Chunker,
	embedder ports.Embedder,
	store ports.ChunkStore,
	notifier ports.IngestNotifier,
) *IngestUseCase {
	return &IngestUseCase{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		notifier: notifier,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, text, source string) (*domain.IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest", errors.New("text is required"))
	}
	if source == "" {
		source = defaultSource
	}

	var timings domain.IngestTimings

	chunkStart := time.Now()
	chunks := uc.chunker.Split(text, source)
	timings.ChunkingMS = msSince(chunkStart)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embedStart := time.Now()
	vectors, err := uc.embedder.Embed(ctx, texts)
	timings.EmbeddingMS = msSince(embedStart)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		// The embedder contract already enforces this; a mismatch here
		// is an internal consistency failure, never silently zipped.
		return nil, fmt.Errorf("embed chunks: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	rows := make([]domain.StoredChunk, len(chunks))
	for i, chunk := range chunks {
		rows[i] = domain.StoredChunk{
			Source:    chunk.Source,
			ChunkID:   chunk.ID,
			Position:  chunk.Position,
			Content:   chunk.Text,
			Embedding: vectors[i],
		}
	}

	insertStart := time.Now()
	err = uc.store.Insert(ctx, rows)
	timings.InsertMS = msSince(insertStart)
	if err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	if uc.notifier != nil {
		if err := uc.notifier.PublishIngested(ctx, source, len(rows)); err != nil {
			slog.Warn("ingest_event_publish_failed", "source", source, "error", err)
		}
	}

	return &domain.IngestResult{
		ChunksInserted: len(rows),
		TokenEstimate:  EstimateTokens(text),
		Timings:        timings,
	}, nil
}
