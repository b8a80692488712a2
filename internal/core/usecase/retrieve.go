package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
	"github.com/Tanish196/mini-RAG/internal/core/ports"
)

// noFloorSimilarity is passed to the store's native search so that no
// candidate is excluded by threshold; truncation happens via topK only.
const noFloorSimilarity = -1.0

// Retriever finds the topK stored chunks most similar to a query
// vector. It prefers the store's native similarity search and degrades
// to a full scan with in-process cosine scoring when the native path is
// unavailable or returns nothing.
type Retriever struct {
	store    ports.ChunkStore
	observer ports.PipelineObserver
}

func NewRetriever(store ports.ChunkStore, observer ports.PipelineObserver) *Retriever {
	return &Retriever{store: store, observer: observer}
}

// primaryOutcome is the explicit two-branch result of the native search:
// either a (possibly empty) row set, or unavailability with its reason.
type primaryOutcome struct {
	chunks      []domain.RetrievedChunk
	unavailable bool
	reason      error
}

func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	outcome := r.primary(ctx, queryVector, topK)
	if !outcome.unavailable && len(outcome.chunks) > 0 {
		// Server-assigned similarity and order are authoritative.
		return outcome.chunks, nil
	}

	if outcome.unavailable {
		slog.Warn("retrieval_primary_unavailable", "error", outcome.reason)
	}
	if r.observer != nil {
		r.observer.RetrievalFallback()
	}
	return r.fallback(ctx, queryVector, topK)
}

func (r *Retriever) primary(ctx context.Context, queryVector []float32, topK int) primaryOutcome {
	chunks, err := r.store.SimilaritySearch(ctx, queryVector, topK, noFloorSimilarity)
	if err != nil {
		return primaryOutcome{unavailable: true, reason: err}
	}
	return primaryOutcome{chunks: chunks}
}

// fallback scans every stored row and scores it in process. O(n), but it
// keeps retrieval correct when the native index or RPC path is broken.
func (r *Retriever) fallback(ctx context.Context, queryVector []float32, topK int) ([]domain.RetrievedChunk, error) {
	rows, err := r.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan stored chunks: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	scored := make([]domain.RetrievedChunk, 0, len(rows))
	for _, row := range rows {
		if len(row.Embedding) == 0 {
			continue
		}
		scored = append(scored, domain.RetrievedChunk{
			RowID:      row.RowID,
			Source:     row.Source,
			ChunkID:    row.ChunkID,
			Position:   row.Position,
			Content:    row.Content,
			Similarity: cosineSimilarity(queryVector, row.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		if scored[i].Source != scored[j].Source {
			return scored[i].Source < scored[j].Source
		}
		return scored[i].Position < scored[j].Position
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// cosineSimilarity returns dot(u,v) / (||u|| * ||v||), and 0.0 when
// either magnitude is zero: a zero vector has no similarity, it is not
// an error.
func cosineSimilarity(u, v []float32) float64 {
	n := len(u)
	if len(v) < n {
		n = len(v)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(u[i]) * float64(v[i])
	}

	var magU, magV float64
	for _, x := range u {
		magU += float64(x) * float64(x)
	}
	for _, x := range v {
		magV += float64(x) * float64(x)
	}
	if magU == 0 || magV == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magU) * math.Sqrt(magV))
}
