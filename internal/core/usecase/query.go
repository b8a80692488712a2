package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
	"github.com/Tanish196/mini-RAG/internal/core/ports"
)

const (
	defaultRetrievalTopK = 8
	defaultRerankTopN    = 3
)

// QueryUseCase runs the query flow: embed, retrieve, rerank, generate,
// cite. Rerank and generation are skipped entirely when retrieval comes
// back empty.
type QueryUseCase struct {
	embedder  ports.Embedder
	retriever *Retriever
	reranker  ports.Reranker
	generator ports.AnswerGenerator
	observer  ports.PipelineObserver
	topK      int
	topN      int
}

func NewQueryUseCase(
	embedder ports.Embedder,
	retriever *Retriever,
	reranker ports.Reranker,
	generator ports.AnswerGenerator,
	observer ports.PipelineObserver,
	topK, topN int,
) *QueryUseCase {
	if topK <= 0 {
		topK = defaultRetrievalTopK
	}
	if topN <= 0 {
		topN = defaultRerankTopN
	}
	return &QueryUseCase{
		embedder:  embedder,
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		observer:  observer,
		topK:      topK,
		topN:      topN,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, query string) (*domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "query", errors.New("query is required"))
	}

	var timings domain.QueryTimings

	embedStart := time.Now()
	vectors, err := uc.embedder.Embed(ctx, []string{query})
	timings.EmbeddingMS = msSince(embedStart)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	retrieveStart := time.Now()
	retrieved, err := uc.retriever.Retrieve(ctx, vectors[0], uc.topK)
	timings.RetrievalMS = msSince(retrieveStart)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	if len(retrieved) == 0 {
		if uc.observer != nil {
			uc.observer.Abstention()
		}
		return &domain.QueryResult{
			Answer:          domain.AbstentionAnswer,
			Citations:       []domain.Citation{},
			Timings:         timings,
			TokenEstimate:   EstimateTokens(query),
			RetrievedChunks: []domain.RerankedChunk{},
		}, nil
	}

	rerankStart := time.Now()
	reranked, err := uc.reranker.Rerank(ctx, query, retrieved, uc.topN)
	timings.RerankMS = msSince(rerankStart)
	if err != nil {
		return nil, fmt.Errorf("rerank chunks: %w", err)
	}

	generateStart := time.Now()
	answer, err := uc.generator.Generate(ctx, query, reranked)
	timings.GenerationMS = msSince(generateStart)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if answer == domain.AbstentionAnswer && uc.observer != nil {
		uc.observer.Abstention()
	}

	texts := make([]string, 0, len(reranked)+1)
	texts = append(texts, query)
	for _, chunk := range reranked {
		texts = append(texts, chunk.Content)
	}

	if reranked == nil {
		reranked = []domain.RerankedChunk{}
	}
	return &domain.QueryResult{
		Answer:          answer,
		Citations:       BuildCitations(reranked),
		Timings:         timings,
		TokenEstimate:   EstimateTokensForTexts(texts),
		RetrievedChunks: reranked,
	}, nil
}
