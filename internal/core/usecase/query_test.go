package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

type rerankerFake struct {
	out   []domain.RerankedChunk
	err   error
	calls int
	topN  int
}

func (r *rerankerFake) Rerank(_ context.Context, _ string, chunks []domain.RetrievedChunk, topN int) ([]domain.RerankedChunk, error) {
	r.calls++
	r.topN = topN
	if r.err != nil {
		return nil, r.err
	}
	if r.out != nil {
		return r.out, nil
	}
	out := make([]domain.RerankedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, domain.RerankedChunk{RetrievedChunk: chunk})
	}
	return out, nil
}

type generatorFake struct {
	answer string
	err    error
	calls  int
}

func (g *generatorFake) Generate(_ context.Context, _ string, _ []domain.RerankedChunk) (string, error) {
	g.calls++
	return g.answer, g.err
}

func newQueryFixture(store *storeFake, reranker *rerankerFake, generator *generatorFake, observer *observerFake) *QueryUseCase {
	embedder := &embedderFake{vectors: [][]float32{{0.5, 0.5}}}
	return NewQueryUseCase(embedder, NewRetriever(store, observer), reranker, generator, observer, 8, 3)
}

func TestAnswerRejectsBlankQuery(t *testing.T) {
	uc := newQueryFixture(&storeFake{}, &rerankerFake{}, &generatorFake{}, nil)
	_, err := uc.Answer(context.Background(), "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestAnswerAbstainsOnEmptyRetrieval(t *testing.T) {
	store := &storeFake{}
	reranker := &rerankerFake{}
	generator := &generatorFake{answer: "should never run"}
	observer := &observerFake{}
	uc := newQueryFixture(store, reranker, generator, observer)

	result, err := uc.Answer(context.Background(), "what is X?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.Answer != domain.AbstentionAnswer {
		t.Fatalf("expected abstention answer, got %q", result.Answer)
	}
	if result.Citations == nil || len(result.Citations) != 0 {
		t.Fatalf("expected empty citations, got %+v", result.Citations)
	}
	if result.RetrievedChunks == nil || len(result.RetrievedChunks) != 0 {
		t.Fatalf("expected empty retrieved chunks, got %+v", result.RetrievedChunks)
	}
	if reranker.calls != 0 || generator.calls != 0 {
		t.Fatalf("expected rerank and generate skipped, got %d/%d calls", reranker.calls, generator.calls)
	}
	if result.Timings.RerankMS != 0 || result.Timings.GenerationMS != 0 {
		t.Fatalf("expected zero skipped-stage timings, got %+v", result.Timings)
	}
	if observer.abstentions != 1 {
		t.Fatalf("expected 1 abstention observation, got %d", observer.abstentions)
	}
	if result.TokenEstimate != EstimateTokens("what is X?") {
		t.Fatalf("unexpected token estimate %d", result.TokenEstimate)
	}
}

func TestAnswerFullFlow(t *testing.T) {
	store := &storeFake{searchChunks: []domain.RetrievedChunk{
		{RowID: 1, Source: "a.txt", ChunkID: "c-1", Position: 0, Content: "alpha", Similarity: 0.9},
		{RowID: 2, Source: "a.txt", ChunkID: "c-2", Position: 1, Content: "beta", Similarity: 0.8},
	}}
	reranker := &rerankerFake{out: []domain.RerankedChunk{
		{RetrievedChunk: domain.RetrievedChunk{RowID: 2, Source: "a.txt", ChunkID: "c-2", Position: 1, Content: "beta"}, RerankScore: 0.95},
		{RetrievedChunk: domain.RetrievedChunk{RowID: 1, Source: "a.txt", ChunkID: "c-1", Position: 0, Content: "alpha"}, RerankScore: 0.40},
	}}
	generator := &generatorFake{answer: "Beta is the answer [1]."}
	observer := &observerFake{}
	uc := newQueryFixture(store, reranker, generator, observer)

	result, err := uc.Answer(context.Background(), "what is beta?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.Answer != "Beta is the answer [1]." {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
	if reranker.topN != 3 {
		t.Fatalf("expected topN 3 passed to reranker, got %d", reranker.topN)
	}
	if len(result.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(result.Citations))
	}
	// Citation ordinals follow rerank order.
	if result.Citations[0].ID != 1 || result.Citations[0].ChunkID != "c-2" {
		t.Fatalf("unexpected first citation %+v", result.Citations[0])
	}
	if result.Citations[1].ID != 2 || result.Citations[1].ChunkID != "c-1" {
		t.Fatalf("unexpected second citation %+v", result.Citations[1])
	}
	if len(result.RetrievedChunks) != 2 {
		t.Fatalf("expected reranked chunks echoed, got %d", len(result.RetrievedChunks))
	}
	if observer.abstentions != 0 {
		t.Fatalf("expected no abstention observation, got %d", observer.abstentions)
	}
	wantTokens := EstimateTokensForTexts([]string{"what is beta?", "beta", "alpha"})
	if result.TokenEstimate != wantTokens {
		t.Fatalf("token estimate %d, want %d", result.TokenEstimate, wantTokens)
	}
}

func TestAnswerObservesGeneratorAbstention(t *testing.T) {
	store := &storeFake{searchChunks: []domain.RetrievedChunk{{ChunkID: "c-1", Content: "alpha"}}}
	generator := &generatorFake{answer: domain.AbstentionAnswer}
	observer := &observerFake{}
	uc := newQueryFixture(store, &rerankerFake{}, generator, observer)

	result, err := uc.Answer(context.Background(), "unrelated question")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.Answer != domain.AbstentionAnswer {
		t.Fatalf("expected abstention answer, got %q", result.Answer)
	}
	if observer.abstentions != 1 {
		t.Fatalf("expected 1 abstention observation, got %d", observer.abstentions)
	}
}

func TestAnswerEmbedErrorPropagates(t *testing.T) {
	embedder := &embedderFake{err: errors.New("backend down")}
	uc := NewQueryUseCase(embedder, NewRetriever(&storeFake{}, nil), &rerankerFake{}, &generatorFake{}, nil, 8, 3)

	if _, err := uc.Answer(context.Background(), "q"); err == nil {
		t.Fatalf("expected embed error")
	}
}

func TestAnswerRerankErrorPropagates(t *testing.T) {
	store := &storeFake{searchChunks: []domain.RetrievedChunk{{ChunkID: "c-1"}}}
	reranker := &rerankerFake{err: errors.New("rerank down")}
	uc := newQueryFixture(store, reranker, &generatorFake{}, nil)

	if _, err := uc.Answer(context.Background(), "q"); err == nil {
		t.Fatalf("expected rerank error")
	}
}

func TestAnswerGenerateErrorPropagates(t *testing.T) {
	store := &storeFake{searchChunks: []domain.RetrievedChunk{{ChunkID: "c-1"}}}
	generator := &generatorFake{err: errors.New("generation down")}
	uc := newQueryFixture(store, &rerankerFake{}, generator, nil)

	if _, err := uc.Answer(context.Background(), "q"); err == nil {
		t.Fatalf("expected generation error")
	}
}

func TestNewQueryUseCaseClampsLimits(t *testing.T) {
	uc := NewQueryUseCase(&embedderFake{}, NewRetriever(&storeFake{}, nil), &rerankerFake{}, &generatorFake{}, nil, 0, -1)
	if uc.topK != defaultRetrievalTopK {
		t.Fatalf("expected topK %d, got %d", defaultRetrievalTopK, uc.topK)
	}
	if uc.topN != defaultRerankTopN {
		t.Fatalf("expected topN %d, got %d", defaultRerankTopN, uc.topN)
	}
}
