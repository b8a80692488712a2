package usecase

import (
	"testing"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

func TestBuildCitationsRenumbersByPosition(t *testing.T) {
	reranked := []domain.RerankedChunk{
		{RetrievedChunk: domain.RetrievedChunk{Source: "b.txt", ChunkID: "c-7", Position: 4}, RerankScore: 0.2},
		{RetrievedChunk: domain.RetrievedChunk{Source: "a.txt", ChunkID: "c-1", Position: 0}, RerankScore: 0.9},
	}

	citations := BuildCitations(reranked)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	// Ordinals follow array order, not score.
	if citations[0].ID != 1 || citations[0].ChunkID != "c-7" {
		t.Fatalf("unexpected first citation %+v", citations[0])
	}
	if citations[1].ID != 2 || citations[1].ChunkID != "c-1" {
		t.Fatalf("unexpected second citation %+v", citations[1])
	}
	if citations[1].Source != "a.txt" || citations[1].Position != 0 {
		t.Fatalf("citation lost chunk identity: %+v", citations[1])
	}
}

func TestBuildCitationsEmptyInput(t *testing.T) {
	citations := BuildCitations(nil)
	if citations == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(citations) != 0 {
		t.Fatalf("expected no citations, got %d", len(citations))
	}
}
