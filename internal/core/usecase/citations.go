package usecase

import "github.com/Tanish196/mini-RAG/internal/core/domain"

// BuildCitations renumbers the reranked sequence 1-based by position.
// It never filters or reorders; ordinals depend only on array position,
// not on score magnitude.
func BuildCitations(chunks []domain.RerankedChunk) []domain.Citation {
	out := make([]domain.Citation, 0, len(chunks))
	for i, chunk := range chunks {
		out = append(out, domain.Citation{
			ID:       i + 1,
			Source:   chunk.Source,
			ChunkID:  chunk.ChunkID,
			Position: chunk.Position,
		})
	}
	return out
}
