package chunking

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split windows text into overlapping whitespace-token chunks. Overlap
// not smaller than the chunk size degenerates to a step of one token;
// that is accepted here, callers validate upstream if they want to
// forbid it.
func (s *Splitter) Split(text, source string) []domain.Chunk {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step < 1 {
		step = 1
	}

	out := make([]domain.Chunk, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := start + s.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, domain.Chunk{
			ID:       uuid.NewString(),
			Position: start / step,
			Text:     strings.Join(tokens[start:end], " "),
			Source:   source,
		})
		if end == len(tokens) {
			break
		}
	}
	return out
}
