package gemini

import (
	"fmt"
	"strings"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
)

const answerSystemPrompt = "You are a grounded assistant. " +
	"Answer only using the provided context. " +
	"If the answer is not in the context, respond exactly with: " +
	domain.AbstentionAnswer

// abstentionMarker drops the trailing period so that a hedged answer
// embedding the phrase mid-sentence still counts as a full abstention.
var abstentionMarker = strings.TrimSuffix(domain.AbstentionAnswer, ".")

func buildUserPrompt(query string, chunks []domain.RerankedChunk) string {
	var contextBuilder strings.Builder
	for idx, chunk := range chunks {
		contextBuilder.WriteString(fmt.Sprintf("[%d] %s\n\n", idx+1, chunk.Content))
	}

	return fmt.Sprintf(
		"Question: %s\n\nContext:\n%s"+
			"Provide a concise answer with inline citations like [1] or [1][2].",
		query,
		contextBuilder.String(),
	)
}
