package usecase

import "unicode/utf8"

// EstimateTokens approximates a token count as one token per four
// characters (code points, not bytes), at least one for non-empty
// input. It is a reporting heuristic and plays no part in chunking.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

func EstimateTokensForTexts(texts []string) int {
	total := 0
	for _, text := range texts {
		total += EstimateTokens(text)
	}
	return total
}
