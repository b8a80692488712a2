package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	embedModel string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

// New builds a Gemini client. The timeout applies uniformly to every
// call; a timed-out call surfaces as a backend error like any other
// failure.
func New(baseURL, apiKey, embedModel, genModel string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		embedModel: embedModel,
		genModel:   genModel,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

type embedContentPart struct {
	Text string `json:"text"`
}

type embedContent struct {
	Parts []embedContentPart `json:"parts"`
}

type embedRequest struct {
	Model   string       `json:"model"`
	Content embedContent `json:"content"`
}

// Embed issues one batched call for all texts. The response must carry
// exactly one vector per input text, in order; anything else is a
// backend failure, never a partial result.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := e.client.embedModel
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	requests := make([]embedRequest, 0, len(texts))
	for _, text := range texts {
		requests = append(requests, embedRequest{
			Model:   model,
			Content: embedContent{Parts: []embedContentPart{{Text: text}}},
		})
	}

	var response struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	path := fmt.Sprintf("/v1beta/%s:batchEmbedContents", model)
	if err := e.client.postJSON(ctx, path, map[string]any{"requests": requests}, &response, "embed"); err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingBackend, "embed texts", err)
	}

	if len(response.Embeddings) != len(texts) {
		return nil, domain.WrapError(domain.ErrEmbeddingBackend, "embed texts",
			fmt.Errorf("%d embeddings for %d texts", len(response.Embeddings), len(texts)))
	}

	out := make([][]float32, len(response.Embeddings))
	for i, embedding := range response.Embeddings {
		out[i] = embedding.Values
	}
	return out, nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// Generate builds a numbered context block and asks the model to answer
// from it alone. Regardless of whether the model obeys, the abstention
// contract is enforced on the way out: no candidates, an empty answer,
// or any answer containing the abstention phrase all collapse to the
// exact abstention string.
func (g *Generator) Generate(ctx context.Context, query string, chunks []domain.RerankedChunk) (string, error) {
	if len(chunks) == 0 {
		return domain.AbstentionAnswer, nil
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": answerSystemPrompt}}},
			{"role": "user", "parts": []map[string]string{{"text": buildUserPrompt(query, chunks)}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": 512,
		},
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", g.client.genModel)
	if err := g.client.postJSON(ctx, path, payload, &response, "generate"); err != nil {
		return "", domain.WrapError(domain.ErrGenerationBackend, "generate answer", err)
	}

	if len(response.Candidates) == 0 {
		return domain.AbstentionAnswer, nil
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	answer := strings.TrimSpace(b.String())

	if answer == "" {
		return domain.AbstentionAnswer, nil
	}
	if strings.Contains(answer, abstentionMarker) {
		return domain.AbstentionAnswer, nil
	}
	return answer, nil
}
