package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Tanish196/mini-RAG/internal/core/domain"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type rerankDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Rerank sends all candidates with the query in one batched call and
// maps the returned indices back to the candidate list. An index the
// candidate list cannot resolve is a hard failure, never skipped.
func (c *Client) Rerank(ctx context.Context, query string, chunks []domain.RetrievedChunk, topN int) ([]domain.RerankedChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	documents := make([]rerankDocument, 0, len(chunks))
	for index, chunk := range chunks {
		documents = append(documents, rerankDocument{
			ID:   strconv.Itoa(index),
			Text: chunk.Content,
		})
	}

	payload := map[string]any{
		"model":     c.model,
		"query":     query,
		"top_n":     topN,
		"documents": documents,
	}

	var response struct {
		Results []struct {
			Index          *int    `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		} `json:"results"`
	}
	if err := c.postJSON(ctx, "/v1/rerank", payload, &response); err != nil {
		return nil, domain.WrapError(domain.ErrRerankBackend, "rerank chunks", err)
	}

	out := make([]domain.RerankedChunk, 0, len(response.Results))
	for pos, result := range response.Results {
		// A zero-value default must not alias candidate 0.
		if result.Index == nil {
			return nil, domain.WrapError(domain.ErrRerankBackend, "rerank chunks",
				fmt.Errorf("result %d has no index", pos))
		}
		index := *result.Index
		if index < 0 || index >= len(chunks) {
			return nil, domain.WrapError(domain.ErrRerankBackend, "rerank chunks",
				fmt.Errorf("result index %d out of range for %d candidates", index, len(chunks)))
		}
		out = append(out, domain.RerankedChunk{
			RetrievedChunk: chunks[index],
			RerankScore:    result.RelevanceScore,
		})
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal rerank request: %w", err)
	}

	call := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create rerank request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("jina rerank request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &resilience.HTTPStatusError{
				Backend:    "jina",
				Operation:  "rerank",
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(raw),
			}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode rerank response: %w", err)
		}
		return nil
	}

	if c.executor == nil {
		return call(ctx)
	}
	err = c.executor.Execute(ctx, "jina.rerank", call, resilience.ClassifyHTTP)
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "jina rerank", err)
	}
	return err
}
