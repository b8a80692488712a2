package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Tanish196/mini-RAG/internal/config"
	"github.com/Tanish196/mini-RAG/internal/core/ports"
	"github.com/Tanish196/mini-RAG/internal/observability/metrics"
)

type Router struct {
	cfg      config.Config
	ingestUC ports.Ingestor
	queryUC  ports.QueryService
	metrics  *metrics.Metrics
}

func NewRouter(
	cfg config.Config,
	ingestUC ports.Ingestor,
	queryUC ports.QueryService,
	m *metrics.Metrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestUC: ingestUC,
		queryUC:  queryUC,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/ingest", rt.ingest)
	mux.HandleFunc("/api/query", rt.query)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(rt.cfg, handler)
	handler = metricsMiddleware(rt.metrics, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// Rejected here, before any pipeline stage runs.
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	result, err := rt.ingestUC.Ingest(r.Context(), req.Text, req.Source)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveStage("ingest", "chunking", result.Timings.ChunkingMS)
		rt.metrics.ObserveStage("ingest", "embedding", result.Timings.EmbeddingMS)
		rt.metrics.ObserveStage("ingest", "insert", result.Timings.InsertMS)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	result, err := rt.queryUC.Answer(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveStage("query", "embedding", result.Timings.EmbeddingMS)
		rt.metrics.ObserveStage("query", "retrieval", result.Timings.RetrievalMS)
		rt.metrics.ObserveStage("query", "rerank", result.Timings.RerankMS)
		rt.metrics.ObserveStage("query", "generation", result.Timings.GenerationMS)
		rt.metrics.ObserveRetrievedChunks(len(result.RetrievedChunks))
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
