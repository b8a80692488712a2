package bootstrap

import (
	"context"
	"fmt"

	"github.com/Tanish196/mini-RAG/internal/config"
	"github.com/Tanish196/mini-RAG/internal/core/ports"
	"github.com/Tanish196/mini-RAG/internal/core/usecase"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/chunking"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/llm/gemini"
	natsqueue "github.com/Tanish196/mini-RAG/internal/infrastructure/queue/nats"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/rerank/jina"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/repository/postgres"
	"github.com/Tanish196/mini-RAG/internal/infrastructure/resilience"
	"github.com/Tanish196/mini-RAG/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	IngestUC ports.Ingestor
	QueryUC  ports.QueryService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewChunkRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	geminiClient := gemini.New(
		cfg.GeminiBaseURL,
		cfg.GeminiAPIKey,
		cfg.GeminiEmbedModel,
		cfg.GeminiChatModel,
		cfg.RequestTimeout(),
		executor,
	)
	embedder := gemini.NewEmbedder(geminiClient)
	generator := gemini.NewGenerator(geminiClient)
	reranker := jina.New(
		cfg.JinaBaseURL,
		cfg.JinaAPIKey,
		cfg.JinaRerankModel,
		cfg.RequestTimeout(),
		executor,
	)

	var notifier ports.IngestNotifier
	var queue *natsqueue.Publisher
	if cfg.NATSURL != "" {
		queue, err = natsqueue.New(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, fmt.Errorf("init ingest notifier: %w", err)
		}
		notifier = queue
	}

	m := metrics.New("api")
	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	retriever := usecase.NewRetriever(repo, m)

	ingestUC := usecase.NewIngestUseCase(splitter, embedder, repo, notifier)
	queryUC := usecase.NewQueryUseCase(embedder, retriever, reranker, generator, m, cfg.RetrievalTopK, cfg.RerankTopN)

	return &App{
		Config:  cfg,
		Metrics: m,

		IngestUC: ingestUC,
		QueryUC:  queryUC,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
