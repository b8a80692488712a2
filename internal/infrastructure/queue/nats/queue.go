package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher emits ingest-completed events for downstream consumers
// (indexer warmers, audit). It is optional wiring: the pipeline treats
// a publish failure as diagnostic, never as a request failure.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

func New(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("mini-rag"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type ingestedEvent struct {
	Source         string    `json:"source"`
	ChunksInserted int       `json:"chunks_inserted"`
	IngestedAt     time.Time `json:"ingested_at"`
}

func (p *Publisher) PublishIngested(_ context.Context, source string, chunks int) error {
	payload, err := json.Marshal(ingestedEvent{
		Source:         source,
		ChunksInserted: chunks,
		IngestedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal ingested event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}
