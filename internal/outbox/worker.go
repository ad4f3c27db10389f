// README: Outbox worker; drains pending order events to the broker.
package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Repository is the slice of the store the worker needs.
type Repository interface {
	Pending(ctx context.Context, limit int) ([]Message, error)
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

// Publisher delivers one message to the broker.
type Publisher interface {
	Publish(exchange, routingKey, contentType string, body []byte) error
}

type Worker struct {
	repo         Repository
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	backoffBase  time.Duration
	stopCh       chan struct{}
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	BackoffBase  time.Duration
}

func NewWorker(repo Repository, publisher Publisher, cfg WorkerConfig) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 30 * time.Second
	}
	return &Worker{
		repo:         repo,
		publisher:    publisher,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		backoffBase:  cfg.BackoffBase,
		stopCh:       make(chan struct{}),
	}
}

// Start polls until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox worker shutting down")
			return
		case <-w.stopCh:
			slog.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
}

// Drain attempts one publish pass over the due messages.
func (w *Worker) Drain(ctx context.Context) {
	msgs, err := w.repo.Pending(ctx, w.batchSize)
	if err != nil {
		slog.Error("outbox: load pending messages", "error", err)
		return
	}
	if len(msgs) == 0 {
		return
	}
	slog.Info("outbox: publishing", "count", len(msgs))

	for _, msg := range msgs {
		err := w.publisher.Publish(msg.Exchange, msg.RoutingKey, msg.ContentType, msg.Payload)
		if err != nil {
			retries := msg.RetryCount + 1
			// 30s, 60s, 120s, ... capped by max_retries in the query.
			backoff := time.Duration(math.Pow(2, float64(retries-1))) * w.backoffBase
			nextRetryAt := time.Now().Add(backoff)
			slog.Warn("outbox: publish failed, rescheduling",
				"outbox_id", msg.ID, "retry_count", retries, "next_retry", nextRetryAt, "error", err)
			if err := w.repo.UpdateRetry(ctx, msg.ID, retries, err.Error(), nextRetryAt); err != nil {
				slog.Error("outbox: update retry", "outbox_id", msg.ID, "error", err)
			}
			continue
		}
		if err := w.repo.Delete(ctx, msg.ID); err != nil {
			slog.Error("outbox: delete after publish", "outbox_id", msg.ID, "error", err)
		}
	}
}
