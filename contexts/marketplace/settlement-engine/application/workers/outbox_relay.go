package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

const (
	DefaultTopic     = "marketplace.events"
	defaultBatchSize = 100
	workerModule     = "marketplace/settlement-engine"
)

// OutboxRelay publishes committed marketplace events. A row is marked sent
// only after the broker accepted it, so delivery is at-least-once.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}
	topic := r.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("marketplace outbox list failed",
			"event", "marketplace_outbox_list_failed",
			"module", workerModule,
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("marketplace outbox decode failed",
				"event", "marketplace_outbox_decode_failed",
				"module", workerModule,
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("marketplace outbox publish failed",
				"event", "marketplace_outbox_publish_failed",
				"module", workerModule,
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, message.OutboxID, now); err != nil {
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("marketplace outbox relayed",
			"event", "marketplace_outbox_relayed",
			"module", workerModule,
			"layer", "worker",
			"topic", topic,
			"sent_count", len(pending),
		)
	}
	return nil
}

// Run polls until ctx is cancelled. A failed cycle is retried on the next tick.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_ = r.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
