package messaging

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

const (
	logModule        = "internal/platform/messaging"
	memberBufferSize = 128
)

// Kafka is the in-process event bus behind the outbox relay. It follows
// consumer-group semantics: every group receives each event once, and within
// a group the partition key picks the member, so events for one collection
// reach the same member in publish order. Brokers are kept for the external
// client configuration.
type Kafka struct {
	mu      sync.RWMutex
	brokers []string
	topics  map[string]map[string][]chan ports.EventEnvelope
	logger  *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers: append([]string(nil), brokers...),
		topics:  make(map[string]map[string][]chan ports.EventEnvelope),
		logger:  logger,
	}, nil
}

func (k *Kafka) Brokers() []string {
	return append([]string(nil), k.brokers...)
}

func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	k.mu.RLock()
	targets := make(map[string]chan ports.EventEnvelope, len(k.topics[topic]))
	for group, members := range k.topics[topic] {
		if len(members) > 0 {
			targets[group] = members[partition(event.PartitionKey, len(members))]
		}
	}
	k.mu.RUnlock()

	for group, member := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case member <- event:
		default:
			k.logger.Warn("consumer group lagging, event dropped",
				"event", "kafka_publish_drop",
				"module", logModule,
				"layer", "platform",
				"topic", topic,
				"consumer_group", group,
				"event_id", event.EventID,
			)
		}
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", logModule,
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
		"groups", len(targets),
	)
	return nil
}

// Subscribe joins consumerGroup on topic and runs handler for each delivered
// event until ctx is cancelled.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	member := make(chan ports.EventEnvelope, memberBufferSize)

	k.mu.Lock()
	groups, ok := k.topics[topic]
	if !ok {
		groups = make(map[string][]chan ports.EventEnvelope)
		k.topics[topic] = groups
	}
	groups[consumerGroup] = append(groups[consumerGroup], member)
	k.mu.Unlock()

	go func() {
		defer k.leave(topic, consumerGroup, member)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-member:
				if err := handler(ctx, event); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", logModule,
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (k *Kafka) leave(topic string, consumerGroup string, member chan ports.EventEnvelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	members := k.topics[topic][consumerGroup]
	kept := make([]chan ports.EventEnvelope, 0, len(members))
	for _, candidate := range members {
		if candidate != member {
			kept = append(kept, candidate)
		}
	}
	if len(kept) == 0 {
		delete(k.topics[topic], consumerGroup)
		return
	}
	k.topics[topic][consumerGroup] = kept
}

func partition(key string, members int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(members))
}
