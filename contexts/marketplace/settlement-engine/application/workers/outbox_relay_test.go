package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"nftmarket/contexts/marketplace/settlement-engine/adapters/memory"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

type recordingPublisher struct {
	topics []string
	events []ports.EventEnvelope
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if event.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func seedOutbox(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:      id,
			EventType:    "marketplace.token_listed",
			PartitionKey: "c1",
			Data:         []byte(`{"collection":"c1"}`),
		})
		if err != nil {
			t.Fatalf("seed outbox: %v", err)
		}
	}
}

func TestOutboxRelayPublishesAndMarksSent(t *testing.T) {
	store := memory.NewStore(nil)
	seedOutbox(t, store, "evt-1", "evt-2")
	publisher := &recordingPublisher{}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.events) != 2 || publisher.topics[0] != DefaultTopic {
		t.Fatalf("expected two events on %s, got %v", DefaultTopic, publisher.topics)
	}
	if publisher.events[0].EventID != "evt-1" || publisher.events[1].EventID != "evt-2" {
		t.Fatalf("expected append order, got %s then %s", publisher.events[0].EventID, publisher.events[1].EventID)
	}

	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %d", len(pending))
	}
}

func TestOutboxRelayKeepsUnpublishedRows(t *testing.T) {
	store := memory.NewStore(nil)
	seedOutbox(t, store, "evt-1", "evt-2", "evt-3")
	publisher := &recordingPublisher{failOn: "evt-2"}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Topic: "custom"}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure")
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 2 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("expected evt-2 and evt-3 pending, got %+v", pending)
	}

	publisher.failOn = ""
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(publisher.events) != 3 || publisher.topics[2] != "custom" {
		t.Fatalf("expected all events delivered on custom topic, got %v", publisher.topics)
	}
}

func TestOutboxRelayRunStopsOnCancel(t *testing.T) {
	store := memory.NewStore(nil)
	relay := OutboxRelay{Outbox: store, Publisher: &recordingPublisher{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := relay.Run(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
