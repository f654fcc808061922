package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	application "nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

const logModule = "marketplace/settlement-engine"

// Store is an in-memory registry for local runtime and tests.
// Transactions run against a private copy of the state that replaces the
// shared state only when fn succeeds.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	state       registryState
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	outboxSent  map[string]time.Time

	commitErr error
	logger    *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		state:      newRegistryState(),
		outbox:     make(map[string]ports.OutboxMessage),
		outboxSent: make(map[string]time.Time),
		logger:     application.ResolveLogger(logger),
	}
}

func (s *Store) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, store ports.RegistryStore) error,
) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	view := &txView{state: s.state.clone()}
	s.mu.RUnlock()

	if err := fn(ctx, view); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return err
	}
	s.state = view.state
	for _, message := range view.outbox {
		s.outbox[message.OutboxID] = message
		s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	}

	s.logger.Debug("memory transaction committed",
		"event", "memory_registry_tx_committed",
		"module", logModule,
		"layer", "adapter",
		"outbox_appended", len(view.outbox),
	)
	return nil
}

// FailNextCommit makes the next successful transaction fail at commit time.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

func (s *Store) GetListing(_ context.Context, key entities.ListingKey) (entities.Listing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.state.getListing(key)
	return listing, ok, nil
}

func (s *Store) ContainsListing(_ context.Context, key entities.ListingKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.listings[key]
	return ok, nil
}

func (s *Store) GetCollection(_ context.Context, collection entities.AccountID) (entities.RegisteredCollection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.state.collections[collection]
	return value, ok, nil
}

func (s *Store) ContainsCollection(_ context.Context, collection entities.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.collections[collection]
	return ok, nil
}

func (s *Store) GetConfig(_ context.Context) (entities.MarketplaceConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	config, ok := s.state.getConfig()
	return config, ok, nil
}

// Writes outside WithinTransaction are single-statement transactions.

func (s *Store) PutListing(ctx context.Context, listing entities.Listing) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		return store.PutListing(ctx, listing)
	})
}

func (s *Store) RemoveListing(ctx context.Context, key entities.ListingKey) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		return store.RemoveListing(ctx, key)
	})
}

func (s *Store) PutCollection(ctx context.Context, collection entities.RegisteredCollection) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		return store.PutCollection(ctx, collection)
	})
}

func (s *Store) PutConfig(ctx context.Context, config entities.MarketplaceConfig) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		return store.PutConfig(ctx, config)
	})
}

func (s *Store) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		return store.AppendOutbox(ctx, envelope)
	})
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		messages = append(messages, s.outbox[id])
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

// OutboxEvents returns every committed envelope in append order.
func (s *Store) OutboxEvents() []ports.EventEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.EventEnvelope, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(s.outbox[id].Payload, &envelope); err != nil {
			continue
		}
		events = append(events, envelope)
	}
	return events
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type txView struct {
	state  registryState
	outbox []ports.OutboxMessage
}

func (v *txView) GetListing(_ context.Context, key entities.ListingKey) (entities.Listing, bool, error) {
	listing, ok := v.state.getListing(key)
	return listing, ok, nil
}

func (v *txView) PutListing(_ context.Context, listing entities.Listing) error {
	key := listing.Key()
	if _, exists := v.state.listings[key]; exists {
		return domainerrors.ErrItemAlreadyListedForSale
	}
	v.state.listings[key] = listing.Clone()
	return nil
}

func (v *txView) RemoveListing(_ context.Context, key entities.ListingKey) error {
	delete(v.state.listings, key)
	return nil
}

func (v *txView) ContainsListing(_ context.Context, key entities.ListingKey) (bool, error) {
	_, ok := v.state.listings[key]
	return ok, nil
}

func (v *txView) GetCollection(_ context.Context, collection entities.AccountID) (entities.RegisteredCollection, bool, error) {
	value, ok := v.state.collections[collection]
	return value, ok, nil
}

func (v *txView) PutCollection(_ context.Context, collection entities.RegisteredCollection) error {
	v.state.collections[collection.Collection] = collection
	return nil
}

func (v *txView) ContainsCollection(_ context.Context, collection entities.AccountID) (bool, error) {
	_, ok := v.state.collections[collection]
	return ok, nil
}

func (v *txView) GetConfig(_ context.Context) (entities.MarketplaceConfig, bool, error) {
	config, ok := v.state.getConfig()
	return config, ok, nil
}

func (v *txView) PutConfig(_ context.Context, config entities.MarketplaceConfig) error {
	stored := config.Clone()
	v.state.config = &stored
	return nil
}

func (v *txView) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	v.outbox = append(v.outbox, ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	})
	return nil
}

type registryState struct {
	listings    map[entities.ListingKey]entities.Listing
	collections map[entities.AccountID]entities.RegisteredCollection
	config      *entities.MarketplaceConfig
}

func newRegistryState() registryState {
	return registryState{
		listings:    make(map[entities.ListingKey]entities.Listing),
		collections: make(map[entities.AccountID]entities.RegisteredCollection),
	}
}

func (s registryState) clone() registryState {
	out := registryState{
		listings:    make(map[entities.ListingKey]entities.Listing, len(s.listings)),
		collections: make(map[entities.AccountID]entities.RegisteredCollection, len(s.collections)),
	}
	for key, listing := range s.listings {
		out.listings[key] = listing.Clone()
	}
	for key, collection := range s.collections {
		out.collections[key] = collection
	}
	if s.config != nil {
		config := s.config.Clone()
		out.config = &config
	}
	return out
}

func (s registryState) getListing(key entities.ListingKey) (entities.Listing, bool) {
	listing, ok := s.listings[key]
	if !ok {
		return entities.Listing{}, false
	}
	return listing.Clone(), true
}

func (s registryState) getConfig() (entities.MarketplaceConfig, bool) {
	if s.config == nil {
		return entities.MarketplaceConfig{}, false
	}
	return s.config.Clone(), true
}
