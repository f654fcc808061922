package ports

import (
	"context"
	"math/big"
	"time"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	contractsv1 "nftmarket/contracts/gen/events/v1"
)

// RegistryStore is plain key-value access over listings, collections, the
// singleton config and the outbox. It enforces no business rules.
type RegistryStore interface {
	GetListing(ctx context.Context, key entities.ListingKey) (entities.Listing, bool, error)
	// PutListing inserts a listing; an existing key is an invariant violation.
	PutListing(ctx context.Context, listing entities.Listing) error
	RemoveListing(ctx context.Context, key entities.ListingKey) error
	ContainsListing(ctx context.Context, key entities.ListingKey) (bool, error)

	GetCollection(ctx context.Context, collection entities.AccountID) (entities.RegisteredCollection, bool, error)
	PutCollection(ctx context.Context, collection entities.RegisteredCollection) error
	ContainsCollection(ctx context.Context, collection entities.AccountID) (bool, error)

	GetConfig(ctx context.Context) (entities.MarketplaceConfig, bool, error)
	PutConfig(ctx context.Context, config entities.MarketplaceConfig) error

	// AppendOutbox is the event sink: rows become visible to the relay only
	// once the surrounding transaction commits.
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// Registry owns transaction boundaries. Everything written through the store
// handed to fn commits together or not at all.
type Registry interface {
	RegistryStore
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, store RegistryStore) error) error
}

// TokenRegistry is the external asset-ownership ledger. Implementations must
// pass ctx through to anything that may call back into the marketplace.
type TokenRegistry interface {
	OwnerOf(ctx context.Context, collection entities.AccountID, token entities.TokenID) (entities.AccountID, bool, error)
	// CollectionOwner resolves the owner of the collection contract itself.
	CollectionOwner(ctx context.Context, collection entities.AccountID) (entities.AccountID, bool, error)
	Transfer(ctx context.Context, collection entities.AccountID, to entities.AccountID, token entities.TokenID, data []byte) error
}

// ValueTransfer moves funds out of the marketplace balance.
type ValueTransfer interface {
	Transfer(ctx context.Context, to entities.AccountID, amount *big.Int) error
	// Reclaim reverses a Transfer made earlier within the same settlement.
	Reclaim(ctx context.Context, from entities.AccountID, amount *big.Int) error
}

// CollectionArgs are the constructor parameters of a new collection contract.
type CollectionArgs struct {
	Name            string
	Symbol          string
	BaseURI         string
	MaxSupply       uint64
	PricePerMint    *big.Int
	MetadataURI     string
	RoyaltyReceiver entities.AccountID
	Royalty         entities.BasisPoints
}

type InstantiateRequest struct {
	Template     entities.TemplateHandle
	ContractType entities.ContractType
	Args         CollectionArgs
	Endowment    *big.Int
	Salt         [32]byte
}

type CollectionDeployer interface {
	Instantiate(ctx context.Context, req InstantiateRequest) (entities.AccountID, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
