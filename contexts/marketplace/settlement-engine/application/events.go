package application

import (
	"context"
	"encoding/json"
	"math/big"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
	contractsv1 "nftmarket/contracts/gen/events/v1"
)

const (
	EventTypeTokenListed          = contractsv1.EventTypeTokenListed
	EventTypeTokenBought          = contractsv1.EventTypeTokenBought
	EventTypeCollectionRegistered = contractsv1.EventTypeCollectionRegistered

	eventSourceService = "marketplace-settlement-engine"
)

// emitTokenListed records a listed event; a nil price is the delist signal.
func (e *Engine) emitTokenListed(ctx context.Context, store ports.RegistryStore, key entities.ListingKey, price *big.Int) error {
	data := contractsv1.TokenListed{
		Collection: string(key.Collection),
		TokenID:    string(key.Token),
	}
	if price != nil {
		value := price.String()
		data.Price = &value
	}
	return e.emit(ctx, store, EventTypeTokenListed, key.Collection, data)
}

func (e *Engine) emitTokenBought(
	ctx context.Context,
	store ports.RegistryStore,
	key entities.ListingKey,
	price *big.Int,
	buyer entities.AccountID,
	seller entities.AccountID,
) error {
	return e.emit(ctx, store, EventTypeTokenBought, key.Collection, contractsv1.TokenBought{
		Collection: string(key.Collection),
		TokenID:    string(key.Token),
		Price:      price.String(),
		Buyer:      string(buyer),
		Seller:     string(seller),
	})
}

func (e *Engine) emitCollectionRegistered(ctx context.Context, store ports.RegistryStore, collection entities.AccountID) error {
	return e.emit(ctx, store, EventTypeCollectionRegistered, collection, contractsv1.CollectionRegistered{
		Collection: string(collection),
	})
}

func (e *Engine) emit(
	ctx context.Context,
	store ports.RegistryStore,
	eventType string,
	collection entities.AccountID,
	data any,
) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	eventID, err := e.idGen.NewID(ctx)
	if err != nil {
		return err
	}
	return store.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       e.now(),
		SourceService:    eventSourceService,
		SchemaVersion:    1,
		PartitionKeyPath: contractsv1.PartitionKeyPathCollection,
		PartitionKey:     string(collection),
		Data:             payload,
	})
}
