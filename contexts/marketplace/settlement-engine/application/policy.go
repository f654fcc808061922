package application

import (
	"context"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/domain/services"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

// checkTokenOwner requires a registered collection and a caller that is the
// token's current owner on the token registry.
func (e *Engine) checkTokenOwner(
	ctx context.Context,
	store ports.RegistryStore,
	key entities.ListingKey,
	caller entities.AccountID,
) error {
	registered, err := store.ContainsCollection(ctx, key.Collection)
	if err != nil {
		return err
	}
	if !registered {
		return domainerrors.ErrNotRegisteredContract
	}

	owner, found, err := e.tokens.OwnerOf(ctx, key.Collection, key.Token)
	if err != nil {
		return err
	}
	return services.CheckTokenOwner(owner, found, caller)
}

// checkRegistrant allows the marketplace owner or the collection's own owner.
func (e *Engine) checkRegistrant(
	ctx context.Context,
	config entities.MarketplaceConfig,
	collection entities.AccountID,
	caller entities.AccountID,
) error {
	if caller == config.Owner {
		return nil
	}
	owner, found, err := e.tokens.CollectionOwner(ctx, collection)
	if err != nil {
		return err
	}
	if !found || owner != caller {
		return domainerrors.ErrNotOwner
	}
	return nil
}
