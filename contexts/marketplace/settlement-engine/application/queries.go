package application

import (
	"context"
	"math/big"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
)

// Read-only accessors. They bypass the reentrancy guard, so they stay callable
// from inside an external call made during a settlement.

func (e *Engine) GetConfig(ctx context.Context) (entities.MarketplaceConfig, error) {
	config, err := e.loadConfig(ctx, e.registry)
	if err != nil {
		return entities.MarketplaceConfig{}, err
	}
	return config.Clone(), nil
}

func (e *Engine) GetMarketplaceFee(ctx context.Context) (entities.BasisPoints, error) {
	config, err := e.loadConfig(ctx, e.registry)
	if err != nil {
		return 0, err
	}
	return config.Fee, nil
}

func (e *Engine) GetMaxFee(ctx context.Context) (entities.BasisPoints, error) {
	config, err := e.loadConfig(ctx, e.registry)
	if err != nil {
		return 0, err
	}
	return config.MaxFee, nil
}

func (e *Engine) GetFeeRecipient(ctx context.Context) (entities.AccountID, error) {
	config, err := e.loadConfig(ctx, e.registry)
	if err != nil {
		return "", err
	}
	return config.FeeRecipient, nil
}

// NftContractHash returns the template for contractType; empty means psp34.
func (e *Engine) NftContractHash(ctx context.Context, contractType string) (entities.TemplateHandle, bool, error) {
	normalized, err := entities.NormalizeContractType(contractType)
	if err != nil {
		return entities.TemplateHandle{}, false, err
	}
	config, err := e.loadConfig(ctx, e.registry)
	if err != nil {
		return entities.TemplateHandle{}, false, err
	}
	handle, ok := config.Template(normalized)
	return handle, ok, nil
}

// GetPrice reports the listing price, or false when the token is not listed.
func (e *Engine) GetPrice(ctx context.Context, collection entities.AccountID, token entities.TokenID) (*big.Int, bool, error) {
	listing, found, err := e.registry.GetListing(ctx, entities.ListingKey{Collection: collection, Token: token})
	if err != nil || !found {
		return nil, false, err
	}
	return entities.CloneAmount(listing.Price), true, nil
}

func (e *Engine) GetListing(ctx context.Context, collection entities.AccountID, token entities.TokenID) (entities.Listing, bool, error) {
	listing, found, err := e.registry.GetListing(ctx, entities.ListingKey{Collection: collection, Token: token})
	if err != nil || !found {
		return entities.Listing{}, false, err
	}
	return listing.Clone(), true, nil
}

func (e *Engine) GetRegisteredCollection(ctx context.Context, collection entities.AccountID) (entities.RegisteredCollection, bool, error) {
	return e.registry.GetCollection(ctx, collection)
}
