package application

import (
	"context"
	"strings"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/domain/services"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

func (e *Engine) SetMarketplaceFee(ctx context.Context, caller entities.AccountID, fee entities.BasisPoints) error {
	return e.administer(ctx, "set_marketplace_fee", caller, func(ctx context.Context, store ports.RegistryStore, config entities.MarketplaceConfig) error {
		if err := services.CheckFee(fee, config.MaxFee); err != nil {
			return err
		}
		config.Fee = fee
		return store.PutConfig(ctx, config)
	})
}

func (e *Engine) SetFeeRecipient(ctx context.Context, caller entities.AccountID, recipient entities.AccountID) error {
	if !validAccount(recipient) {
		return domainerrors.ErrInvalidRequest
	}
	return e.administer(ctx, "set_fee_recipient", caller, func(ctx context.Context, store ports.RegistryStore, config entities.MarketplaceConfig) error {
		config.FeeRecipient = recipient
		return store.PutConfig(ctx, config)
	})
}

// SetNftContractHash configures the template used by Factory for one
// contract type. An empty contract type means psp34.
func (e *Engine) SetNftContractHash(
	ctx context.Context,
	caller entities.AccountID,
	contractType string,
	handle entities.TemplateHandle,
) error {
	normalized, err := entities.NormalizeContractType(contractType)
	if err != nil {
		return err
	}
	return e.administer(ctx, "set_nft_contract_hash", caller, func(ctx context.Context, store ports.RegistryStore, config entities.MarketplaceConfig) error {
		config = config.Clone()
		config.Templates[normalized] = handle
		return store.PutConfig(ctx, config)
	})
}

func (e *Engine) SetContractMetadata(ctx context.Context, caller entities.AccountID, collection entities.AccountID, uri string) error {
	if !validAccount(collection) {
		return domainerrors.ErrInvalidRequest
	}
	return e.administer(ctx, "set_contract_metadata", caller, func(ctx context.Context, store ports.RegistryStore, _ entities.MarketplaceConfig) error {
		existing, found, err := store.GetCollection(ctx, collection)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrNotRegisteredContract
		}
		existing.MetadataURI = strings.TrimSpace(uri)
		return store.PutCollection(ctx, existing)
	})
}

func (e *Engine) administer(
	ctx context.Context,
	operation string,
	caller entities.AccountID,
	fn func(ctx context.Context, store ports.RegistryStore, config entities.MarketplaceConfig) error,
) error {
	err := e.run(ctx, operation, func(ctx context.Context, store ports.RegistryStore) error {
		config, err := e.loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if err := services.CheckMarketplaceOwner(config, caller); err != nil {
			return err
		}
		return fn(ctx, store, config)
	})
	if err != nil {
		e.logger.Warn("marketplace administration failed",
			"event", "marketplace_admin_failed",
			"module", logModule,
			"layer", "application",
			"operation", operation,
			"caller", caller,
			"error", err.Error(),
		)
		return err
	}

	e.logger.Info("marketplace administration applied",
		"event", "marketplace_admin_applied",
		"module", logModule,
		"layer", "application",
		"operation", operation,
		"caller", caller,
	)
	return nil
}
