package application

import (
	"context"
	"math/big"
	"strings"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/domain/services"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

type RegisterCommand struct {
	Caller          entities.AccountID
	Collection      entities.AccountID
	RoyaltyReceiver entities.AccountID
	Royalty         entities.BasisPoints
	MetadataURI     string
}

type FactoryCommand struct {
	Caller          entities.AccountID
	ContractType    string
	MetadataURI     string
	RoyaltyReceiver entities.AccountID
	Royalty         entities.BasisPoints
	Name            string
	Symbol          string
	BaseURI         string
	MaxSupply       uint64
	PricePerMint    *big.Int
}

func (e *Engine) Register(ctx context.Context, cmd RegisterCommand) (entities.RegisteredCollection, error) {
	if !validAccount(cmd.Caller) || !validAccount(cmd.Collection) || !validAccount(cmd.RoyaltyReceiver) {
		return entities.RegisteredCollection{}, domainerrors.ErrInvalidRequest
	}
	collection := entities.RegisteredCollection{
		Collection:      cmd.Collection,
		RoyaltyReceiver: cmd.RoyaltyReceiver,
		Royalty:         cmd.Royalty,
		MetadataURI:     strings.TrimSpace(cmd.MetadataURI),
	}

	err := e.run(ctx, "register", func(ctx context.Context, store ports.RegistryStore) error {
		config, err := e.loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if err := services.CheckFee(cmd.Royalty, config.MaxFee); err != nil {
			return err
		}
		if err := e.checkRegistrant(ctx, config, cmd.Collection, cmd.Caller); err != nil {
			return err
		}
		return e.insertCollection(ctx, store, collection)
	})
	if err != nil {
		e.logger.Warn("register collection failed",
			"event", "marketplace_register_failed",
			"module", logModule,
			"layer", "application",
			"collection", cmd.Collection,
			"caller", cmd.Caller,
			"error", err.Error(),
		)
		return entities.RegisteredCollection{}, err
	}

	e.logger.Info("collection registered",
		"event", "marketplace_collection_registered",
		"module", logModule,
		"layer", "application",
		"collection", cmd.Collection,
		"royalty_bps", cmd.Royalty,
	)
	return collection, nil
}

// Factory deploys a new collection from the configured template and registers
// it. The marketplace is the deployer, so no collection-owner check applies.
//
// The nonce is reserved in its own transaction before the deployer is called,
// so a salt is never reused once a contract may exist at its address. A failed
// instantiation hands the nonce back; a failed registration after a successful
// deployment does not.
func (e *Engine) Factory(ctx context.Context, cmd FactoryCommand) (entities.RegisteredCollection, error) {
	if !validAccount(cmd.Caller) || !validAccount(cmd.RoyaltyReceiver) {
		return entities.RegisteredCollection{}, domainerrors.ErrInvalidRequest
	}
	contractType, err := entities.NormalizeContractType(cmd.ContractType)
	if err != nil {
		return entities.RegisteredCollection{}, err
	}
	pricePerMint := cmd.PricePerMint
	if pricePerMint == nil {
		pricePerMint = new(big.Int)
	}
	if err := entities.ValidateAmount(pricePerMint); err != nil {
		return entities.RegisteredCollection{}, err
	}

	var registered entities.RegisteredCollection
	err = e.guarded("factory", func() error {
		reservation, err := e.reserveNonce(ctx, contractType, cmd.Royalty)
		if err != nil {
			return err
		}

		address, err := e.factory.Instantiate(ctx, ports.InstantiateRequest{
			Template:     reservation.template,
			ContractType: contractType,
			Salt:         DeriveSalt(cmd.Caller, reservation.nonce),
			Args: ports.CollectionArgs{
				Name:            strings.TrimSpace(cmd.Name),
				Symbol:          strings.TrimSpace(cmd.Symbol),
				BaseURI:         strings.TrimSpace(cmd.BaseURI),
				MaxSupply:       cmd.MaxSupply,
				PricePerMint:    entities.CloneAmount(pricePerMint),
				MetadataURI:     strings.TrimSpace(cmd.MetadataURI),
				RoyaltyReceiver: cmd.RoyaltyReceiver,
				Royalty:         cmd.Royalty,
			},
		})
		if err != nil {
			e.releaseNonce(context.WithoutCancel(ctx), reservation.nonce)
			return err
		}

		registered = entities.RegisteredCollection{
			Collection:      address,
			RoyaltyReceiver: cmd.RoyaltyReceiver,
			Royalty:         cmd.Royalty,
			MetadataURI:     strings.TrimSpace(cmd.MetadataURI),
		}
		err = e.registry.WithinTransaction(context.WithoutCancel(ctx), func(ctx context.Context, store ports.RegistryStore) error {
			return e.insertCollection(ctx, store, registered)
		})
		if err != nil {
			e.logger.Error("deployed collection left unregistered",
				"event", "marketplace_factory_orphaned",
				"module", logModule,
				"layer", "application",
				"collection", address,
				"nonce", reservation.nonce,
				"error", err.Error(),
			)
		}
		return err
	})
	if err != nil {
		e.logger.Warn("factory collection failed",
			"event", "marketplace_factory_failed",
			"module", logModule,
			"layer", "application",
			"caller", cmd.Caller,
			"contract_type", contractType,
			"error", err.Error(),
		)
		return entities.RegisteredCollection{}, err
	}

	e.logger.Info("factory collection registered",
		"event", "marketplace_factory_registered",
		"module", logModule,
		"layer", "application",
		"collection", registered.Collection,
		"contract_type", contractType,
	)
	return registered, nil
}

type nonceReservation struct {
	nonce    uint64
	template entities.TemplateHandle
}

// reserveNonce checks the factory preconditions and commits the nonce bump.
func (e *Engine) reserveNonce(
	ctx context.Context,
	contractType entities.ContractType,
	royalty entities.BasisPoints,
) (nonceReservation, error) {
	var reservation nonceReservation
	err := e.registry.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		config, err := e.loadConfig(ctx, store)
		if err != nil {
			return err
		}
		template, ok := config.Template(contractType)
		if !ok {
			return domainerrors.ErrNftContractHashNotSet
		}
		if err := services.CheckFee(royalty, config.MaxFee); err != nil {
			return err
		}

		reservation = nonceReservation{nonce: config.Nonce, template: template}
		config.Nonce++
		return store.PutConfig(ctx, config)
	})
	return reservation, err
}

// releaseNonce returns a reserved nonce when nothing was deployed with it.
// The guard is still held, so the stored nonce can only be nonce+1.
func (e *Engine) releaseNonce(ctx context.Context, nonce uint64) {
	err := e.registry.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
		config, err := e.loadConfig(ctx, store)
		if err != nil {
			return err
		}
		if config.Nonce != nonce+1 {
			return nil
		}
		config.Nonce = nonce
		return store.PutConfig(ctx, config)
	})
	if err != nil {
		e.logger.Warn("factory nonce not released",
			"event", "marketplace_factory_nonce_kept",
			"module", logModule,
			"layer", "application",
			"nonce", nonce,
			"error", err.Error(),
		)
	}
}

func (e *Engine) insertCollection(ctx context.Context, store ports.RegistryStore, collection entities.RegisteredCollection) error {
	exists, err := store.ContainsCollection(ctx, collection.Collection)
	if err != nil {
		return err
	}
	if exists {
		return domainerrors.ErrContractAlreadyRegistered
	}
	if err := store.PutCollection(ctx, collection); err != nil {
		return err
	}
	return e.emitCollectionRegistered(ctx, store, collection.Collection)
}
