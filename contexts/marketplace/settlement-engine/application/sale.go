package application

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/domain/services"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

type ListCommand struct {
	Caller     entities.AccountID
	Collection entities.AccountID
	Token      entities.TokenID
	Price      *big.Int
}

type UnlistCommand struct {
	Caller     entities.AccountID
	Collection entities.AccountID
	Token      entities.TokenID
}

// BuyCommand carries the payment attached to the call.
type BuyCommand struct {
	Caller     entities.AccountID
	Collection entities.AccountID
	Token      entities.TokenID
	Payment    *big.Int
}

type BuyResult struct {
	Seller entities.AccountID
	Split  services.Split
}

func (e *Engine) List(ctx context.Context, cmd ListCommand) (entities.Listing, error) {
	key := entities.ListingKey{Collection: cmd.Collection, Token: cmd.Token}
	listing, err := entities.NewListing(key, cmd.Caller, cmd.Price)
	if err != nil {
		return entities.Listing{}, err
	}

	err = e.run(ctx, "list", func(ctx context.Context, store ports.RegistryStore) error {
		listed, err := store.ContainsListing(ctx, key)
		if err != nil {
			return err
		}
		if listed {
			return domainerrors.ErrItemAlreadyListedForSale
		}
		if err := e.checkTokenOwner(ctx, store, key, cmd.Caller); err != nil {
			return err
		}
		if err := store.PutListing(ctx, listing); err != nil {
			return err
		}
		return e.emitTokenListed(ctx, store, key, listing.Price)
	})
	if err != nil {
		e.logger.Warn("list token failed",
			"event", "marketplace_list_failed",
			"module", logModule,
			"layer", "application",
			"collection", cmd.Collection,
			"token_id", cmd.Token,
			"caller", cmd.Caller,
			"error", err.Error(),
		)
		return entities.Listing{}, err
	}

	e.logger.Info("token listed",
		"event", "marketplace_token_listed",
		"module", logModule,
		"layer", "application",
		"collection", cmd.Collection,
		"token_id", cmd.Token,
		"seller", cmd.Caller,
		"price", listing.Price.String(),
	)
	return listing.Clone(), nil
}

// Unlist may be called by the token's current owner, who is not necessarily
// the account that created the listing.
func (e *Engine) Unlist(ctx context.Context, cmd UnlistCommand) error {
	key := entities.ListingKey{Collection: cmd.Collection, Token: cmd.Token}
	if !key.Valid() || !validAccount(cmd.Caller) {
		return domainerrors.ErrInvalidRequest
	}

	err := e.run(ctx, "unlist", func(ctx context.Context, store ports.RegistryStore) error {
		listed, err := store.ContainsListing(ctx, key)
		if err != nil {
			return err
		}
		if !listed {
			return domainerrors.ErrItemNotListedForSale
		}
		if err := e.checkTokenOwner(ctx, store, key, cmd.Caller); err != nil {
			return err
		}
		if err := store.RemoveListing(ctx, key); err != nil {
			return err
		}
		return e.emitTokenListed(ctx, store, key, nil)
	})
	if err != nil {
		e.logger.Warn("unlist token failed",
			"event", "marketplace_unlist_failed",
			"module", logModule,
			"layer", "application",
			"collection", cmd.Collection,
			"token_id", cmd.Token,
			"caller", cmd.Caller,
			"error", err.Error(),
		)
		return err
	}

	e.logger.Info("token unlisted",
		"event", "marketplace_token_unlisted",
		"module", logModule,
		"layer", "application",
		"collection", cmd.Collection,
		"token_id", cmd.Token,
	)
	return nil
}

// Buy settles a listing against the attached payment in this order:
// 1) listing, owner, price and registration checks
// 2) token transfer to the buyer
// 3) seller, marketplace and royalty payments
// 4) listing removal and bought event.
// A failure after step 2 unwinds the external effects and rolls back the
// registry transaction.
func (e *Engine) Buy(ctx context.Context, cmd BuyCommand) (BuyResult, error) {
	key := entities.ListingKey{Collection: cmd.Collection, Token: cmd.Token}
	if !key.Valid() || !validAccount(cmd.Caller) {
		return BuyResult{}, domainerrors.ErrInvalidRequest
	}
	if err := entities.ValidateAmount(cmd.Payment); err != nil {
		return BuyResult{}, err
	}

	journal := newSettlementJournal(e.logger)
	var result BuyResult

	err := e.guarded("buy", func() error {
		err := e.registry.WithinTransaction(ctx, func(ctx context.Context, store ports.RegistryStore) error {
			return e.buyWithin(ctx, store, journal, key, cmd, &result)
		})
		if err == nil || journal.len() == 0 {
			return err
		}
		// Covers failures inside the transaction as well as a failed commit
		// after settlement. Undo calls must reach the ledger even when the
		// caller has gone away.
		if compErr := journal.unwind(context.WithoutCancel(ctx)); compErr != nil {
			err = errors.Join(err, compErr)
		}
		return err
	})
	if err != nil {
		e.logger.Warn("buy token failed",
			"event", "marketplace_buy_failed",
			"module", logModule,
			"layer", "application",
			"collection", cmd.Collection,
			"token_id", cmd.Token,
			"buyer", cmd.Caller,
			"error", err.Error(),
		)
		return BuyResult{}, err
	}

	e.logger.Info("token bought",
		"event", "marketplace_token_bought",
		"module", logModule,
		"layer", "application",
		"collection", cmd.Collection,
		"token_id", cmd.Token,
		"buyer", cmd.Caller,
		"seller", result.Seller,
		"price", result.Split.Payment.String(),
		"marketplace_fee", result.Split.MarketplaceFee.String(),
		"royalty", result.Split.Royalty.String(),
	)
	return result, nil
}

func (e *Engine) buyWithin(
	ctx context.Context,
	store ports.RegistryStore,
	journal *settlementJournal,
	key entities.ListingKey,
	cmd BuyCommand,
	result *BuyResult,
) error {
	listing, found, err := store.GetListing(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrItemNotListedForSale
	}

	owner, exists, err := e.tokens.OwnerOf(ctx, key.Collection, key.Token)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrTokenDoesNotExist
	}
	if owner == cmd.Caller {
		return domainerrors.ErrAlreadyOwner
	}
	if err := services.CheckPrice(cmd.Payment, listing.Price); err != nil {
		return err
	}

	collection, registered, err := store.GetCollection(ctx, key.Collection)
	if err != nil {
		return err
	}
	if !registered {
		return domainerrors.ErrNotRegisteredContract
	}
	config, err := e.loadConfig(ctx, store)
	if err != nil {
		return err
	}
	split, err := services.ComputeSplit(cmd.Payment, config.Fee, collection.Royalty)
	if err != nil {
		return err
	}

	err = e.settle(ctx, journal, key, owner, cmd.Caller, split, config, collection)
	if err != nil {
		return err
	}

	if err := store.RemoveListing(ctx, key); err != nil {
		return err
	}
	if err := e.emitTokenBought(ctx, store, key, split.Payment, cmd.Caller, owner); err != nil {
		return err
	}

	*result = BuyResult{Seller: owner, Split: split}
	return nil
}

type paymentLeg struct {
	step    string
	to      entities.AccountID
	amount  *big.Int
	failure error
}

func (e *Engine) settle(
	ctx context.Context,
	journal *settlementJournal,
	key entities.ListingKey,
	seller entities.AccountID,
	buyer entities.AccountID,
	split services.Split,
	config entities.MarketplaceConfig,
	collection entities.RegisteredCollection,
) error {
	if err := e.tokens.Transfer(ctx, key.Collection, buyer, key.Token, nil); err != nil {
		return fmt.Errorf("%w: %w", domainerrors.ErrUnableToTransferToken, err)
	}
	journal.record("token_transfer", func(ctx context.Context) error {
		return e.tokens.Transfer(ctx, key.Collection, seller, key.Token, nil)
	})

	legs := []paymentLeg{
		{step: "seller_payment", to: seller, amount: split.SellerProceeds, failure: domainerrors.ErrTransferToOwnerFailed},
		{step: "marketplace_payment", to: config.FeeRecipient, amount: split.MarketplaceFee, failure: domainerrors.ErrTransferToMarketplaceFailed},
		{step: "royalty_payment", to: collection.RoyaltyReceiver, amount: split.Royalty, failure: domainerrors.ErrTransferToAuthorFailed},
	}
	for _, leg := range legs {
		if leg.amount.Sign() == 0 {
			continue
		}
		if !validAccount(leg.to) {
			return fmt.Errorf("%w: recipient is not configured", leg.failure)
		}
		if err := e.payments.Transfer(ctx, leg.to, leg.amount); err != nil {
			return fmt.Errorf("%w: %w", leg.failure, err)
		}
		leg := leg
		journal.record(leg.step, func(ctx context.Context) error {
			return e.payments.Reclaim(ctx, leg.to, leg.amount)
		})
	}
	return nil
}
