package application_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

func TestConcurrentBuyersSettleOnce(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	h.ledger.Fund(escrow, big.NewInt(2_000))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, buyer := range []string{"bob", "carol"} {
		wg.Add(1)
		go func(i int, buyer string) {
			defer wg.Done()
			_, errs[i] = h.engine.Buy(context.Background(), application.BuyCommand{
				Caller:     entities.AccountID(buyer),
				Collection: collection,
				Token:      tokenID,
				Payment:    big.NewInt(1_000),
			})
		}(i, buyer)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrItemNotListedForSale), errors.Is(err, domainerrors.ErrReentrantCall):
		default:
			t.Fatalf("unexpected buy error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful buy, got %d", succeeded)
	}
	assertBalance(t, h.ledger, alice, 940)
}

func TestGuardRejectsIndependentCallerDuringSettlement(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	release := make(chan struct{})
	entered := make(chan struct{})
	h.ledger.OnTransfer(func(context.Context, entities.AccountID, entities.AccountID, entities.TokenID) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.buy(context.Background(), bob, 1_000)
		done <- err
	}()
	<-entered

	err := h.engine.Unlist(context.Background(), application.UnlistCommand{Caller: alice, Collection: collection, Token: tokenID})
	if !errors.Is(err, domainerrors.ErrReentrantCall) {
		t.Fatalf("expected call during settlement to fail as reentrant, got %v", err)
	}
	if !h.engine.SettlementInProgress() {
		t.Fatalf("expected outer settlement to still hold the guard")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("outer buy: %v", err)
	}
	if h.engine.SettlementInProgress() {
		t.Fatalf("expected guard to be released")
	}
	h.assertListed(t, false)
}
