package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"nftmarket/contexts/marketplace/settlement-engine/adapters/memory"
	"nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	contractsv1 "nftmarket/contracts/gen/events/v1"
)

const (
	escrow     entities.AccountID = "escrow"
	admin      entities.AccountID = "admin"
	treasury   entities.AccountID = "treasury"
	creator    entities.AccountID = "creator"
	alice      entities.AccountID = "alice"
	bob        entities.AccountID = "bob"
	collection entities.AccountID = "collection-1"
	tokenID    entities.TokenID   = "1"
)

type harness struct {
	engine *application.Engine
	store  *memory.Store
	ledger *memory.Ledger
}

func newHarness(t *testing.T) harness {
	t.Helper()
	store := memory.NewStore(nil)
	ledger := memory.NewLedger(escrow)
	engine := application.NewEngine(application.EngineDependencies{
		Registry: store,
		Tokens:   ledger,
		Payments: ledger.Payments(),
		Deployer: ledger,
		Clock:    store,
		IDGen:    store,
	})
	_, err := engine.Initialize(context.Background(), application.InitialConfig{
		Owner:        admin,
		FeeRecipient: treasury,
		Fee:          100,
		MaxFee:       1000,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return harness{engine: engine, store: store, ledger: ledger}
}

// withListing registers the collection with a 5% royalty, mints the token to
// alice and lists it at price.
func (h harness) withListing(t *testing.T, price int64) {
	t.Helper()
	ctx := context.Background()
	h.ledger.SetCollectionOwner(collection, creator)
	h.ledger.Mint(collection, tokenID, alice)
	_, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller:          creator,
		Collection:      collection,
		RoyaltyReceiver: creator,
		Royalty:         500,
		MetadataURI:     "ipfs://collection",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = h.engine.List(ctx, application.ListCommand{
		Caller:     alice,
		Collection: collection,
		Token:      tokenID,
		Price:      big.NewInt(price),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
}

func (h harness) buy(ctx context.Context, buyer entities.AccountID, payment int64) (application.BuyResult, error) {
	h.ledger.Fund(escrow, big.NewInt(payment))
	return h.engine.Buy(ctx, application.BuyCommand{
		Caller:     buyer,
		Collection: collection,
		Token:      tokenID,
		Payment:    big.NewInt(payment),
	})
}

func (h harness) assertListed(t *testing.T, want bool) {
	t.Helper()
	_, listed, err := h.engine.GetPrice(context.Background(), collection, tokenID)
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if listed != want {
		t.Fatalf("expected listed=%v, got %v", want, listed)
	}
}

func (h harness) assertOwner(t *testing.T, want entities.AccountID) {
	t.Helper()
	owner, _, _ := h.ledger.OwnerOf(context.Background(), collection, tokenID)
	if owner != want {
		t.Fatalf("expected token owner %s, got %s", want, owner)
	}
}

func assertBalance(t *testing.T, ledger *memory.Ledger, account entities.AccountID, want int64) {
	t.Helper()
	if got := ledger.Balance(account); got.Cmp(big.NewInt(want)) != 0 {
		t.Fatalf("expected %s balance %d, got %s", account, want, got)
	}
}

func TestListThenGetPrice(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	price, listed, err := h.engine.GetPrice(context.Background(), collection, tokenID)
	if err != nil || !listed {
		t.Fatalf("expected listing, got listed=%v err=%v", listed, err)
	}
	if price.Int64() != 1_000 {
		t.Fatalf("expected price 1000, got %s", price)
	}
}

func TestListRequiresTokenOwner(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	h.ledger.Mint(collection, "2", alice)

	_, err := h.engine.List(context.Background(), application.ListCommand{
		Caller:     bob,
		Collection: collection,
		Token:      "2",
		Price:      big.NewInt(10),
	})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}

func TestListRejectsUnregisteredCollection(t *testing.T) {
	h := newHarness(t)
	h.ledger.Mint("unknown", tokenID, alice)

	_, err := h.engine.List(context.Background(), application.ListCommand{
		Caller:     alice,
		Collection: "unknown",
		Token:      tokenID,
		Price:      big.NewInt(10),
	})
	if !errors.Is(err, domainerrors.ErrNotRegisteredContract) {
		t.Fatalf("expected not registered contract, got %v", err)
	}
}

func TestListRejectsDuplicateListing(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	_, err := h.engine.List(context.Background(), application.ListCommand{
		Caller:     alice,
		Collection: collection,
		Token:      tokenID,
		Price:      big.NewInt(2_000),
	})
	if !errors.Is(err, domainerrors.ErrItemAlreadyListedForSale) {
		t.Fatalf("expected already listed, got %v", err)
	}
	price, _, _ := h.engine.GetPrice(context.Background(), collection, tokenID)
	if price.Int64() != 1_000 {
		t.Fatalf("expected original price to be kept, got %s", price)
	}
}

func TestListRejectsZeroPrice(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.List(context.Background(), application.ListCommand{
		Caller:     alice,
		Collection: collection,
		Token:      tokenID,
		Price:      big.NewInt(0),
	})
	if !errors.Is(err, domainerrors.ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestUnlistRemovesListing(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	err := h.engine.Unlist(context.Background(), application.UnlistCommand{
		Caller:     alice,
		Collection: collection,
		Token:      tokenID,
	})
	if err != nil {
		t.Fatalf("unlist: %v", err)
	}
	h.assertListed(t, false)

	err = h.engine.Unlist(context.Background(), application.UnlistCommand{
		Caller:     alice,
		Collection: collection,
		Token:      tokenID,
	})
	if !errors.Is(err, domainerrors.ErrItemNotListedForSale) {
		t.Fatalf("expected not listed on second unlist, got %v", err)
	}
}

func TestUnlistFollowsCurrentOwner(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	ctx := context.Background()

	// The token moved outside the marketplace; the stale seller loses control.
	if err := h.ledger.Transfer(ctx, collection, bob, tokenID, nil); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	err := h.engine.Unlist(ctx, application.UnlistCommand{Caller: alice, Collection: collection, Token: tokenID})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected not owner for stale seller, got %v", err)
	}
	if err := h.engine.Unlist(ctx, application.UnlistCommand{Caller: bob, Collection: collection, Token: tokenID}); err != nil {
		t.Fatalf("expected current owner to unlist, got %v", err)
	}
}

func TestBuySettlesThreeWaySplit(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000_000)

	result, err := h.buy(context.Background(), bob, 1_000_000)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.Seller != alice {
		t.Fatalf("expected seller alice, got %s", result.Seller)
	}
	h.assertOwner(t, bob)
	h.assertListed(t, false)
	assertBalance(t, h.ledger, alice, 940_000)
	assertBalance(t, h.ledger, treasury, 10_000)
	assertBalance(t, h.ledger, creator, 50_000)
	assertBalance(t, h.ledger, escrow, 0)
}

func TestBuyOverpaymentSplitsFullPayment(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	result, err := h.buy(context.Background(), bob, 2_000)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.Split.Payment.Int64() != 2_000 {
		t.Fatalf("expected split over the full payment, got %s", result.Split.Payment)
	}
	assertBalance(t, h.ledger, alice, 1_880)
	assertBalance(t, h.ledger, treasury, 20)
	assertBalance(t, h.ledger, creator, 100)
}

func TestBuyUnderpaymentKeepsListing(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	_, err := h.buy(context.Background(), bob, 999)
	if !errors.Is(err, domainerrors.ErrBadBuyValue) {
		t.Fatalf("expected bad buy value, got %v", err)
	}
	h.assertListed(t, true)
	h.assertOwner(t, alice)
	assertBalance(t, h.ledger, alice, 0)
}

func TestBuyUnlistedToken(t *testing.T) {
	h := newHarness(t)
	_, err := h.buy(context.Background(), bob, 1_000)
	if !errors.Is(err, domainerrors.ErrItemNotListedForSale) {
		t.Fatalf("expected not listed, got %v", err)
	}
}

func TestBuyRejectsCurrentOwner(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	_, err := h.buy(context.Background(), alice, 1_000)
	if !errors.Is(err, domainerrors.ErrAlreadyOwner) {
		t.Fatalf("expected already owner, got %v", err)
	}
	h.assertListed(t, true)
}

func TestBuyWithZeroFeeSkipsMarketplaceLeg(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	ctx := context.Background()
	if err := h.engine.SetMarketplaceFee(ctx, admin, 0); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	h.ledger.FailPaymentsTo(treasury, errors.New("treasury frozen"))

	if _, err := h.buy(ctx, bob, 1_000); err != nil {
		t.Fatalf("expected zero fee leg to be skipped, got %v", err)
	}
	assertBalance(t, h.ledger, alice, 950)
	assertBalance(t, h.ledger, treasury, 0)
}

func TestBuyReentryFromTokenTransferIsRejected(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	var reentryErr error
	attempted := false
	h.ledger.OnTransfer(func(ctx context.Context, _ entities.AccountID, _ entities.AccountID, _ entities.TokenID) error {
		if attempted {
			return nil
		}
		attempted = true
		_, reentryErr = h.engine.Buy(ctx, application.BuyCommand{
			Caller:     "mallory",
			Collection: collection,
			Token:      tokenID,
			Payment:    big.NewInt(1_000),
		})
		return reentryErr
	})

	_, err := h.buy(context.Background(), bob, 1_000)
	if !errors.Is(reentryErr, domainerrors.ErrReentrantCall) {
		t.Fatalf("expected nested buy to be rejected as reentrant, got %v", reentryErr)
	}
	if !errors.Is(err, domainerrors.ErrUnableToTransferToken) {
		t.Fatalf("expected outer buy to fail on token transfer, got %v", err)
	}
	h.assertListed(t, true)
	h.assertOwner(t, alice)
	assertBalance(t, h.ledger, escrow, 1_000)
	if h.engine.SettlementInProgress() {
		t.Fatalf("expected guard to be released")
	}
}

func TestBuyReentryOnFreshContextFailsFast(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	var buyErr, unlistErr error
	attempted := false
	h.ledger.OnTransfer(func(context.Context, entities.AccountID, entities.AccountID, entities.TokenID) error {
		if attempted {
			return nil
		}
		attempted = true
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, buyErr = h.engine.Buy(ctx, application.BuyCommand{
			Caller:     "mallory",
			Collection: collection,
			Token:      tokenID,
			Payment:    big.NewInt(1_000),
		})
		unlistErr = h.engine.Unlist(ctx, application.UnlistCommand{Caller: alice, Collection: collection, Token: tokenID})
		return nil
	})

	if _, err := h.buy(context.Background(), bob, 1_000); err != nil {
		t.Fatalf("outer buy: %v", err)
	}
	if !errors.Is(buyErr, domainerrors.ErrReentrantCall) {
		t.Fatalf("expected nested buy to fail as reentrant, got %v", buyErr)
	}
	if !errors.Is(unlistErr, domainerrors.ErrReentrantCall) {
		t.Fatalf("expected nested unlist to fail as reentrant, got %v", unlistErr)
	}
	h.assertOwner(t, bob)
	assertBalance(t, h.ledger, alice, 940)
}

func TestBuyCancelledDuringSettlementCompensates(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The client goes away while the token is being transferred, so the
	// seller payment is the first call to see the cancelled context.
	h.ledger.OnTransfer(func(context.Context, entities.AccountID, entities.AccountID, entities.TokenID) error {
		cancel()
		return nil
	})

	_, err := h.buy(ctx, bob, 1_000)
	if !errors.Is(err, domainerrors.ErrTransferToOwnerFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected seller leg to fail on cancellation, got %v", err)
	}
	h.assertOwner(t, alice)
	h.assertListed(t, true)
	assertBalance(t, h.ledger, escrow, 1_000)
	assertBalance(t, h.ledger, alice, 0)
	if h.engine.SettlementInProgress() {
		t.Fatalf("expected guard to be released")
	}
}

func TestBuyPaymentFailureCompensates(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000_000)
	h.ledger.FailPaymentsTo(creator, errors.New("receiver rejected value"))

	_, err := h.buy(context.Background(), bob, 1_000_000)
	if !errors.Is(err, domainerrors.ErrTransferToAuthorFailed) {
		t.Fatalf("expected royalty leg failure, got %v", err)
	}
	h.assertOwner(t, alice)
	h.assertListed(t, true)
	assertBalance(t, h.ledger, alice, 0)
	assertBalance(t, h.ledger, treasury, 0)
	assertBalance(t, h.ledger, escrow, 1_000_000)
}

func TestBuyMissingFeeRecipientFailsMarketplaceLeg(t *testing.T) {
	store := memory.NewStore(nil)
	ledger := memory.NewLedger(escrow)
	engine := application.NewEngine(application.EngineDependencies{
		Registry: store, Tokens: ledger, Payments: ledger.Payments(), Deployer: ledger, Clock: store, IDGen: store,
	})
	ctx := context.Background()
	if _, err := engine.Initialize(ctx, application.InitialConfig{Owner: admin, Fee: 100, MaxFee: 1000}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	h := harness{engine: engine, store: store, ledger: ledger}
	h.withListing(t, 1_000)

	_, err := h.buy(ctx, bob, 1_000)
	if !errors.Is(err, domainerrors.ErrTransferToMarketplaceFailed) {
		t.Fatalf("expected marketplace leg failure, got %v", err)
	}
	h.assertOwner(t, alice)
	assertBalance(t, ledger, alice, 0)
}

func TestBuyCommitFailureCompensates(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	commitErr := errors.New("commit lost")
	h.store.FailNextCommit(commitErr)

	_, err := h.buy(context.Background(), bob, 1_000)
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
	h.assertOwner(t, alice)
	h.assertListed(t, true)
	assertBalance(t, h.ledger, escrow, 1_000)
	assertBalance(t, h.ledger, alice, 0)
}

func TestBuyReportsFailedCompensation(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	h.ledger.FailPaymentsTo(creator, errors.New("royalty rejected"))
	reclaimErr := errors.New("reclaim refused")
	h.ledger.FailReclaims(reclaimErr)

	_, err := h.buy(context.Background(), bob, 1_000)
	if !errors.Is(err, domainerrors.ErrTransferToAuthorFailed) || !errors.Is(err, reclaimErr) {
		t.Fatalf("expected both leg failure and compensation failure, got %v", err)
	}
}

func TestBuyEmitsBoughtEvent(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	if _, err := h.buy(context.Background(), bob, 1_000); err != nil {
		t.Fatalf("buy: %v", err)
	}

	events := h.store.OutboxEvents()
	if len(events) != 3 {
		t.Fatalf("expected registered, listed and bought events, got %d", len(events))
	}
	wantTypes := []string{
		application.EventTypeCollectionRegistered,
		application.EventTypeTokenListed,
		application.EventTypeTokenBought,
	}
	for i, want := range wantTypes {
		if events[i].EventType != want {
			t.Fatalf("expected event %d to be %s, got %s", i, want, events[i].EventType)
		}
		if events[i].PartitionKey != string(collection) {
			t.Fatalf("expected partition key %s, got %s", collection, events[i].PartitionKey)
		}
	}

	var bought contractsv1.TokenBought
	if err := events[2].DecodeData(&bought); err != nil {
		t.Fatalf("decode bought event: %v", err)
	}
	if bought.Price != "1000" || bought.Buyer != string(bob) || bought.Seller != string(alice) {
		t.Fatalf("unexpected bought payload %+v", bought)
	}
}

func TestUnlistEmitsNullPrice(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	if err := h.engine.Unlist(context.Background(), application.UnlistCommand{Caller: alice, Collection: collection, Token: tokenID}); err != nil {
		t.Fatalf("unlist: %v", err)
	}

	events := h.store.OutboxEvents()
	last := events[len(events)-1]
	var data map[string]any
	if err := json.Unmarshal(last.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	price, ok := data["price"]
	if !ok || price != nil {
		t.Fatalf("expected explicit null price, got %v", data)
	}
}

func TestFailedOperationsEmitNothing(t *testing.T) {
	h := newHarness(t)
	h.withListing(t, 1_000)
	before := len(h.store.OutboxEvents())

	_, _ = h.buy(context.Background(), bob, 1)
	_, _ = h.engine.List(context.Background(), application.ListCommand{Caller: alice, Collection: collection, Token: tokenID, Price: big.NewInt(5)})

	if after := len(h.store.OutboxEvents()); after != before {
		t.Fatalf("expected no new events, got %d", after-before)
	}
}

func initialConfigFor(owner entities.AccountID) application.InitialConfig {
	return application.InitialConfig{Owner: owner, FeeRecipient: treasury, Fee: 100, MaxFee: 1000}
}
