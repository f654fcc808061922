package application_test

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"nftmarket/contexts/marketplace/settlement-engine/adapters/memory"
	"nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

func mustTemplate(t *testing.T, fill string) entities.TemplateHandle {
	t.Helper()
	handle, err := entities.ParseTemplateHandle(strings.Repeat(fill, 32))
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	return handle
}

func TestRegisterByCollectionOwnerOrMarketplaceOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.ledger.SetCollectionOwner("c-a", creator)
	h.ledger.SetCollectionOwner("c-b", creator)

	if _, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: creator, Collection: "c-a", RoyaltyReceiver: creator, Royalty: 100,
	}); err != nil {
		t.Fatalf("expected collection owner to register, got %v", err)
	}
	if _, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: admin, Collection: "c-b", RoyaltyReceiver: creator, Royalty: 100,
	}); err != nil {
		t.Fatalf("expected marketplace owner to register, got %v", err)
	}

	_, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: bob, Collection: "c-c", RoyaltyReceiver: bob, Royalty: 100,
	})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected stranger to be rejected, got %v", err)
	}
}

func TestRegisterTwiceKeepsOriginalTerms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.ledger.SetCollectionOwner(collection, creator)

	if _, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: creator, Collection: collection, RoyaltyReceiver: creator, Royalty: 250, MetadataURI: "ipfs://one",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: creator, Collection: collection, RoyaltyReceiver: bob, Royalty: 900, MetadataURI: "ipfs://two",
	})
	if !errors.Is(err, domainerrors.ErrContractAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}

	stored, found, err := h.engine.GetRegisteredCollection(ctx, collection)
	if err != nil || !found {
		t.Fatalf("expected stored collection, got found=%v err=%v", found, err)
	}
	if stored.Royalty != 250 || stored.RoyaltyReceiver != creator || stored.MetadataURI != "ipfs://one" {
		t.Fatalf("expected original terms, got %+v", stored)
	}
}

func TestRegisterRoyaltyBoundedByMaxFee(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.ledger.SetCollectionOwner(collection, creator)

	_, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: creator, Collection: collection, RoyaltyReceiver: creator, Royalty: 1001,
	})
	if !errors.Is(err, domainerrors.ErrFeeTooHigh) {
		t.Fatalf("expected fee too high, got %v", err)
	}
	if _, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: creator, Collection: collection, RoyaltyReceiver: creator, Royalty: 1000,
	}); err != nil {
		t.Fatalf("expected royalty equal to max fee to pass, got %v", err)
	}
}

func TestFactoryRequiresTemplate(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.Factory(context.Background(), application.FactoryCommand{
		Caller: creator, RoyaltyReceiver: creator, Royalty: 100, Name: "Apes", Symbol: "APE",
	})
	if !errors.Is(err, domainerrors.ErrNftContractHashNotSet) {
		t.Fatalf("expected template not set, got %v", err)
	}
}

func TestFactoryDeploysAndRegisters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	template := mustTemplate(t, "11")
	if err := h.engine.SetNftContractHash(ctx, admin, "", template); err != nil {
		t.Fatalf("set template: %v", err)
	}

	first, err := h.engine.Factory(ctx, application.FactoryCommand{
		Caller:          creator,
		MetadataURI:     "ipfs://apes",
		RoyaltyReceiver: creator,
		Royalty:         300,
		Name:            "Apes",
		Symbol:          "APE",
		MaxSupply:       100,
		PricePerMint:    big.NewInt(5),
	})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	second, err := h.engine.Factory(ctx, application.FactoryCommand{
		Caller: creator, RoyaltyReceiver: creator, Royalty: 300, Name: "Apes II", Symbol: "APE2",
	})
	if err != nil {
		t.Fatalf("second factory: %v", err)
	}
	if first.Collection == second.Collection {
		t.Fatalf("expected distinct collection addresses, got %s twice", first.Collection)
	}

	deployments := h.ledger.Deployments()
	if len(deployments) != 2 {
		t.Fatalf("expected two deployments, got %d", len(deployments))
	}
	if deployments[0].Salt != application.DeriveSalt(creator, 0) || deployments[1].Salt != application.DeriveSalt(creator, 1) {
		t.Fatalf("expected salts derived from nonces 0 and 1")
	}
	if deployments[0].Template != template || deployments[0].ContractType != entities.ContractTypePSP34 {
		t.Fatalf("unexpected deployment request %+v", deployments[0])
	}
	if deployments[0].Endowment == nil || deployments[0].Endowment.Sign() != 0 {
		t.Fatalf("expected zero endowment, got %v", deployments[0].Endowment)
	}

	config, err := h.engine.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if config.Nonce != 2 {
		t.Fatalf("expected nonce 2, got %d", config.Nonce)
	}
	if _, found, _ := h.engine.GetRegisteredCollection(ctx, first.Collection); !found {
		t.Fatalf("expected deployed collection to be registered")
	}
}

func TestFactoryInstantiationFailureKeepsNonce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.engine.SetNftContractHash(ctx, admin, "rmrk", mustTemplate(t, "22")); err != nil {
		t.Fatalf("set template: %v", err)
	}
	h.ledger.FailInstantiation(errors.New("out of gas"))

	_, err := h.engine.Factory(ctx, application.FactoryCommand{
		Caller: creator, ContractType: "rmrk", RoyaltyReceiver: creator, Royalty: 100,
	})
	if !errors.Is(err, domainerrors.ErrPSP34InstantiationFailed) {
		t.Fatalf("expected instantiation failure, got %v", err)
	}
	config, _ := h.engine.GetConfig(ctx)
	if config.Nonce != 0 {
		t.Fatalf("expected nonce to stay 0, got %d", config.Nonce)
	}
}

// commitLosingDeployer deploys through the ledger and then makes the
// registration transaction that follows fail at commit.
type commitLosingDeployer struct {
	*memory.Ledger
	store *memory.Store
	err   error
}

func (d commitLosingDeployer) Instantiate(ctx context.Context, req ports.InstantiateRequest) (entities.AccountID, error) {
	address, err := d.Ledger.Instantiate(ctx, req)
	if err == nil {
		d.store.FailNextCommit(d.err)
	}
	return address, err
}

func TestFactoryLostRegistrationDoesNotReuseSalt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.engine.SetNftContractHash(ctx, admin, "", mustTemplate(t, "44")); err != nil {
		t.Fatalf("set template: %v", err)
	}

	commitErr := errors.New("commit lost")
	failing := application.NewEngine(application.EngineDependencies{
		Registry: h.store,
		Tokens:   h.ledger,
		Payments: h.ledger.Payments(),
		Deployer: commitLosingDeployer{Ledger: h.ledger, store: h.store, err: commitErr},
		Clock:    h.store,
		IDGen:    h.store,
	})
	cmd := application.FactoryCommand{Caller: creator, RoyaltyReceiver: creator, Royalty: 100, Name: "Apes"}
	if _, err := failing.Factory(ctx, cmd); !errors.Is(err, commitErr) {
		t.Fatalf("expected lost registration, got %v", err)
	}

	second, err := h.engine.Factory(ctx, cmd)
	if err != nil {
		t.Fatalf("second factory: %v", err)
	}
	deployments := h.ledger.Deployments()
	if len(deployments) != 2 {
		t.Fatalf("expected two deployments, got %d", len(deployments))
	}
	if deployments[1].Salt != application.DeriveSalt(creator, 1) {
		t.Fatalf("expected second deployment to use nonce 1")
	}
	config, _ := h.engine.GetConfig(ctx)
	if config.Nonce != 2 {
		t.Fatalf("expected nonce 2, got %d", config.Nonce)
	}

	// The orphaned contract stays registrable by the marketplace owner.
	orphan := entities.AccountID("collection-" + hex.EncodeToString(deployments[0].Salt[:8]))
	if orphan == second.Collection {
		t.Fatalf("expected distinct addresses")
	}
	if _, found, _ := h.engine.GetRegisteredCollection(ctx, orphan); found {
		t.Fatalf("expected orphaned collection to be unregistered")
	}
	if _, err := h.engine.Register(ctx, application.RegisterCommand{
		Caller: admin, Collection: orphan, RoyaltyReceiver: creator, Royalty: 100,
	}); err != nil {
		t.Fatalf("register orphan: %v", err)
	}
}

func TestFactoryRoyaltyAboveMaxFeeDeploysNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.engine.SetNftContractHash(ctx, admin, "", mustTemplate(t, "55")); err != nil {
		t.Fatalf("set template: %v", err)
	}

	_, err := h.engine.Factory(ctx, application.FactoryCommand{
		Caller: creator, RoyaltyReceiver: creator, Royalty: 1001, Name: "Apes",
	})
	if !errors.Is(err, domainerrors.ErrFeeTooHigh) {
		t.Fatalf("expected fee too high, got %v", err)
	}
	if got := len(h.ledger.Deployments()); got != 0 {
		t.Fatalf("expected no deployments, got %d", got)
	}
	config, _ := h.engine.GetConfig(ctx)
	if config.Nonce != 0 {
		t.Fatalf("expected nonce to stay 0, got %d", config.Nonce)
	}
}

func TestFactoryTemplatesArePerContractType(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.engine.SetNftContractHash(ctx, admin, "psp34", mustTemplate(t, "33")); err != nil {
		t.Fatalf("set template: %v", err)
	}
	_, err := h.engine.Factory(ctx, application.FactoryCommand{
		Caller: creator, ContractType: "rmrk", RoyaltyReceiver: creator, Royalty: 100,
	})
	if !errors.Is(err, domainerrors.ErrNftContractHashNotSet) {
		t.Fatalf("expected rmrk template to be missing, got %v", err)
	}
	if _, ok, _ := h.engine.NftContractHash(ctx, "rmrk"); ok {
		t.Fatalf("expected no rmrk template")
	}
	if handle, ok, _ := h.engine.NftContractHash(ctx, ""); !ok || handle != mustTemplate(t, "33") {
		t.Fatalf("expected psp34 template, got %v %v", handle, ok)
	}
}

func TestDeriveSaltIsDistinctPerNonceAndCaller(t *testing.T) {
	seen := make(map[[32]byte]bool)
	for _, caller := range []entities.AccountID{alice, bob} {
		for nonce := uint64(0); nonce < 16; nonce++ {
			salt := application.DeriveSalt(caller, nonce)
			if seen[salt] {
				t.Fatalf("duplicate salt for %s nonce %d", caller, nonce)
			}
			seen[salt] = true
		}
	}
	if application.DeriveSalt(alice, 7) != application.DeriveSalt(alice, 7) {
		t.Fatalf("expected salt derivation to be deterministic")
	}
}
