package memory

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

var (
	ErrInsufficientBalance = errors.New("insufficient ledger balance")
	ErrUnknownToken        = errors.New("token is not minted")
	ErrCollectionTaken     = errors.New("collection address already deployed")
)

// TransferHook runs before a token changes hands. Returning an error aborts
// the transfer. Hooks receive the caller's context unchanged, and a context
// cancelled by the hook does not stop the transfer it is running in.
type TransferHook func(ctx context.Context, collection entities.AccountID, to entities.AccountID, token entities.TokenID) error

// Ledger is an in-process token registry, value ledger and collection
// deployer. Payments are debited from the marketplace account.
type Ledger struct {
	mu sync.Mutex

	marketplace      entities.AccountID
	owners           map[entities.AccountID]map[entities.TokenID]entities.AccountID
	collectionOwners map[entities.AccountID]entities.AccountID
	balances         map[entities.AccountID]*big.Int
	deployments      []ports.InstantiateRequest

	onTransfer      TransferHook
	tokenFailure    error
	paymentFailures map[entities.AccountID]error
	reclaimFailure  error
	deployFailure   error
}

func NewLedger(marketplace entities.AccountID) *Ledger {
	return &Ledger{
		marketplace:      marketplace,
		owners:           make(map[entities.AccountID]map[entities.TokenID]entities.AccountID),
		collectionOwners: make(map[entities.AccountID]entities.AccountID),
		balances:         make(map[entities.AccountID]*big.Int),
		paymentFailures:  make(map[entities.AccountID]error),
	}
}

func (l *Ledger) Mint(collection entities.AccountID, token entities.TokenID, owner entities.AccountID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tokens, ok := l.owners[collection]
	if !ok {
		tokens = make(map[entities.TokenID]entities.AccountID)
		l.owners[collection] = tokens
	}
	tokens[token] = owner
}

func (l *Ledger) SetCollectionOwner(collection entities.AccountID, owner entities.AccountID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.collectionOwners[collection] = owner
}

// Fund credits an account, typically the marketplace with an attached payment.
func (l *Ledger) Fund(account entities.AccountID, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(account, amount)
}

func (l *Ledger) Balance(account entities.AccountID) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if balance, ok := l.balances[account]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

func (l *Ledger) OnTransfer(hook TransferHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTransfer = hook
}

func (l *Ledger) FailTokenTransfers(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokenFailure = err
}

func (l *Ledger) FailPaymentsTo(account entities.AccountID, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.paymentFailures, account)
		return
	}
	l.paymentFailures[account] = err
}

func (l *Ledger) FailReclaims(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reclaimFailure = err
}

func (l *Ledger) FailInstantiation(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deployFailure = err
}

func (l *Ledger) Deployments() []ports.InstantiateRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.InstantiateRequest(nil), l.deployments...)
}

func (l *Ledger) OwnerOf(_ context.Context, collection entities.AccountID, token entities.TokenID) (entities.AccountID, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.owners[collection][token]
	return owner, ok, nil
}

func (l *Ledger) CollectionOwner(_ context.Context, collection entities.AccountID) (entities.AccountID, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.collectionOwners[collection]
	return owner, ok, nil
}

func (l *Ledger) Transfer(
	ctx context.Context,
	collection entities.AccountID,
	to entities.AccountID,
	token entities.TokenID,
	_ []byte,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	hook := l.onTransfer
	failure := l.tokenFailure
	l.mu.Unlock()

	if failure != nil {
		return failure
	}
	// The hook may call back into the marketplace, so it runs unlocked.
	if hook != nil {
		if err := hook(ctx, collection, to, token); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	tokens, ok := l.owners[collection]
	if !ok {
		return ErrUnknownToken
	}
	if _, minted := tokens[token]; !minted {
		return ErrUnknownToken
	}
	tokens[token] = to
	return nil
}

// Value transfer

func (l *Ledger) TransferValue(ctx context.Context, to entities.AccountID, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.paymentFailures[to]; err != nil {
		return err
	}
	if err := l.debit(l.marketplace, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	return nil
}

func (l *Ledger) Reclaim(ctx context.Context, from entities.AccountID, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reclaimFailure != nil {
		return l.reclaimFailure
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(l.marketplace, amount)
	return nil
}

// Payments adapts the ledger to ports.ValueTransfer.
func (l *Ledger) Payments() ports.ValueTransfer {
	return valueTransfer{ledger: l}
}

func (l *Ledger) Instantiate(_ context.Context, req ports.InstantiateRequest) (entities.AccountID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.deployFailure != nil {
		return "", l.deployFailure
	}
	address := entities.AccountID("collection-" + hex.EncodeToString(req.Salt[:8]))
	if _, exists := l.collectionOwners[address]; exists {
		return "", ErrCollectionTaken
	}
	l.collectionOwners[address] = l.marketplace
	l.owners[address] = make(map[entities.TokenID]entities.AccountID)
	l.deployments = append(l.deployments, req)
	return address, nil
}

func (l *Ledger) credit(account entities.AccountID, amount *big.Int) {
	balance, ok := l.balances[account]
	if !ok {
		balance = new(big.Int)
		l.balances[account] = balance
	}
	balance.Add(balance, amount)
}

func (l *Ledger) debit(account entities.AccountID, amount *big.Int) error {
	balance, ok := l.balances[account]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	balance.Sub(balance, amount)
	return nil
}

type valueTransfer struct {
	ledger *Ledger
}

func (v valueTransfer) Transfer(ctx context.Context, to entities.AccountID, amount *big.Int) error {
	return v.ledger.TransferValue(ctx, to, amount)
}

func (v valueTransfer) Reclaim(ctx context.Context, from entities.AccountID, amount *big.Int) error {
	return v.ledger.Reclaim(ctx, from, amount)
}
