package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

func TestLedgerValueTransferAndReclaim(t *testing.T) {
	ledger := NewLedger("escrow")
	ctx := context.Background()
	ledger.Fund("escrow", big.NewInt(100))
	payments := ledger.Payments()

	if err := payments.Transfer(ctx, "alice", big.NewInt(60)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := payments.Transfer(ctx, "alice", big.NewInt(60)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := payments.Reclaim(ctx, "alice", big.NewInt(60)); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if ledger.Balance("escrow").Int64() != 100 || ledger.Balance("alice").Sign() != 0 {
		t.Fatalf("expected balances restored, got escrow=%s alice=%s", ledger.Balance("escrow"), ledger.Balance("alice"))
	}
}

func TestLedgerTransferRequiresMintedToken(t *testing.T) {
	ledger := NewLedger("escrow")
	if err := ledger.Transfer(context.Background(), "c1", "bob", "1", nil); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token, got %v", err)
	}
	ledger.Mint("c1", "1", "alice")
	if err := ledger.Transfer(context.Background(), "c1", "bob", "1", nil); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	owner, ok, _ := ledger.OwnerOf(context.Background(), "c1", "1")
	if !ok || owner != "bob" {
		t.Fatalf("expected bob to own the token, got %s", owner)
	}
}

func TestLedgerRejectsCancelledContext(t *testing.T) {
	ledger := NewLedger("escrow")
	ledger.Fund("escrow", big.NewInt(100))
	ledger.Mint("c1", "1", "alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ledger.Transfer(ctx, "c1", "bob", "1", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected token transfer to observe cancellation, got %v", err)
	}
	if err := ledger.Payments().Transfer(ctx, "alice", big.NewInt(10)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected value transfer to observe cancellation, got %v", err)
	}
	if err := ledger.Payments().Reclaim(ctx, "escrow", big.NewInt(10)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected reclaim to observe cancellation, got %v", err)
	}

	owner, _, _ := ledger.OwnerOf(context.Background(), "c1", "1")
	if owner != "alice" || ledger.Balance("escrow").Int64() != 100 {
		t.Fatalf("expected no effect, got owner=%s escrow=%s", owner, ledger.Balance("escrow"))
	}
}
