package entities

import (
	"math/big"

	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

type AccountID string

type TokenID string

// BasisPoints is a fraction in units of 1/10000.
type BasisPoints uint16

const BasisPointsDenominator = 10000

// MaxBalance is the largest amount the ledger can hold (2^128 - 1).
var MaxBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ValidateAmount rejects nil, negative, and out-of-range amounts.
func ValidateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.Cmp(MaxBalance) > 0 {
		return domainerrors.ErrInvalidAmount
	}
	return nil
}

// CloneAmount returns an independent copy so stored amounts never alias caller values.
func CloneAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return nil
	}
	return new(big.Int).Set(amount)
}
