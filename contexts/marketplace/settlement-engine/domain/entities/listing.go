package entities

import (
	"math/big"
	"strings"

	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

type ListingKey struct {
	Collection AccountID
	Token      TokenID
}

func (k ListingKey) Valid() bool {
	return strings.TrimSpace(string(k.Collection)) != "" && strings.TrimSpace(string(k.Token)) != ""
}

// Listing is an active fixed-price offer. Its existence is the only "is listed" signal.
type Listing struct {
	Collection AccountID
	Token      TokenID
	Seller     AccountID
	Price      *big.Int
}

func NewListing(key ListingKey, seller AccountID, price *big.Int) (Listing, error) {
	if !key.Valid() || strings.TrimSpace(string(seller)) == "" {
		return Listing{}, domainerrors.ErrInvalidRequest
	}
	if err := ValidateAmount(price); err != nil {
		return Listing{}, err
	}
	if price.Sign() == 0 {
		return Listing{}, domainerrors.ErrInvalidPrice
	}
	return Listing{
		Collection: key.Collection,
		Token:      key.Token,
		Seller:     seller,
		Price:      CloneAmount(price),
	}, nil
}

func (l Listing) Key() ListingKey {
	return ListingKey{Collection: l.Collection, Token: l.Token}
}

func (l Listing) Clone() Listing {
	l.Price = CloneAmount(l.Price)
	return l
}
