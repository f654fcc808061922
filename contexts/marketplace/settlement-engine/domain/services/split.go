package services

import (
	"math/big"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

var bpsBase = big.NewInt(entities.BasisPointsDenominator)

// Split is the three-way division of a buy payment.
type Split struct {
	Payment        *big.Int
	MarketplaceFee *big.Int
	Royalty        *big.Int
	SellerProceeds *big.Int
}

// ComputeSplit floors each cut independently and gives the remainder to the seller:
//
//	marketplace_fee = payment * fee_bps / 10000
//	royalty         = payment * royalty_bps / 10000
//	seller_proceeds = payment - marketplace_fee - royalty
func ComputeSplit(payment *big.Int, fee entities.BasisPoints, royalty entities.BasisPoints) (Split, error) {
	if err := entities.ValidateAmount(payment); err != nil {
		return Split{}, err
	}

	marketplaceFee := bpsShare(payment, fee)
	royaltyAmount := bpsShare(payment, royalty)

	proceeds := new(big.Int).Sub(payment, marketplaceFee)
	proceeds.Sub(proceeds, royaltyAmount)
	if proceeds.Sign() < 0 {
		return Split{}, domainerrors.ErrArithmeticOverflow
	}

	return Split{
		Payment:        entities.CloneAmount(payment),
		MarketplaceFee: marketplaceFee,
		Royalty:        royaltyAmount,
		SellerProceeds: proceeds,
	}, nil
}

func bpsShare(amount *big.Int, bps entities.BasisPoints) *big.Int {
	share := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return share.Quo(share, bpsBase)
}
