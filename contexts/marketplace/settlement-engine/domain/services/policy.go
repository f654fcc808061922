package services

import (
	"math/big"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

// CheckTokenOwner evaluates an owner lookup against the caller.
// Registration of the collection is checked by the caller before the lookup.
func CheckTokenOwner(owner entities.AccountID, found bool, caller entities.AccountID) error {
	if !found {
		return domainerrors.ErrTokenDoesNotExist
	}
	if owner != caller {
		return domainerrors.ErrNotOwner
	}
	return nil
}

func CheckPrice(offered *big.Int, required *big.Int) error {
	if offered == nil || required == nil || offered.Cmp(required) < 0 {
		return domainerrors.ErrBadBuyValue
	}
	return nil
}

func CheckFee(candidate entities.BasisPoints, maxFee entities.BasisPoints) error {
	if candidate > maxFee {
		return domainerrors.ErrFeeTooHigh
	}
	return nil
}

// CheckMarketplaceOwner gates administration to the configured owner.
func CheckMarketplaceOwner(config entities.MarketplaceConfig, caller entities.AccountID) error {
	if caller == "" || caller != config.Owner {
		return domainerrors.ErrCallerIsNotOwner
	}
	return nil
}
