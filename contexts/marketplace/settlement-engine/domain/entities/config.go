package entities

import (
	"strings"

	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

const (
	DefaultMarketplaceFee BasisPoints = 100
	DefaultMaxFee         BasisPoints = 1000

	// MaxFeeCeiling keeps fee + royalty within the sale price: both are capped
	// by max_fee, so 2*max_fee must not exceed the denominator.
	MaxFeeCeiling BasisPoints = BasisPointsDenominator / 2
)

// MarketplaceConfig is the singleton marketplace state.
type MarketplaceConfig struct {
	Owner        AccountID
	Fee          BasisPoints
	MaxFee       BasisPoints
	FeeRecipient AccountID
	Templates    map[ContractType]TemplateHandle
	Nonce        uint64
}

func NewMarketplaceConfig(owner AccountID, feeRecipient AccountID, fee BasisPoints, maxFee BasisPoints) (MarketplaceConfig, error) {
	if strings.TrimSpace(string(owner)) == "" {
		return MarketplaceConfig{}, domainerrors.ErrInvalidConfig
	}
	if maxFee > MaxFeeCeiling {
		return MarketplaceConfig{}, domainerrors.ErrInvalidConfig
	}
	if fee > maxFee {
		return MarketplaceConfig{}, domainerrors.ErrFeeTooHigh
	}
	return MarketplaceConfig{
		Owner:        owner,
		Fee:          fee,
		MaxFee:       maxFee,
		FeeRecipient: feeRecipient,
		Templates:    make(map[ContractType]TemplateHandle),
	}, nil
}

func (c MarketplaceConfig) HasFeeRecipient() bool {
	return strings.TrimSpace(string(c.FeeRecipient)) != ""
}

func (c MarketplaceConfig) Template(contractType ContractType) (TemplateHandle, bool) {
	handle, ok := c.Templates[contractType]
	return handle, ok
}

func (c MarketplaceConfig) Clone() MarketplaceConfig {
	templates := make(map[ContractType]TemplateHandle, len(c.Templates))
	for key, value := range c.Templates {
		templates[key] = value
	}
	c.Templates = templates
	return c
}
