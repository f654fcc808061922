package httpadapter

import (
	"context"
	"log/slog"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	httptransport "nftmarket/contexts/marketplace/settlement-engine/transport/http"
)

const logModule = "marketplace/settlement-engine"

type Handler struct {
	Engine *application.Engine
	Logger *slog.Logger
}

// ListTokenHandler godoc
// @Summary List a token for sale
// @Description Creates a fixed-price listing. The caller must own the token and the collection must be registered.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param collection path string true "Collection address"
// @Param token path string true "Token id"
// @Param request body httptransport.ListTokenRequest true "Listing price"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{token} [put]
func (h Handler) ListTokenHandler(
	ctx context.Context,
	caller string,
	collection string,
	token string,
	req httptransport.ListTokenRequest,
) (httptransport.ListingResponse, error) {
	price, err := parseAmount(req.Price)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	listing, err := h.Engine.List(ctx, application.ListCommand{
		Caller:     entities.AccountID(caller),
		Collection: entities.AccountID(collection),
		Token:      entities.TokenID(token),
		Price:      price,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return mapListing(listing), nil
}

// UnlistTokenHandler godoc
// @Summary Remove a listing
// @Tags marketplace
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param collection path string true "Collection address"
// @Param token path string true "Token id"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{token} [delete]
func (h Handler) UnlistTokenHandler(ctx context.Context, caller string, collection string, token string) (httptransport.ListingResponse, error) {
	err := h.Engine.Unlist(ctx, application.UnlistCommand{
		Caller:     entities.AccountID(caller),
		Collection: entities.AccountID(collection),
		Token:      entities.TokenID(token),
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Collection: collection, TokenID: token, Listed: false}, nil
}

// GetPriceHandler godoc
// @Summary Get the listing price of a token
// @Tags marketplace
// @Produce json
// @Param collection path string true "Collection address"
// @Param token path string true "Token id"
// @Success 200 {object} httptransport.ListingResponse
// @Router /v1/marketplace/listings/{collection}/{token} [get]
func (h Handler) GetPriceHandler(ctx context.Context, collection string, token string) (httptransport.ListingResponse, error) {
	listing, found, err := h.Engine.GetListing(ctx, entities.AccountID(collection), entities.TokenID(token))
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	if !found {
		return httptransport.ListingResponse{Collection: collection, TokenID: token, Listed: false}, nil
	}
	return mapListing(listing), nil
}

// BuyTokenHandler godoc
// @Summary Buy a listed token
// @Description Settles the listing against the attached payment: token to the buyer, fee to the marketplace, royalty to the creator, remainder to the seller.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Buyer account"
// @Param collection path string true "Collection address"
// @Param token path string true "Token id"
// @Param request body httptransport.BuyTokenRequest true "Attached payment"
// @Success 200 {object} httptransport.BuyTokenResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 402 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{token}/buy [post]
func (h Handler) BuyTokenHandler(
	ctx context.Context,
	caller string,
	collection string,
	token string,
	req httptransport.BuyTokenRequest,
) (httptransport.BuyTokenResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	payment, err := parseAmount(req.Payment)
	if err != nil {
		return httptransport.BuyTokenResponse{}, err
	}

	result, err := h.Engine.Buy(ctx, application.BuyCommand{
		Caller:     entities.AccountID(caller),
		Collection: entities.AccountID(collection),
		Token:      entities.TokenID(token),
		Payment:    payment,
	})
	if err != nil {
		logger.Error("buy request failed",
			"event", "http_marketplace_buy_failed",
			"module", logModule,
			"layer", "transport",
			"collection", collection,
			"token_id", token,
			"error", err.Error(),
		)
		return httptransport.BuyTokenResponse{}, err
	}

	return httptransport.BuyTokenResponse{
		Collection:     collection,
		TokenID:        token,
		Buyer:          caller,
		Seller:         string(result.Seller),
		Price:          result.Split.Payment.String(),
		MarketplaceFee: result.Split.MarketplaceFee.String(),
		Royalty:        result.Split.Royalty.String(),
		SellerProceeds: result.Split.SellerProceeds.String(),
	}, nil
}

// RegisterCollectionHandler godoc
// @Summary Register a collection
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Marketplace owner or collection owner"
// @Param request body httptransport.RegisterCollectionRequest true "Collection registration"
// @Success 201 {object} httptransport.CollectionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/collections [post]
func (h Handler) RegisterCollectionHandler(
	ctx context.Context,
	caller string,
	req httptransport.RegisterCollectionRequest,
) (httptransport.CollectionResponse, error) {
	collection, err := h.Engine.Register(ctx, application.RegisterCommand{
		Caller:          entities.AccountID(caller),
		Collection:      entities.AccountID(strings.TrimSpace(req.Collection)),
		RoyaltyReceiver: entities.AccountID(strings.TrimSpace(req.RoyaltyReceiver)),
		Royalty:         entities.BasisPoints(req.RoyaltyBPS),
		MetadataURI:     req.MetadataURI,
	})
	if err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return mapCollection(collection), nil
}

// FactoryCollectionHandler godoc
// @Summary Deploy and register a new collection
// @Description Instantiates a collection from the configured template and registers it.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param request body httptransport.FactoryCollectionRequest true "Collection parameters"
// @Success 201 {object} httptransport.CollectionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 412 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/collections/factory [post]
func (h Handler) FactoryCollectionHandler(
	ctx context.Context,
	caller string,
	req httptransport.FactoryCollectionRequest,
) (httptransport.CollectionResponse, error) {
	pricePerMint := new(big.Int)
	if strings.TrimSpace(req.PricePerMint) != "" {
		parsed, err := parseAmount(req.PricePerMint)
		if err != nil {
			return httptransport.CollectionResponse{}, err
		}
		pricePerMint = parsed
	}

	collection, err := h.Engine.Factory(ctx, application.FactoryCommand{
		Caller:          entities.AccountID(caller),
		ContractType:    req.ContractType,
		MetadataURI:     req.MetadataURI,
		RoyaltyReceiver: entities.AccountID(strings.TrimSpace(req.RoyaltyReceiver)),
		Royalty:         entities.BasisPoints(req.RoyaltyBPS),
		Name:            req.Name,
		Symbol:          req.Symbol,
		BaseURI:         req.BaseURI,
		MaxSupply:       req.MaxSupply,
		PricePerMint:    pricePerMint,
	})
	if err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return mapCollection(collection), nil
}

// GetCollectionHandler godoc
// @Summary Get a registered collection
// @Tags marketplace
// @Produce json
// @Param collection path string true "Collection address"
// @Success 200 {object} httptransport.CollectionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/collections/{collection} [get]
func (h Handler) GetCollectionHandler(ctx context.Context, collection string) (httptransport.CollectionResponse, error) {
	registered, found, err := h.Engine.GetRegisteredCollection(ctx, entities.AccountID(collection))
	if err != nil {
		return httptransport.CollectionResponse{}, err
	}
	if !found {
		return httptransport.CollectionResponse{}, domainerrors.ErrNotRegisteredContract
	}
	return mapCollection(registered), nil
}

// SetContractMetadataHandler godoc
// @Summary Update collection metadata
// @Tags marketplace-admin
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Marketplace owner"
// @Param collection path string true "Collection address"
// @Param request body httptransport.SetContractMetadataRequest true "Metadata URI"
// @Success 200 {object} httptransport.CollectionResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/collections/{collection}/metadata [put]
func (h Handler) SetContractMetadataHandler(
	ctx context.Context,
	caller string,
	collection string,
	req httptransport.SetContractMetadataRequest,
) (httptransport.CollectionResponse, error) {
	if err := h.Engine.SetContractMetadata(ctx, entities.AccountID(caller), entities.AccountID(collection), req.MetadataURI); err != nil {
		return httptransport.CollectionResponse{}, err
	}
	return h.GetCollectionHandler(ctx, collection)
}

// GetConfigHandler godoc
// @Summary Get marketplace configuration
// @Tags marketplace-admin
// @Produce json
// @Success 200 {object} httptransport.ConfigResponse
// @Router /v1/marketplace/config [get]
func (h Handler) GetConfigHandler(ctx context.Context) (httptransport.ConfigResponse, error) {
	config, err := h.Engine.GetConfig(ctx)
	if err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return mapConfig(config), nil
}

// SetMarketplaceFeeHandler godoc
// @Summary Set the marketplace fee
// @Tags marketplace-admin
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Marketplace owner"
// @Param request body httptransport.SetMarketplaceFeeRequest true "Fee in basis points"
// @Success 200 {object} httptransport.ConfigResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/config/fee [put]
func (h Handler) SetMarketplaceFeeHandler(
	ctx context.Context,
	caller string,
	req httptransport.SetMarketplaceFeeRequest,
) (httptransport.ConfigResponse, error) {
	if err := h.Engine.SetMarketplaceFee(ctx, entities.AccountID(caller), entities.BasisPoints(req.FeeBPS)); err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return h.GetConfigHandler(ctx)
}

// SetFeeRecipientHandler godoc
// @Summary Set the marketplace fee recipient
// @Tags marketplace-admin
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Marketplace owner"
// @Param request body httptransport.SetFeeRecipientRequest true "Fee recipient"
// @Success 200 {object} httptransport.ConfigResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/config/fee-recipient [put]
func (h Handler) SetFeeRecipientHandler(
	ctx context.Context,
	caller string,
	req httptransport.SetFeeRecipientRequest,
) (httptransport.ConfigResponse, error) {
	recipient := entities.AccountID(strings.TrimSpace(req.FeeRecipient))
	if err := h.Engine.SetFeeRecipient(ctx, entities.AccountID(caller), recipient); err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return h.GetConfigHandler(ctx)
}

// GetTemplateHandler godoc
// @Summary Get the collection template for a contract type
// @Tags marketplace-admin
// @Produce json
// @Param contract_type path string true "psp34 or rmrk"
// @Success 200 {object} httptransport.TemplateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/templates/{contract_type} [get]
func (h Handler) GetTemplateHandler(ctx context.Context, contractType string) (httptransport.TemplateResponse, error) {
	normalized, err := entities.NormalizeContractType(contractType)
	if err != nil {
		return httptransport.TemplateResponse{}, err
	}
	handle, ok, err := h.Engine.NftContractHash(ctx, string(normalized))
	if err != nil {
		return httptransport.TemplateResponse{}, err
	}
	resp := httptransport.TemplateResponse{ContractType: string(normalized), Configured: ok}
	if ok {
		resp.CodeHash = handle.String()
	}
	return resp, nil
}

// SetTemplateHandler godoc
// @Summary Set the collection template for a contract type
// @Tags marketplace-admin
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Marketplace owner"
// @Param contract_type path string true "psp34 or rmrk"
// @Param request body httptransport.SetTemplateRequest true "Template code hash"
// @Success 200 {object} httptransport.TemplateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/templates/{contract_type} [put]
func (h Handler) SetTemplateHandler(
	ctx context.Context,
	caller string,
	contractType string,
	req httptransport.SetTemplateRequest,
) (httptransport.TemplateResponse, error) {
	handle, err := entities.ParseTemplateHandle(req.CodeHash)
	if err != nil {
		return httptransport.TemplateResponse{}, err
	}
	if err := h.Engine.SetNftContractHash(ctx, entities.AccountID(caller), contractType, handle); err != nil {
		return httptransport.TemplateResponse{}, err
	}
	return h.GetTemplateHandler(ctx, contractType)
}

// parseAmount accepts a non-negative base-10 integer.
func parseAmount(raw string) (*big.Int, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !value.IsInteger() {
		return nil, domainerrors.ErrInvalidAmount
	}
	amount := value.BigInt()
	if err := entities.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return amount, nil
}

func mapListing(listing entities.Listing) httptransport.ListingResponse {
	return httptransport.ListingResponse{
		Collection: string(listing.Collection),
		TokenID:    string(listing.Token),
		Seller:     string(listing.Seller),
		Price:      listing.Price.String(),
		Listed:     true,
	}
}

func mapCollection(collection entities.RegisteredCollection) httptransport.CollectionResponse {
	return httptransport.CollectionResponse{
		Collection:      string(collection.Collection),
		RoyaltyReceiver: string(collection.RoyaltyReceiver),
		RoyaltyBPS:      uint16(collection.Royalty),
		MetadataURI:     collection.MetadataURI,
	}
}

func mapConfig(config entities.MarketplaceConfig) httptransport.ConfigResponse {
	templates := make(map[string]string, len(config.Templates))
	for contractType, handle := range config.Templates {
		templates[string(contractType)] = handle.String()
	}
	return httptransport.ConfigResponse{
		Owner:        string(config.Owner),
		FeeBPS:       uint16(config.Fee),
		MaxFeeBPS:    uint16(config.MaxFee),
		FeeRecipient: string(config.FeeRecipient),
		Nonce:        config.Nonce,
		Templates:    templates,
	}
}
