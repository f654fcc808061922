package httptransport

// Amounts travel as base-10 integer strings in the smallest ledger unit.

type ListTokenRequest struct {
	Price string `json:"price"`
}

type ListingResponse struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	Seller     string `json:"seller,omitempty"`
	Price      string `json:"price,omitempty"`
	Listed     bool   `json:"listed"`
}

type BuyTokenRequest struct {
	Payment string `json:"payment"`
}

type BuyTokenResponse struct {
	Collection     string `json:"collection"`
	TokenID        string `json:"token_id"`
	Buyer          string `json:"buyer"`
	Seller         string `json:"seller"`
	Price          string `json:"price"`
	MarketplaceFee string `json:"marketplace_fee"`
	Royalty        string `json:"royalty"`
	SellerProceeds string `json:"seller_proceeds"`
}

type RegisterCollectionRequest struct {
	Collection      string `json:"collection"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	RoyaltyBPS      uint16 `json:"royalty_bps"`
	MetadataURI     string `json:"metadata_uri"`
}

type FactoryCollectionRequest struct {
	ContractType    string `json:"contract_type,omitempty"`
	MetadataURI     string `json:"metadata_uri"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	RoyaltyBPS      uint16 `json:"royalty_bps"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	BaseURI         string `json:"base_uri"`
	MaxSupply       uint64 `json:"max_supply"`
	PricePerMint    string `json:"price_per_mint,omitempty"`
}

type CollectionResponse struct {
	Collection      string `json:"collection"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	RoyaltyBPS      uint16 `json:"royalty_bps"`
	MetadataURI     string `json:"metadata_uri"`
}

type SetContractMetadataRequest struct {
	MetadataURI string `json:"metadata_uri"`
}

type ConfigResponse struct {
	Owner        string            `json:"owner"`
	FeeBPS       uint16            `json:"fee_bps"`
	MaxFeeBPS    uint16            `json:"max_fee_bps"`
	FeeRecipient string            `json:"fee_recipient"`
	Nonce        uint64            `json:"nonce"`
	Templates    map[string]string `json:"templates"`
}

type SetMarketplaceFeeRequest struct {
	FeeBPS uint16 `json:"fee_bps"`
}

type SetFeeRecipientRequest struct {
	FeeRecipient string `json:"fee_recipient"`
}

type SetTemplateRequest struct {
	CodeHash string `json:"code_hash"`
}

type TemplateResponse struct {
	ContractType string `json:"contract_type"`
	CodeHash     string `json:"code_hash,omitempty"`
	Configured   bool   `json:"configured"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
