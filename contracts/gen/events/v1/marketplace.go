package v1

const (
	EventTypeTokenListed          = "marketplace.token_listed"
	EventTypeTokenBought          = "marketplace.token_bought"
	EventTypeCollectionRegistered = "marketplace.collection_registered"

	// PartitionKeyPathCollection keys every marketplace event by collection,
	// so events for one collection are consumed in order.
	PartitionKeyPathCollection = "collection"
)

// TokenListed is emitted on list and unlist. A nil Price means the token was
// withdrawn from sale.
type TokenListed struct {
	Collection string  `json:"collection"`
	TokenID    string  `json:"token_id"`
	Price      *string `json:"price"`
}

type TokenBought struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	Price      string `json:"price"`
	Buyer      string `json:"buyer"`
	Seller     string `json:"seller"`
}

type CollectionRegistered struct {
	Collection string `json:"collection"`
}
