// Package settlementengine is the fixed-price marketplace settlement core:
// listings, collection registration, the atomic buy with its fee and royalty
// split, and marketplace administration.
//
// The engine depends only on ports. Token ownership, payments and collection
// deployment are external ledgers reached through adapters.
package settlementengine
