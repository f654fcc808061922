package application

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

// FactoryBridge asks the deployer for a new collection contract.
type FactoryBridge struct {
	Deployer ports.CollectionDeployer
	Logger   *slog.Logger
}

// DeriveSalt hashes the caller and nonce into a deployment salt. Distinct
// nonces always produce distinct salts for the same caller.
func DeriveSalt(caller entities.AccountID, nonce uint64) [32]byte {
	input := make([]byte, 0, len(caller)+8)
	input = append(input, caller...)
	input = binary.BigEndian.AppendUint64(input, nonce)
	return blake2b.Sum256(input)
}

func (b FactoryBridge) Instantiate(ctx context.Context, req ports.InstantiateRequest) (entities.AccountID, error) {
	logger := ResolveLogger(b.Logger)
	if b.Deployer == nil {
		return "", fmt.Errorf("%w: deployer is not configured", domainerrors.ErrPSP34InstantiationFailed)
	}
	if req.Endowment == nil {
		req.Endowment = new(big.Int)
	}

	collection, err := b.Deployer.Instantiate(ctx, req)
	if err == nil && !validAccount(collection) {
		err = fmt.Errorf("deployer returned an empty collection address")
	}
	if err != nil {
		logger.Error("collection instantiation failed",
			"event", "marketplace_collection_instantiation_failed",
			"module", logModule,
			"layer", "application",
			"contract_type", req.ContractType,
			"template", req.Template.String(),
			"error", err.Error(),
		)
		return "", fmt.Errorf("%w: %w", domainerrors.ErrPSP34InstantiationFailed, err)
	}

	logger.Info("collection instantiated",
		"event", "marketplace_collection_instantiated",
		"module", logModule,
		"layer", "application",
		"collection", collection,
		"contract_type", req.ContractType,
	)
	return collection, nil
}
