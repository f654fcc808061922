package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

type EngineDependencies struct {
	Registry ports.Registry
	Tokens   ports.TokenRegistry
	Payments ports.ValueTransfer
	Deployer ports.CollectionDeployer
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// Engine is the settlement engine. Every mutating operation runs under the
// reentrancy guard. Most of them are a single registry transaction.
type Engine struct {
	registry ports.Registry
	tokens   ports.TokenRegistry
	payments ports.ValueTransfer
	factory  FactoryBridge
	clock    ports.Clock
	idGen    ports.IDGenerator
	logger   *slog.Logger
	guard    *reentrancyGuard
}

func NewEngine(deps EngineDependencies) *Engine {
	logger := ResolveLogger(deps.Logger)
	return &Engine{
		registry: deps.Registry,
		tokens:   deps.Tokens,
		payments: deps.Payments,
		factory:  FactoryBridge{Deployer: deps.Deployer, Logger: logger},
		clock:    deps.Clock,
		idGen:    deps.IDGen,
		logger:   logger,
		guard:    newReentrancyGuard(),
	}
}

type InitialConfig struct {
	Owner        entities.AccountID
	FeeRecipient entities.AccountID
	Fee          entities.BasisPoints
	MaxFee       entities.BasisPoints
}

// Initialize stores the marketplace config on first start. An existing config
// is returned untouched, so restarts never reset fees or the nonce.
func (e *Engine) Initialize(ctx context.Context, initial InitialConfig) (entities.MarketplaceConfig, error) {
	candidate, err := entities.NewMarketplaceConfig(
		entities.AccountID(strings.TrimSpace(string(initial.Owner))),
		entities.AccountID(strings.TrimSpace(string(initial.FeeRecipient))),
		initial.Fee,
		initial.MaxFee,
	)
	if err != nil {
		return entities.MarketplaceConfig{}, err
	}

	var stored entities.MarketplaceConfig
	err = e.run(ctx, "initialize", func(ctx context.Context, store ports.RegistryStore) error {
		existing, found, err := store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if found {
			stored = existing
			return nil
		}
		if err := store.PutConfig(ctx, candidate); err != nil {
			return err
		}
		stored = candidate
		return nil
	})
	if err != nil {
		return entities.MarketplaceConfig{}, err
	}

	e.logger.Info("marketplace config initialized",
		"event", "marketplace_config_initialized",
		"module", logModule,
		"layer", "application",
		"owner", stored.Owner,
		"fee_bps", stored.Fee,
		"max_fee_bps", stored.MaxFee,
	)
	return stored, nil
}

// SettlementInProgress reports whether a guarded operation is running.
func (e *Engine) SettlementInProgress() bool {
	return e.guard.active()
}

func (e *Engine) loadConfig(ctx context.Context, store ports.RegistryStore) (entities.MarketplaceConfig, error) {
	config, found, err := store.GetConfig(ctx)
	if err != nil {
		return entities.MarketplaceConfig{}, err
	}
	if !found {
		return entities.MarketplaceConfig{}, domainerrors.ErrConfigNotInitialized
	}
	return config, nil
}

func (e *Engine) now() time.Time {
	if e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock.Now().UTC()
}

// run executes fn as one guarded, transactional operation.
func (e *Engine) run(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context, store ports.RegistryStore) error,
) error {
	return e.guarded(operation, func() error {
		return e.registry.WithinTransaction(ctx, fn)
	})
}

// guarded holds the reentrancy guard for the whole of fn, which may span
// several registry transactions and external calls.
func (e *Engine) guarded(operation string, fn func() error) error {
	release, err := e.guard.enter()
	if err != nil {
		e.logger.Warn("marketplace call rejected",
			"event", "marketplace_call_rejected",
			"module", logModule,
			"layer", "application",
			"operation", operation,
			"error", err.Error(),
		)
		return err
	}
	defer release()

	return fn()
}

func validAccount(id entities.AccountID) bool {
	return strings.TrimSpace(string(id)) != ""
}
