package settlementengine

import (
	"context"
	"log/slog"

	httpadapter "nftmarket/contexts/marketplace/settlement-engine/adapters/http"
	"nftmarket/contexts/marketplace/settlement-engine/adapters/memory"
	"nftmarket/contexts/marketplace/settlement-engine/application"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

// EscrowAccount holds attached payments on the in-memory ledger until a buy
// pays them out.
const EscrowAccount entities.AccountID = "marketplace-escrow"

// Module is the composition surface of the settlement engine.
// Store and Ledger are set only by NewInMemoryModule.
type Module struct {
	Engine  *application.Engine
	Handler httpadapter.Handler
	Outbox  ports.OutboxRepository
	Store   *memory.Store
	Ledger  *memory.Ledger
}

type Dependencies struct {
	Registry ports.Registry
	Outbox   ports.OutboxRepository
	Tokens   ports.TokenRegistry
	Payments ports.ValueTransfer
	Deployer ports.CollectionDeployer
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Initial  application.InitialConfig
	Logger   *slog.Logger
}

// NewModule wires the engine against explicit ports and makes sure the
// marketplace config exists.
func NewModule(ctx context.Context, deps Dependencies) (Module, error) {
	engine := application.NewEngine(application.EngineDependencies{
		Registry: deps.Registry,
		Tokens:   deps.Tokens,
		Payments: deps.Payments,
		Deployer: deps.Deployer,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	})
	if _, err := engine.Initialize(ctx, deps.Initial); err != nil {
		return Module{}, err
	}
	return Module{
		Engine: engine,
		Handler: httpadapter.Handler{
			Engine: engine,
			Logger: deps.Logger,
		},
		Outbox: deps.Outbox,
	}, nil
}

func NewInMemoryModule(ctx context.Context, initial application.InitialConfig, logger *slog.Logger) (Module, error) {
	store := memory.NewStore(logger)
	ledger := memory.NewLedger(EscrowAccount)
	module, err := NewModule(ctx, Dependencies{
		Registry: store,
		Outbox:   store,
		Tokens:   ledger,
		Payments: ledger.Payments(),
		Deployer: ledger,
		Clock:    store,
		IDGen:    store,
		Initial:  initial,
		Logger:   logger,
	})
	if err != nil {
		return Module{}, err
	}
	module.Store = store
	module.Ledger = ledger
	return module, nil
}
