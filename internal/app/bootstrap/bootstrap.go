package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	settlementengine "nftmarket/contexts/marketplace/settlement-engine"
	ledgeradapter "nftmarket/contexts/marketplace/settlement-engine/adapters/ledger"
	"nftmarket/contexts/marketplace/settlement-engine/adapters/memory"
	postgresadapter "nftmarket/contexts/marketplace/settlement-engine/adapters/postgres"
	"nftmarket/contexts/marketplace/settlement-engine/application"
	workerapp "nftmarket/contexts/marketplace/settlement-engine/application/workers"
	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
	"nftmarket/internal/platform/config"
	"nftmarket/internal/platform/db"
	"nftmarket/internal/platform/httpserver"
	"nftmarket/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// MarketplaceApp is the wired settlement engine without a server, used by
// the API process and the operator CLI.
type MarketplaceApp struct {
	Module   settlementengine.Module
	Config   config.Config
	postgres *db.Postgres
	logger   *slog.Logger
}

type APIApp struct {
	server      *httpserver.Server
	marketplace *MarketplaceApp
	logger      *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

// BuildMarketplace wires the engine. POSTGRES_DSN selects the Postgres
// registry and LEDGER_URL the HTTP ledger; either falls back to the
// in-memory adapter when unset.
func BuildMarketplace(ctx context.Context, process string) (*MarketplaceApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", process)

	deps := settlementengine.Dependencies{
		Initial: application.InitialConfig{
			Owner:        entities.AccountID(cfg.Marketplace.Owner),
			FeeRecipient: entities.AccountID(cfg.Marketplace.FeeRecipient),
			Fee:          entities.BasisPoints(cfg.Marketplace.FeeBPS),
			MaxFee:       entities.BasisPoints(cfg.Marketplace.MaxFeeBPS),
		},
		Logger: logger,
	}

	var (
		pg          *db.Postgres
		memoryStore *memory.Store
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(ctx, db.Options{DSN: cfg.PostgresDSN, Logger: logger})
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		deps.Registry = repo
		deps.Outbox = repo
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGen = postgresadapter.UUIDGenerator{}
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory registry",
			"event", "bootstrap_memory_registry",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		memoryStore = memory.NewStore(logger)
		deps.Registry = memoryStore
		deps.Outbox = memoryStore
		deps.Clock = memoryStore
		deps.IDGen = memoryStore
	}

	var memoryLedger *memory.Ledger
	if cfg.LedgerURL != "" {
		client, err := ledgeradapter.NewClient(ledgeradapter.Config{
			BaseURL:       cfg.LedgerURL,
			OwnerCacheTTL: cfg.OwnerCacheTTL,
			Logger:        logger,
		})
		if err != nil {
			closePostgres(pg)
			return nil, err
		}
		deps.Tokens = client
		deps.Payments = client.Payments()
		deps.Deployer = client
	} else {
		logger.Warn("LEDGER_URL not set, using in-memory ledger with a pre-funded escrow",
			"event", "bootstrap_memory_ledger",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		memoryLedger = memory.NewLedger(settlementengine.EscrowAccount)
		// Attached payments are not observable in process, so local buys draw
		// on an escrow seeded with the full balance range.
		memoryLedger.Fund(settlementengine.EscrowAccount, entities.MaxBalance)
		deps.Tokens = memoryLedger
		deps.Payments = memoryLedger.Payments()
		deps.Deployer = memoryLedger
	}

	module, err := settlementengine.NewModule(ctx, deps)
	if err != nil {
		closePostgres(pg)
		return nil, err
	}
	module.Store = memoryStore
	module.Ledger = memoryLedger

	return &MarketplaceApp{
		Module:   module,
		Config:   cfg,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *MarketplaceApp) Close() error {
	return closePostgres(a.postgres)
}

func BuildAPI() (*APIApp, error) {
	marketplace, err := BuildMarketplace(context.Background(), "api")
	if err != nil {
		return nil, err
	}
	server := httpserver.New(marketplace.Module, marketplace.logger, normalizeAddr(marketplace.Config.HTTPPort))
	return &APIApp{
		server:      server,
		marketplace: marketplace,
		logger:      marketplace.logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(context.Background(), db.Options{DSN: cfg.PostgresDSN, Logger: logger})
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres:     pg,
		outboxRelay:  newOutboxRelay(repo, kafka, cfg.OutboxTopic, logger),
		pollInterval: cfg.OutboxInterval,
		logger:       logger,
	}, nil
}

func newOutboxRelay(outbox ports.OutboxRepository, publisher ports.EventPublisher, topic string, logger *slog.Logger) workerapp.OutboxRelay {
	return workerapp.OutboxRelay{
		Outbox:    outbox,
		Publisher: publisher,
		Clock:     postgresadapter.SystemClock{},
		Topic:     topic,
		BatchSize: 100,
		Logger:    logger,
	}
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return a.marketplace.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	err := w.outboxRelay.Run(ctx, w.pollInterval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *WorkerApp) Close() error {
	return closePostgres(w.postgres)
}

func closePostgres(pg *db.Postgres) error {
	if pg == nil {
		return nil
	}
	return pg.Close()
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
