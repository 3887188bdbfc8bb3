package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accesscontrol "gavel/contexts/identity-access/access-control"
	accesspostgres "gavel/contexts/identity-access/access-control/adapters/postgres"
	accessentities "gavel/contexts/identity-access/access-control/domain/entities"
	systemguard "gavel/contexts/operations/system-guard"
	guardpostgres "gavel/contexts/operations/system-guard/adapters/postgres"
	guardroles "gavel/contexts/operations/system-guard/adapters/roles"
	guardworkers "gavel/contexts/operations/system-guard/application/workers"
	auctionengine "gavel/contexts/trading/auction-engine"
	enginememory "gavel/contexts/trading/auction-engine/adapters/memory"
	enginepostgres "gavel/contexts/trading/auction-engine/adapters/postgres"
	engineworkers "gavel/contexts/trading/auction-engine/application/workers"
	"gavel/internal/platform/config"
	"gavel/internal/platform/db"
	"gavel/internal/platform/httpserver"
	"gavel/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	engineRelay  engineworkers.OutboxRelay
	guardRelay   guardworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accessRepo := accesspostgres.NewRepository(pg.DB, logger)
	access := accesscontrol.NewModule(accesscontrol.Dependencies{
		Repository: accessRepo,
		Clock:      accesspostgres.SystemClock{},
		Logger:     logger,
	})
	if seed := strings.TrimSpace(cfg.SeedAdminID); seed != "" {
		err := access.Service.Seed(context.Background(), map[string][]accessentities.Role{
			seed: {accessentities.RoleAdmin},
		})
		if err != nil {
			return nil, err
		}
	}

	checker := guardroles.AccessControlChecker{Service: access.Service}

	guardRepo := guardpostgres.NewRepository(pg.DB, logger)
	guard := systemguard.NewModule(systemguard.Dependencies{
		Store:           guardRepo,
		Roles:           checker,
		Outbox:          guardRepo,
		Clock:           guardpostgres.SystemClock{},
		IDGenerator:     guardpostgres.UUIDGenerator{},
		RateLimitPeriod: cfg.RateLimitPeriod,
		MaxActions:      cfg.MaxActions,
		BidCooldown:     cfg.BidCooldown,
		Logger:          logger,
	})

	engineRepo := enginepostgres.NewRepository(pg.DB, logger)
	engine := auctionengine.NewModule(auctionengine.Dependencies{
		Repo: engineRepo,
		// In-process ledger stands in for the external settlement rail while
		// that integration is finalized.
		Payments:    enginememory.NewPaymentLedger(),
		Guard:       guard.Service,
		Roles:       checker,
		Outbox:      engineRepo,
		Clock:       enginepostgres.SystemClock{},
		IDGenerator: enginepostgres.UUIDGenerator{},
		Logger:      logger,
	})
	if cfg.DefaultFeeBps > 0 {
		current, err := engineRepo.GetPlatformFeeBps(context.Background())
		if err != nil {
			return nil, err
		}
		if current == 0 {
			if err := engineRepo.PutPlatformFeeBps(context.Background(), cfg.DefaultFeeBps); err != nil {
				return nil, err
			}
		}
	}

	server := httpserver.New(engine, guard, access, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
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

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	engineRepo := enginepostgres.NewRepository(pg.DB, logger)
	guardRepo := guardpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		engineRelay: engineworkers.OutboxRelay{
			Outbox:    engineRepo,
			Publisher: kafka,
			Clock:     enginepostgres.SystemClock{},
			BatchSize: cfg.OutboxRelayBatchSize,
			Logger:    logger,
		},
		guardRelay: guardworkers.OutboxRelay{
			Outbox:    guardRepo,
			Publisher: kafka,
			Clock:     guardpostgres.SystemClock{},
			BatchSize: cfg.OutboxRelayBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.OutboxRelayInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.engineRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.guardRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
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
