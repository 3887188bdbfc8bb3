package auctionengine

import (
	"context"
	"log/slog"

	httpadapter "gavel/contexts/trading/auction-engine/adapters/http"
	"gavel/contexts/trading/auction-engine/adapters/memory"
	"gavel/contexts/trading/auction-engine/application"
	"gavel/contexts/trading/auction-engine/ports"
)

type Module struct {
	Service  *application.Service
	Handler  httpadapter.Handler
	Store    *memory.Store
	Payments *memory.PaymentLedger
}

type Dependencies struct {
	Repo        ports.AuctionRepository
	Payments    ports.PaymentAdapter
	Guard       ports.Guard
	Roles       ports.RoleChecker
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Repo:     deps.Repo,
		Payments: deps.Payments,
		Guard:    deps.Guard,
		Roles:    deps.Roles,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the engine against the memory store and the
// in-memory payment ledger. A non-zero defaultFeeBps seeds the platform fee.
func NewInMemoryModule(
	guard ports.Guard,
	roles ports.RoleChecker,
	defaultFeeBps int64,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	payments := memory.NewPaymentLedger()
	if defaultFeeBps > 0 {
		_ = store.PutPlatformFeeBps(context.Background(), defaultFeeBps)
	}
	module := NewModule(Dependencies{
		Repo:        store,
		Payments:    payments,
		Guard:       guard,
		Roles:       roles,
		Outbox:      store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	module.Payments = payments
	return module
}
