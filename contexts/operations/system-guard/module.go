package systemguard

import (
	"log/slog"
	"time"

	httpadapter "gavel/contexts/operations/system-guard/adapters/http"
	"gavel/contexts/operations/system-guard/adapters/memory"
	"gavel/contexts/operations/system-guard/application"
	"gavel/contexts/operations/system-guard/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Store           ports.GuardStore
	Roles           ports.RoleChecker
	Outbox          ports.OutboxWriter
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	RateLimitPeriod time.Duration
	MaxActions      int
	BidCooldown     time.Duration
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Store:           deps.Store,
		Roles:           deps.Roles,
		Outbox:          deps.Outbox,
		Clock:           deps.Clock,
		IDGen:           deps.IDGenerator,
		RateLimitPeriod: deps.RateLimitPeriod,
		MaxActions:      deps.MaxActions,
		BidCooldown:     deps.BidCooldown,
		Logger:          deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the memory store with the
// default throttle tunables.
func NewInMemoryModule(logger *slog.Logger, roles ports.RoleChecker) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Store:           store,
		Roles:           roles,
		Outbox:          store,
		Clock:           store,
		IDGenerator:     store,
		RateLimitPeriod: application.DefaultRateLimitPeriod,
		MaxActions:      application.DefaultMaxActions,
		BidCooldown:     application.DefaultBidCooldown,
		Logger:          logger,
	})
	module.Store = store
	return module
}
