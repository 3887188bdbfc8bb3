package accesscontrol

import (
	"context"
	"log/slog"

	httpadapter "gavel/contexts/identity-access/access-control/adapters/http"
	"gavel/contexts/identity-access/access-control/adapters/memory"
	"gavel/contexts/identity-access/access-control/application"
	"gavel/contexts/identity-access/access-control/domain/entities"
	"gavel/contexts/identity-access/access-control/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the memory store and installs the
// seed grants, if any.
func NewInMemoryModule(logger *slog.Logger, seed map[string][]entities.Role) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	if len(seed) > 0 {
		// Memory store seeding cannot fail for valid roles.
		_ = module.Service.Seed(context.Background(), seed)
	}
	return module
}
