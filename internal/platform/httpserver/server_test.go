package httpserver

import (
	"io"
	"log/slog"

	accesscontrol "gavel/contexts/identity-access/access-control"
	accessentities "gavel/contexts/identity-access/access-control/domain/entities"
	systemguard "gavel/contexts/operations/system-guard"
	guardroles "gavel/contexts/operations/system-guard/adapters/roles"
	auctionengine "gavel/contexts/trading/auction-engine"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	access := accesscontrol.NewInMemoryModule(logger, map[string][]accessentities.Role{
		"root": {accessentities.RoleAdmin},
		"ops":  {accessentities.RoleOperator, accessentities.RoleAuctioneer},
	})
	checker := guardroles.AccessControlChecker{Service: access.Service}
	guard := systemguard.NewInMemoryModule(logger, checker)
	engine := auctionengine.NewInMemoryModule(guard.Service, checker, 250, logger)
	return New(engine, guard, access, logger, ":0")
}
