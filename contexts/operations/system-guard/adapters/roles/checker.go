package roles

import (
	"context"

	accessapp "gavel/contexts/identity-access/access-control/application"
	accessentities "gavel/contexts/identity-access/access-control/domain/entities"
)

// AccessControlChecker adapts the access-control service to the guard's
// RoleChecker port.
type AccessControlChecker struct {
	Service accessapp.Service
}

func (c AccessControlChecker) RequireRole(ctx context.Context, actorID string, role string) error {
	return c.Service.RequireRole(ctx, actorID, accessentities.Role(role))
}

func (c AccessControlChecker) RequireAnyRole(ctx context.Context, actorID string, roleNames ...string) error {
	mapped := make([]accessentities.Role, 0, len(roleNames))
	for _, name := range roleNames {
		mapped = append(mapped, accessentities.Role(name))
	}
	return c.Service.RequireAnyRole(ctx, actorID, mapped...)
}
