package ports

import (
	"context"
	"time"

	"gavel/contexts/identity-access/access-control/domain/entities"
)

type Repository interface {
	SaveGrant(ctx context.Context, grant entities.RoleGrant) error
	DeleteGrant(ctx context.Context, actorID string, role entities.Role) error
	HasGrant(ctx context.Context, actorID string, role entities.Role) (bool, error)
	ListGrants(ctx context.Context, actorID string) ([]entities.RoleGrant, error)
}

type Clock interface {
	Now() time.Time
}
