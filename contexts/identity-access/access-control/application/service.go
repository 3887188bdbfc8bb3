package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gavel/contexts/identity-access/access-control/domain/entities"
	domainerrors "gavel/contexts/identity-access/access-control/domain/errors"
	"gavel/contexts/identity-access/access-control/ports"
)

// Service owns role membership reads and admin-gated mutations.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

// GrantRole adds a role to an actor's set. Granting is additive and
// idempotent; repeating an existing grant is not an error.
func (s Service) GrantRole(ctx context.Context, adminID string, actorID string, role entities.Role) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(actorID) == "" {
		return domainerrors.ErrInvalidActorID
	}
	if !role.Valid() {
		return domainerrors.ErrInvalidRole
	}
	if err := s.RequireRole(ctx, adminID, entities.RoleAdmin); err != nil {
		return err
	}

	if err := s.Repo.SaveGrant(ctx, entities.RoleGrant{
		ActorID:   strings.TrimSpace(actorID),
		Role:      role,
		GrantedBy: strings.TrimSpace(adminID),
		GrantedAt: s.now(),
	}); err != nil {
		return err
	}
	logger.Info("role granted",
		"event", "access_role_granted",
		"module", "identity-access/access-control",
		"layer", "application",
		"actor_id", strings.TrimSpace(actorID),
		"role", string(role),
		"admin_id", strings.TrimSpace(adminID),
	)
	return nil
}

// RevokeRole removes a role from an actor's set. Revoking an absent grant is
// a no-op.
func (s Service) RevokeRole(ctx context.Context, adminID string, actorID string, role entities.Role) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(actorID) == "" {
		return domainerrors.ErrInvalidActorID
	}
	if !role.Valid() {
		return domainerrors.ErrInvalidRole
	}
	if err := s.RequireRole(ctx, adminID, entities.RoleAdmin); err != nil {
		return err
	}

	if err := s.Repo.DeleteGrant(ctx, strings.TrimSpace(actorID), role); err != nil {
		return err
	}
	logger.Info("role revoked",
		"event", "access_role_revoked",
		"module", "identity-access/access-control",
		"layer", "application",
		"actor_id", strings.TrimSpace(actorID),
		"role", string(role),
		"admin_id", strings.TrimSpace(adminID),
	)
	return nil
}

// HasRole reports set membership without failing.
func (s Service) HasRole(ctx context.Context, actorID string, role entities.Role) (bool, error) {
	if strings.TrimSpace(actorID) == "" || !role.Valid() {
		return false, nil
	}
	return s.Repo.HasGrant(ctx, strings.TrimSpace(actorID), role)
}

// RequireRole fails with ErrUnauthorized unless the actor holds the role.
func (s Service) RequireRole(ctx context.Context, actorID string, role entities.Role) error {
	ok, err := s.HasRole(ctx, actorID, role)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

// RequireAnyRole fails with ErrUnauthorized unless the actor holds at least
// one of the listed roles.
func (s Service) RequireAnyRole(ctx context.Context, actorID string, roles ...entities.Role) error {
	for _, role := range roles {
		ok, err := s.HasRole(ctx, actorID, role)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return domainerrors.ErrUnauthorized
}

// ListRoles returns all grants held by the actor.
func (s Service) ListRoles(ctx context.Context, actorID string) ([]entities.RoleGrant, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domainerrors.ErrInvalidActorID
	}
	return s.Repo.ListGrants(ctx, strings.TrimSpace(actorID))
}

// Seed installs initial grants without admin gating. The composition root
// uses it once at construction to hand out the bootstrap role set.
func (s Service) Seed(ctx context.Context, grants map[string][]entities.Role) error {
	now := s.now()
	for actorID, roles := range grants {
		for _, role := range roles {
			if strings.TrimSpace(actorID) == "" || !role.Valid() {
				return domainerrors.ErrInvalidRole
			}
			if err := s.Repo.SaveGrant(ctx, entities.RoleGrant{
				ActorID:   strings.TrimSpace(actorID),
				Role:      role,
				GrantedBy: "bootstrap",
				GrantedAt: now,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
