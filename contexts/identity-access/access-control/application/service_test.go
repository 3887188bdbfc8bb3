package application

import (
	"context"
	"errors"
	"testing"

	"gavel/contexts/identity-access/access-control/adapters/memory"
	"gavel/contexts/identity-access/access-control/domain/entities"
	domainerrors "gavel/contexts/identity-access/access-control/domain/errors"
)

func newService(t *testing.T) Service {
	t.Helper()
	store := memory.NewStore()
	svc := Service{Repo: store, Clock: store}
	if err := svc.Seed(context.Background(), map[string][]entities.Role{
		"admin-1": {entities.RoleAdmin},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return svc
}

func TestGrantAndRequireRole(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.GrantRole(ctx, "admin-1", "op-1", entities.RoleOperator); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.RequireRole(ctx, "op-1", entities.RoleOperator); err != nil {
		t.Fatalf("require after grant failed: %v", err)
	}
	if err := svc.RequireRole(ctx, "op-1", entities.RoleRecovery); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing role, got %v", err)
	}
}

func TestGrantRequiresAdmin(t *testing.T) {
	svc := newService(t)
	err := svc.GrantRole(context.Background(), "op-1", "other", entities.RoleOperator)
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized grant, got %v", err)
	}
}

func TestRevokeRole(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.GrantRole(ctx, "admin-1", "op-1", entities.RoleMaintainer); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.RevokeRole(ctx, "admin-1", "op-1", entities.RoleMaintainer); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if err := svc.RequireRole(ctx, "op-1", entities.RoleMaintainer); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after revoke, got %v", err)
	}
}

func TestRequireAnyRole(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.GrantRole(ctx, "admin-1", "seller-1", entities.RoleAuctioneer); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.RequireAnyRole(ctx, "seller-1", entities.RoleAdmin, entities.RoleAuctioneer); err != nil {
		t.Fatalf("require any failed: %v", err)
	}
	if err := svc.RequireAnyRole(ctx, "seller-1", entities.RoleAdmin, entities.RoleRecovery); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestGrantRejectsInvalidRole(t *testing.T) {
	svc := newService(t)
	err := svc.GrantRole(context.Background(), "admin-1", "op-1", entities.Role("superuser"))
	if !errors.Is(err, domainerrors.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}
