package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"gavel/contexts/identity-access/access-control/application"
	"gavel/contexts/identity-access/access-control/domain/entities"
	httptransport "gavel/contexts/identity-access/access-control/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GrantRoleHandler(
	ctx context.Context,
	adminID string,
	req httptransport.GrantRoleRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.GrantRole(ctx, adminID, req.ActorID, entities.Role(req.Role)); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) RevokeRoleHandler(
	ctx context.Context,
	adminID string,
	req httptransport.RevokeRoleRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.RevokeRole(ctx, adminID, req.ActorID, entities.Role(req.Role)); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) ListRolesHandler(ctx context.Context, actorID string) (httptransport.ListRolesResponse, error) {
	grants, err := h.Service.ListRoles(ctx, actorID)
	if err != nil {
		return httptransport.ListRolesResponse{}, err
	}
	resp := httptransport.ListRolesResponse{
		Status: "success",
		Data:   make([]httptransport.RoleGrantDTO, 0, len(grants)),
	}
	for _, grant := range grants {
		resp.Data = append(resp.Data, httptransport.RoleGrantDTO{
			ActorID:   grant.ActorID,
			Role:      string(grant.Role),
			GrantedBy: grant.GrantedBy,
			GrantedAt: grant.GrantedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
