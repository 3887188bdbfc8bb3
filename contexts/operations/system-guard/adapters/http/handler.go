package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"gavel/contexts/operations/system-guard/application"
	httptransport "gavel/contexts/operations/system-guard/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) SetEmergencyHandler(
	ctx context.Context,
	actorID string,
	req httptransport.SetEmergencyRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.SetEmergencyState(ctx, actorID, req.Enabled); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) SetMaintenanceHandler(
	ctx context.Context,
	actorID string,
	req httptransport.SetMaintenanceRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.SetMaintenanceMode(ctx, actorID, req.Enabled); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) BlacklistBidderHandler(
	ctx context.Context,
	actorID string,
	req httptransport.BlacklistBidderRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.BlacklistBidder(ctx, actorID, req.BidderID); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) SystemStatusHandler(ctx context.Context) (httptransport.SystemStatusResponse, error) {
	status, err := h.Service.Status(ctx)
	if err != nil {
		return httptransport.SystemStatusResponse{}, err
	}
	resp := httptransport.SystemStatusResponse{Status: "success"}
	resp.Data.State = string(status.State)
	resp.Data.Paused = status.Paused
	return resp, nil
}

func (h Handler) RateLimitStatusHandler(
	ctx context.Context,
	actorID string,
	at time.Time,
) (httptransport.RateLimitStatusResponse, error) {
	status, err := h.Service.RateLimitStatus(ctx, actorID, at)
	if err != nil {
		return httptransport.RateLimitStatusResponse{}, err
	}
	resp := httptransport.RateLimitStatusResponse{Status: "success"}
	resp.Data.ActionsRemaining = status.ActionsRemaining
	if !status.WindowResetsAt.IsZero() {
		resp.Data.WindowResetsAt = status.WindowResetsAt.UTC().Format(time.RFC3339)
	}
	if !status.CooldownEndsAt.IsZero() {
		resp.Data.CooldownEndsAt = status.CooldownEndsAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}
