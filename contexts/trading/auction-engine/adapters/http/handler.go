package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"gavel/contexts/trading/auction-engine/application"
	"gavel/contexts/trading/auction-engine/domain/entities"
	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
	httptransport "gavel/contexts/trading/auction-engine/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateAuctionHandler(
	ctx context.Context,
	actorID string,
	req httptransport.CreateAuctionRequest,
) (httptransport.CreateAuctionResponse, error) {
	reserve, err := parseAmount(req.ReservePrice)
	if err != nil {
		return httptransport.CreateAuctionResponse{}, err
	}
	buyNow, err := parseAmount(req.BuyNowPrice)
	if err != nil {
		return httptransport.CreateAuctionResponse{}, err
	}
	increment, err := parseAmount(req.MinIncrement)
	if err != nil {
		return httptransport.CreateAuctionResponse{}, err
	}

	auctionID, err := h.Service.CreateAuction(ctx, application.CreateAuctionCommand{
		Owner:           actorID,
		AssetID:         req.AssetID,
		PaymentAsset:    req.PaymentAsset,
		ReservePrice:    reserve,
		BuyNowPrice:     buyNow,
		MinIncrement:    increment,
		Duration:        time.Duration(req.DurationSeconds) * time.Second,
		TimeExtension:   time.Duration(req.ExtensionSeconds) * time.Second,
		ExtensionWindow: time.Duration(req.WindowSeconds) * time.Second,
	})
	if err != nil {
		return httptransport.CreateAuctionResponse{}, err
	}
	resp := httptransport.CreateAuctionResponse{Status: "success"}
	resp.Data.AuctionID = auctionID
	return resp, nil
}

func (h Handler) PlaceBidHandler(
	ctx context.Context,
	actorID string,
	auctionID int64,
	req httptransport.PlaceBidRequest,
) (httptransport.StatusResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	paid := decimal.Zero
	if req.PaidAmount != "" {
		paid, err = parseAmount(req.PaidAmount)
		if err != nil {
			return httptransport.StatusResponse{}, err
		}
	}
	if err := h.Service.PlaceBid(ctx, application.PlaceBidCommand{
		AuctionID:  auctionID,
		Bidder:     actorID,
		Amount:     amount,
		PaidAmount: paid,
	}); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) EndAuctionHandler(ctx context.Context, auctionID int64) (httptransport.StatusResponse, error) {
	if err := h.Service.EndAuction(ctx, auctionID); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) CancelAuctionHandler(
	ctx context.Context,
	actorID string,
	auctionID int64,
) (httptransport.StatusResponse, error) {
	if err := h.Service.CancelAuction(ctx, auctionID, actorID); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	actorID string,
	auctionID int64,
) (httptransport.WithdrawResponse, error) {
	amount, err := h.Service.WithdrawFunds(ctx, auctionID, actorID)
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	resp := httptransport.WithdrawResponse{Status: "success"}
	resp.Data.Amount = amount.String()
	return resp, nil
}

func (h Handler) GetAuctionHandler(ctx context.Context, auctionID int64) (httptransport.AuctionResponse, error) {
	auction, err := h.Service.GetAuction(ctx, auctionID)
	if err != nil {
		return httptransport.AuctionResponse{}, err
	}
	count, err := h.Service.GetBidCount(ctx, auctionID)
	if err != nil {
		return httptransport.AuctionResponse{}, err
	}
	return httptransport.AuctionResponse{
		Status: "success",
		Data:   toAuctionDTO(auction, count),
	}, nil
}

func (h Handler) GetBidHandler(
	ctx context.Context,
	auctionID int64,
	index int,
) (httptransport.BidResponse, error) {
	bid, err := h.Service.GetBid(ctx, auctionID, index)
	if err != nil {
		return httptransport.BidResponse{}, err
	}
	return httptransport.BidResponse{
		Status: "success",
		Data: httptransport.BidDTO{
			Bidder:   bid.Bidder,
			Amount:   bid.Amount.String(),
			PlacedAt: bid.PlacedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

func (h Handler) MetricsHandler(ctx context.Context) (httptransport.MetricsResponse, error) {
	metrics, err := h.Service.GetSystemMetrics(ctx)
	if err != nil {
		return httptransport.MetricsResponse{}, err
	}
	resp := httptransport.MetricsResponse{Status: "success"}
	resp.Data.TotalAuctions = metrics.TotalAuctions
	resp.Data.ActiveAuctions = metrics.ActiveAuctions
	resp.Data.TotalVolume = metrics.TotalVolume.String()
	if !metrics.LastUpdateAt.IsZero() {
		resp.Data.LastUpdateAt = metrics.LastUpdateAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) SetFeeHandler(
	ctx context.Context,
	actorID string,
	req httptransport.SetFeeRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.SetPlatformFee(ctx, actorID, req.FeeBps); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) RecoverTokenHandler(
	ctx context.Context,
	actorID string,
	req httptransport.RecoverTokenRequest,
) (httptransport.StatusResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	if err := h.Service.RecoverToken(ctx, actorID, req.Asset, amount); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func toAuctionDTO(auction entities.Auction, bidCount int) httptransport.AuctionDTO {
	return httptransport.AuctionDTO{
		AuctionID:     auction.ID,
		Owner:         auction.Owner,
		AssetID:       auction.AssetID,
		PaymentAsset:  auction.PaymentAsset,
		ReservePrice:  auction.ReservePrice.String(),
		BuyNowPrice:   auction.BuyNowPrice.String(),
		MinIncrement:  auction.MinIncrement.String(),
		EndTime:       auction.EndTime.UTC().Format(time.RFC3339),
		Active:        auction.Active,
		Canceled:      auction.Canceled,
		HighestBidder: auction.HighestBidder,
		HighestBid:    auction.HighestBid.String(),
		BidCount:      bidCount,
		CreatedAt:     auction.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainerrors.ErrInvalidAmount
	}
	return amount, nil
}
