package application

import (
	"context"
	"strings"
	"time"

	"gavel/contexts/trading/auction-engine/domain/entities"
	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"

	"github.com/shopspring/decimal"
)

// CreateAuctionCommand is the write-model input for auction creation.
type CreateAuctionCommand struct {
	Owner           string
	AssetID         string
	PaymentAsset    string
	ReservePrice    decimal.Decimal
	BuyNowPrice     decimal.Decimal
	MinIncrement    decimal.Decimal
	Duration        time.Duration
	TimeExtension   time.Duration
	ExtensionWindow time.Duration
}

// CreateAuction registers a new auction and takes custody of the asset.
// Requires the system operable and the owner within rate limits.
func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionCommand) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ResolveLogger(s.Logger)
	now := s.now()

	owner := strings.TrimSpace(cmd.Owner)
	assetID := strings.TrimSpace(cmd.AssetID)
	paymentAsset := strings.TrimSpace(cmd.PaymentAsset)
	if paymentAsset == "" {
		paymentAsset = entities.NativeAsset
	}
	if owner == "" || assetID == "" {
		return 0, domainerrors.ErrInvalidAuction
	}
	if cmd.ReservePrice.IsNegative() || cmd.MinIncrement.IsNegative() || cmd.Duration <= 0 {
		return 0, domainerrors.ErrInvalidAmount
	}
	if !cmd.ReservePrice.LessThan(cmd.BuyNowPrice) {
		return 0, domainerrors.ErrInvalidAmount
	}
	if err := s.Guard.AssertOperable(ctx); err != nil {
		return 0, err
	}
	if err := s.Guard.CheckAction(ctx, owner, now); err != nil {
		return 0, err
	}

	// Asset custody is the only external effect; nothing internal has
	// mutated yet, so a failure is a clean abort.
	if err := s.Payments.Custody(ctx, assetID, owner, decimal.NewFromInt(1)); err != nil {
		logger.Warn("asset custody failed",
			"event", "auction_create_custody_failed",
			"module", "trading/auction-engine",
			"layer", "application",
			"owner", owner,
			"asset_id", assetID,
			"error", err.Error(),
		)
		return 0, domainerrors.ErrTransferFailed
	}

	auctionID, err := s.Repo.NextAuctionID(ctx)
	if err != nil {
		return 0, err
	}
	auction := entities.Auction{
		ID:              auctionID,
		Owner:           owner,
		AssetID:         assetID,
		PaymentAsset:    paymentAsset,
		ReservePrice:    cmd.ReservePrice,
		BuyNowPrice:     cmd.BuyNowPrice,
		MinIncrement:    cmd.MinIncrement,
		TimeExtension:   cmd.TimeExtension,
		ExtensionWindow: cmd.ExtensionWindow,
		EndTime:         now.Add(cmd.Duration),
		Active:          true,
		HighestBid:      decimal.Zero,
		CreatedAt:       now,
	}
	if err := s.Repo.SaveAuction(ctx, auction); err != nil {
		return 0, err
	}
	if err := s.Guard.RecordAction(ctx, owner, now); err != nil {
		return 0, err
	}
	if err := s.appendEvent(ctx, "auction.created", auctionKey(auctionID), now, map[string]any{
		"auction_id":    auctionID,
		"owner":         owner,
		"asset_id":      assetID,
		"payment_asset": paymentAsset,
		"reserve_price": cmd.ReservePrice.String(),
		"buy_now_price": cmd.BuyNowPrice.String(),
		"end_time":      auction.EndTime.Format(time.RFC3339),
	}); err != nil {
		return 0, err
	}
	if err := s.updateMetrics(ctx, now, 1, 1, decimal.Zero); err != nil {
		return 0, err
	}

	logger.Info("auction created",
		"event", "auction_created",
		"module", "trading/auction-engine",
		"layer", "application",
		"auction_id", auctionID,
		"owner", owner,
		"asset_id", assetID,
		"end_time", auction.EndTime,
	)
	return auctionID, nil
}

// EndAuction settles an auction whose end time has passed: the asset goes to
// the highest bidder and the net proceeds to the owner.
func (s *Service) EndAuction(ctx context.Context, auctionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	auction, err := s.Repo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if !auction.Active || auction.Canceled {
		return domainerrors.ErrAuctionNotActive
	}
	if now.Before(auction.EndTime) {
		return domainerrors.ErrAuctionNotEnded
	}
	if !auction.HasBids() {
		return domainerrors.ErrInvalidAuction
	}

	plan, err := s.planSettlement(ctx, auction)
	if err != nil {
		return err
	}
	if err := s.executeSettlement(ctx, auction, plan); err != nil {
		return err
	}
	return s.commitSettlement(ctx, auction, plan, now)
}

// CancelAuction deactivates an auction. The owner or any auctioneer may
// cancel; the held highest bid moves into the bidder's escrow so funds stay
// withdrawable, and the asset returns to the owner.
func (s *Service) CancelAuction(ctx context.Context, auctionID int64, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ResolveLogger(s.Logger)
	now := s.now()
	callerID = strings.TrimSpace(callerID)

	auction, err := s.Repo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Canceled || !auction.Active {
		return domainerrors.ErrAuctionNotActive
	}
	if callerID != auction.Owner {
		if err := s.Roles.RequireRole(ctx, callerID, roleAuctioneer); err != nil {
			return err
		}
	}

	if err := s.Payments.Release(ctx, auction.AssetID, auction.Owner, decimal.NewFromInt(1)); err != nil {
		return domainerrors.ErrTransferFailed
	}

	if auction.HasBids() {
		balance, err := s.Repo.GetEscrow(ctx, auction.ID, auction.HighestBidder)
		if err != nil {
			return err
		}
		if err := s.Repo.PutEscrow(ctx, auction.ID, auction.HighestBidder, balance.Add(auction.HighestBid)); err != nil {
			return err
		}
	}
	auction.Active = false
	auction.Canceled = true
	if err := s.Repo.SaveAuction(ctx, auction); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "auction.canceled", auctionKey(auction.ID), now, map[string]any{
		"auction_id":  auction.ID,
		"canceled_by": callerID,
	}); err != nil {
		return err
	}
	if err := s.updateMetrics(ctx, now, 0, -1, decimal.Zero); err != nil {
		return err
	}

	logger.Info("auction canceled",
		"event", "auction_canceled",
		"module", "trading/auction-engine",
		"layer", "application",
		"auction_id", auction.ID,
		"canceled_by", callerID,
	)
	return nil
}

// settlementPlan carries the derived values of an auction end so external
// transfers can run before any internal mutation.
type settlementPlan struct {
	fee decimal.Decimal
	net decimal.Decimal
}

func (s *Service) planSettlement(ctx context.Context, auction entities.Auction) (settlementPlan, error) {
	bps, err := s.platformFeeBps(ctx)
	if err != nil {
		return settlementPlan{}, err
	}
	fee, net := feeSplit(auction.HighestBid, bps)
	return settlementPlan{fee: fee, net: net}, nil
}

func (s *Service) executeSettlement(ctx context.Context, auction entities.Auction, plan settlementPlan) error {
	if err := s.Payments.Release(ctx, auction.AssetID, auction.HighestBidder, decimal.NewFromInt(1)); err != nil {
		return domainerrors.ErrTransferFailed
	}
	if err := s.Payments.Release(ctx, auction.PaymentAsset, auction.Owner, plan.net); err != nil {
		return domainerrors.ErrTransferFailed
	}
	return nil
}

func (s *Service) commitSettlement(ctx context.Context, auction entities.Auction, plan settlementPlan, now time.Time) error {
	logger := ResolveLogger(s.Logger)

	auction.Active = false
	if err := s.Repo.SaveAuction(ctx, auction); err != nil {
		return err
	}
	custody, err := s.Repo.GetCustody(ctx, auction.PaymentAsset)
	if err != nil {
		return err
	}
	// The fee share stays behind as free (recoverable) custody.
	if err := s.Repo.PutCustody(ctx, auction.PaymentAsset, custody.Sub(plan.net)); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "auction.ended", auctionKey(auction.ID), now, map[string]any{
		"auction_id":   auction.ID,
		"winner":       auction.HighestBidder,
		"winning_bid":  auction.HighestBid.String(),
		"fee_amount":   plan.fee.String(),
		"net_proceeds": plan.net.String(),
	}); err != nil {
		return err
	}
	if err := s.updateMetrics(ctx, now, 0, -1, decimal.Zero); err != nil {
		return err
	}

	logger.Info("auction ended",
		"event", "auction_ended",
		"module", "trading/auction-engine",
		"layer", "application",
		"auction_id", auction.ID,
		"winner", auction.HighestBidder,
		"winning_bid", auction.HighestBid.String(),
		"fee_amount", plan.fee.String(),
	)
	return nil
}
