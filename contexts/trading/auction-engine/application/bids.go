package application

import (
	"context"
	"strings"
	"time"

	"gavel/contexts/trading/auction-engine/domain/entities"
	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"

	"github.com/shopspring/decimal"
)

// PlaceBidCommand is the write-model input for bidding. PaidAmount is the
// native value attached to the call; it must match Amount exactly for
// native-denominated auctions and is ignored for token-denominated ones.
type PlaceBidCommand struct {
	AuctionID  int64
	Bidder     string
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
}

// PlaceBid validates a bid end to end, settles the funds through the payment
// adapter, and commits the ledger changes. The displaced highest bidder is
// refunded by escrow credit, never by immediate transfer. A bid near the
// deadline extends it; a bid at or above buy-now ends the auction in the same
// operation.
func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ResolveLogger(s.Logger)
	now := s.now()
	bidder := strings.TrimSpace(cmd.Bidder)

	if err := s.Guard.AssertOperable(ctx); err != nil {
		return err
	}
	if err := s.Guard.CheckAction(ctx, bidder, now); err != nil {
		return err
	}
	if err := s.Guard.CheckBidCooldown(ctx, bidder, now); err != nil {
		return err
	}

	auction, err := s.Repo.GetAuction(ctx, cmd.AuctionID)
	if err != nil {
		return err
	}
	if !auction.Active || auction.Canceled {
		return domainerrors.ErrAuctionNotActive
	}
	blacklisted, err := s.Guard.IsBlacklisted(ctx, bidder)
	if err != nil {
		return err
	}
	if blacklisted {
		return domainerrors.ErrBlacklistedBidder
	}
	if !now.Before(auction.EndTime) {
		return domainerrors.ErrAuctionEnded
	}
	if !cmd.Amount.GreaterThan(auction.HighestBid.Add(auction.MinIncrement)) {
		return domainerrors.ErrBidTooLow
	}
	// The first bid must also reach the reserve.
	if !auction.HasBids() && cmd.Amount.LessThan(auction.ReservePrice) {
		return domainerrors.ErrBidTooLow
	}

	buyNow := cmd.Amount.GreaterThanOrEqual(auction.BuyNowPrice)

	// All validation passed. External settlement runs next, still before any
	// internal mutation: the incoming funds, plus the closing transfers on a
	// buy-now bid, so a failed adapter call aborts the whole operation. Native
	// bids move their attached value into custody through the same pull as
	// token bids; later releases pay out of that vault balance.
	if auction.PaymentAsset == entities.NativeAsset && !cmd.PaidAmount.Equal(cmd.Amount) {
		return domainerrors.ErrInvalidAmount
	}
	if err := s.Payments.Pull(ctx, auction.PaymentAsset, bidder, cmd.Amount); err != nil {
		logger.Warn("bid pull transfer failed",
			"event", "auction_bid_pull_failed",
			"module", "trading/auction-engine",
			"layer", "application",
			"auction_id", auction.ID,
			"bidder", bidder,
			"error", err.Error(),
		)
		return domainerrors.ErrTransferFailed
	}

	displacedBidder := auction.HighestBidder
	displacedAmount := auction.HighestBid
	auction.HighestBidder = bidder
	auction.HighestBid = cmd.Amount

	var plan settlementPlan
	if buyNow {
		plan, err = s.planSettlement(ctx, auction)
		if err != nil {
			return err
		}
		if err := s.executeSettlement(ctx, auction, plan); err != nil {
			return err
		}
	}

	// Commit phase.
	if displacedBidder != "" {
		balance, err := s.Repo.GetEscrow(ctx, auction.ID, displacedBidder)
		if err != nil {
			return err
		}
		if err := s.Repo.PutEscrow(ctx, auction.ID, displacedBidder, balance.Add(displacedAmount)); err != nil {
			return err
		}
	}
	custody, err := s.Repo.GetCustody(ctx, auction.PaymentAsset)
	if err != nil {
		return err
	}
	if err := s.Repo.PutCustody(ctx, auction.PaymentAsset, custody.Add(cmd.Amount)); err != nil {
		return err
	}
	if err := s.Repo.AppendBid(ctx, auction.ID, entities.Bid{
		Bidder:   bidder,
		Amount:   cmd.Amount,
		PlacedAt: now,
	}); err != nil {
		return err
	}

	extended := false
	if !now.Before(auction.EndTime.Add(-auction.ExtensionWindow)) {
		auction.EndTime = auction.EndTime.Add(auction.TimeExtension)
		extended = true
	}
	if err := s.Repo.SaveAuction(ctx, auction); err != nil {
		return err
	}
	if err := s.Guard.RecordAction(ctx, bidder, now); err != nil {
		return err
	}
	if err := s.Guard.ArmBidCooldown(ctx, bidder, now); err != nil {
		return err
	}

	if extended {
		if err := s.appendEvent(ctx, "auction.extended", auctionKey(auction.ID), now, map[string]any{
			"auction_id":   auction.ID,
			"new_end_time": auction.EndTime.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := s.appendEvent(ctx, "auction.bid_placed", auctionKey(auction.ID), now, map[string]any{
		"auction_id": auction.ID,
		"bidder":     bidder,
		"amount":     cmd.Amount.String(),
	}); err != nil {
		return err
	}
	if err := s.updateMetrics(ctx, now, 0, 0, cmd.Amount); err != nil {
		return err
	}

	logger.Info("bid placed",
		"event", "auction_bid_placed",
		"module", "trading/auction-engine",
		"layer", "application",
		"auction_id", auction.ID,
		"bidder", bidder,
		"amount", cmd.Amount.String(),
		"extended", extended,
		"buy_now", buyNow,
	)

	if buyNow {
		return s.commitSettlement(ctx, auction, plan, now)
	}
	return nil
}

// WithdrawFunds pays out and zeroes the bidder's escrow entry for an auction.
// The entry is zeroed strictly before the external payout instruction; a
// failed payout restores it, so the net effect of a failure is a no-op.
func (s *Service) WithdrawFunds(ctx context.Context, auctionID int64, bidder string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ResolveLogger(s.Logger)
	now := s.now()
	bidder = strings.TrimSpace(bidder)

	auction, err := s.Repo.GetAuction(ctx, auctionID)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := s.Repo.GetEscrow(ctx, auctionID, bidder)
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.IsPositive() {
		return decimal.Zero, domainerrors.ErrInvalidAmount
	}

	if err := s.Repo.PutEscrow(ctx, auctionID, bidder, decimal.Zero); err != nil {
		return decimal.Zero, err
	}
	if err := s.Payments.Release(ctx, auction.PaymentAsset, bidder, balance); err != nil {
		if restoreErr := s.Repo.PutEscrow(ctx, auctionID, bidder, balance); restoreErr != nil {
			return decimal.Zero, restoreErr
		}
		return decimal.Zero, domainerrors.ErrTransferFailed
	}
	custody, err := s.Repo.GetCustody(ctx, auction.PaymentAsset)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.Repo.PutCustody(ctx, auction.PaymentAsset, custody.Sub(balance)); err != nil {
		return decimal.Zero, err
	}
	if err := s.appendEvent(ctx, "auction.bid_withdrawn", auctionKey(auctionID), now, map[string]any{
		"auction_id": auctionID,
		"bidder":     bidder,
		"amount":     balance.String(),
	}); err != nil {
		return decimal.Zero, err
	}

	logger.Info("escrow withdrawn",
		"event", "auction_escrow_withdrawn",
		"module", "trading/auction-engine",
		"layer", "application",
		"auction_id", auctionID,
		"bidder", bidder,
		"amount", balance.String(),
	)
	return balance, nil
}
