package application

import (
	"context"
	"strings"

	"gavel/contexts/trading/auction-engine/domain/entities"

	"github.com/shopspring/decimal"
)

// GetAuction returns one auction by id, including deactivated ones.
func (s *Service) GetAuction(ctx context.Context, auctionID int64) (entities.Auction, error) {
	return s.Repo.GetAuction(ctx, auctionID)
}

// GetBidCount returns the length of an auction's bid ledger.
func (s *Service) GetBidCount(ctx context.Context, auctionID int64) (int, error) {
	if _, err := s.Repo.GetAuction(ctx, auctionID); err != nil {
		return 0, err
	}
	return s.Repo.CountBids(ctx, auctionID)
}

// GetBid returns one ledger entry by index.
func (s *Service) GetBid(ctx context.Context, auctionID int64, index int) (entities.Bid, error) {
	if _, err := s.Repo.GetAuction(ctx, auctionID); err != nil {
		return entities.Bid{}, err
	}
	return s.Repo.GetBid(ctx, auctionID, index)
}

// EscrowBalance returns the amount currently owed to a bidder for an auction.
func (s *Service) EscrowBalance(ctx context.Context, auctionID int64, bidder string) (decimal.Decimal, error) {
	if _, err := s.Repo.GetAuction(ctx, auctionID); err != nil {
		return decimal.Zero, err
	}
	return s.Repo.GetEscrow(ctx, auctionID, strings.TrimSpace(bidder))
}

// GetSystemMetrics returns the process-wide rollup.
func (s *Service) GetSystemMetrics(ctx context.Context) (entities.SystemMetrics, error) {
	return s.Repo.GetMetrics(ctx)
}
