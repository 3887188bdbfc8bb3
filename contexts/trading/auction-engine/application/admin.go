package application

import (
	"context"
	"strings"

	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"

	"github.com/shopspring/decimal"
)

// RecoverToken releases custodied funds to the caller. Only the free share of
// custody is recoverable: balances owed to bidders through escrow or held as
// live highest bids are protected and never leave through recovery.
func (s *Service) RecoverToken(ctx context.Context, callerID string, asset string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ResolveLogger(s.Logger)
	now := s.now()
	callerID = strings.TrimSpace(callerID)
	asset = strings.TrimSpace(asset)

	if err := s.Roles.RequireRole(ctx, callerID, roleRecovery); err != nil {
		return err
	}
	if asset == "" || !amount.IsPositive() {
		return domainerrors.ErrInvalidAmount
	}

	custody, err := s.Repo.GetCustody(ctx, asset)
	if err != nil {
		return err
	}
	owed, err := s.Repo.OwedForAsset(ctx, asset)
	if err != nil {
		return err
	}
	free := custody.Sub(owed)
	if amount.GreaterThan(free) {
		return domainerrors.ErrInvalidAmount
	}

	if err := s.Payments.Release(ctx, asset, callerID, amount); err != nil {
		return domainerrors.ErrTransferFailed
	}
	if err := s.Repo.PutCustody(ctx, asset, custody.Sub(amount)); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "system.security_alert", asset, now, map[string]any{
		"alert":     "token_recovered",
		"asset":     asset,
		"amount":    amount.String(),
		"caller_id": callerID,
	}); err != nil {
		return err
	}

	logger.Info("custody recovered",
		"event", "auction_token_recovered",
		"module", "trading/auction-engine",
		"layer", "application",
		"asset", asset,
		"amount", amount.String(),
		"caller_id", callerID,
	)
	return nil
}

// SetPlatformFee updates the platform fee in basis points. Admin-gated,
// capped at 10%.
func (s *Service) SetPlatformFee(ctx context.Context, callerID string, bps int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ResolveLogger(s.Logger)
	now := s.now()

	if err := s.Roles.RequireRole(ctx, strings.TrimSpace(callerID), roleAdmin); err != nil {
		return err
	}
	if bps < 0 || bps > maxFeeBps {
		return domainerrors.ErrInvalidFeePercentage
	}
	if err := s.Repo.PutPlatformFeeBps(ctx, bps); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "auction.fee_updated", "fee", now, map[string]any{
		"fee_bps":    bps,
		"updated_by": strings.TrimSpace(callerID),
	}); err != nil {
		return err
	}

	logger.Info("platform fee updated",
		"event", "auction_fee_updated",
		"module", "trading/auction-engine",
		"layer", "application",
		"fee_bps", bps,
		"updated_by", strings.TrimSpace(callerID),
	)
	return nil
}
