package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	guarderrors "gavel/contexts/operations/system-guard/domain/errors"
	guardtransport "gavel/contexts/operations/system-guard/transport/http"
	engineerrors "gavel/contexts/trading/auction-engine/domain/errors"
	enginetransport "gavel/contexts/trading/auction-engine/transport/http"
)

func TestEmergencyPauseGatesEngineOperations(t *testing.T) {
	s := newStack(t, 100, 0)
	auctionID := s.createAuction(t, "alice")

	enable := guardtransport.SetEmergencyRequest{Enabled: true}
	if _, err := s.guard.Handler.SetEmergencyHandler(context.Background(), "root", enable); err != nil {
		t.Fatalf("enable emergency failed: %v", err)
	}

	s.engine.Payments.Credit("bob", "credits", decimal.NewFromInt(50))
	_, err := s.engine.Handler.PlaceBidHandler(context.Background(), "bob", auctionID, enginetransport.PlaceBidRequest{Amount: "20"})
	if !errors.Is(err, guarderrors.ErrEmergencyPaused) {
		t.Fatalf("expected emergency pause error, got %v", err)
	}

	disable := guardtransport.SetEmergencyRequest{Enabled: false}
	if _, err := s.guard.Handler.SetEmergencyHandler(context.Background(), "root", disable); err != nil {
		t.Fatalf("disable emergency failed: %v", err)
	}
	if _, err := s.engine.Handler.PlaceBidHandler(context.Background(), "bob", auctionID, enginetransport.PlaceBidRequest{Amount: "20"}); err != nil {
		t.Fatalf("expected bid to pass after resume, got %v", err)
	}
}

func TestMaintenanceModeGatesEngineOperations(t *testing.T) {
	s := newStack(t, 100, 0)
	auctionID := s.createAuction(t, "alice")

	if _, err := s.guard.Handler.SetMaintenanceHandler(context.Background(), "ops", guardtransport.SetMaintenanceRequest{Enabled: true}); err != nil {
		t.Fatalf("enable maintenance failed: %v", err)
	}

	s.engine.Payments.Credit("bob", "credits", decimal.NewFromInt(50))
	_, err := s.engine.Handler.PlaceBidHandler(context.Background(), "bob", auctionID, enginetransport.PlaceBidRequest{Amount: "20"})
	if !errors.Is(err, guarderrors.ErrInvalidSystemState) {
		t.Fatalf("expected invalid system state error, got %v", err)
	}

	status, err := s.guard.Handler.SystemStatusHandler(context.Background())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Data.State != "maintenance" {
		t.Fatalf("expected maintenance state, got %q", status.Data.State)
	}
}

func TestBlacklistGatesBidsNotWithdrawals(t *testing.T) {
	s := newStack(t, 100, 0)
	auctionID := s.createAuction(t, "alice")

	s.engine.Payments.Credit("bob", "credits", decimal.NewFromInt(50))
	s.engine.Payments.Credit("carol", "credits", decimal.NewFromInt(50))
	if _, err := s.engine.Handler.PlaceBidHandler(context.Background(), "bob", auctionID, enginetransport.PlaceBidRequest{Amount: "20"}); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	if _, err := s.engine.Handler.PlaceBidHandler(context.Background(), "carol", auctionID, enginetransport.PlaceBidRequest{Amount: "25"}); err != nil {
		t.Fatalf("outbid failed: %v", err)
	}

	if _, err := s.guard.Handler.BlacklistBidderHandler(context.Background(), "ops", guardtransport.BlacklistBidderRequest{BidderID: "bob"}); err != nil {
		t.Fatalf("blacklist failed: %v", err)
	}

	_, err := s.engine.Handler.PlaceBidHandler(context.Background(), "bob", auctionID, enginetransport.PlaceBidRequest{Amount: "30"})
	if !errors.Is(err, engineerrors.ErrBlacklistedBidder) {
		t.Fatalf("expected blacklist error, got %v", err)
	}

	// Escrowed funds stay withdrawable after blacklisting.
	withdraw, err := s.engine.Handler.WithdrawHandler(context.Background(), "bob", auctionID)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if withdraw.Data.Amount != "20" {
		t.Fatalf("expected withdrawal of 20, got %s", withdraw.Data.Amount)
	}
}

func TestRateLimitStatusHandlerReportsQuota(t *testing.T) {
	s := newStack(t, 5, 0)
	s.createAuction(t, "alice")

	resp, err := s.guard.Handler.RateLimitStatusHandler(context.Background(), "alice", s.clock.Now())
	if err != nil {
		t.Fatalf("rate limit status failed: %v", err)
	}
	if resp.Data.ActionsRemaining != 4 {
		t.Fatalf("expected 4 actions remaining, got %d", resp.Data.ActionsRemaining)
	}
	if resp.Data.WindowResetsAt == "" {
		t.Fatalf("expected window reset timestamp")
	}
}
