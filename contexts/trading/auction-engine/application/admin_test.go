package application

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
)

func TestSetPlatformFee(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()

	if err := fx.svc.SetPlatformFee(ctx, "mallory", 250); !errors.Is(err, errNoRole) {
		t.Fatalf("unauthorized fee change error = %v, want role error", err)
	}
	if err := fx.svc.SetPlatformFee(ctx, "root", 1001); !errors.Is(err, domainerrors.ErrInvalidFeePercentage) {
		t.Fatalf("over-cap fee error = %v, want ErrInvalidFeePercentage", err)
	}
	if err := fx.svc.SetPlatformFee(ctx, "root", -1); !errors.Is(err, domainerrors.ErrInvalidFeePercentage) {
		t.Fatalf("negative fee error = %v, want ErrInvalidFeePercentage", err)
	}
	if err := fx.svc.SetPlatformFee(ctx, "root", 1000); err != nil {
		t.Fatalf("cap fee change: %v", err)
	}
	bps, err := fx.store.GetPlatformFeeBps(ctx)
	if err != nil {
		t.Fatalf("GetPlatformFeeBps: %v", err)
	}
	if bps != 1000 {
		t.Fatalf("stored fee = %d, want 1000", bps)
	}
}

func TestRecoverTokenProtectsOwedBalances(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	if err := fx.store.PutPlatformFeeBps(ctx, 1000); err != nil {
		t.Fatalf("seed platform fee: %v", err)
	}
	fx.payments.Credit("bob", "credits", dec("50"))
	fx.payments.Credit("carol", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "carol", Amount: dec("20")}); err != nil {
		t.Fatalf("second bid: %v", err)
	}

	// All custody (35) is owed: 15 escrowed to bob, 20 held as the live
	// highest bid. Recovery of any of it is refused.
	if err := fx.svc.RecoverToken(ctx, "vaultkeeper", "credits", dec("1")); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("recover owed funds error = %v, want ErrInvalidAmount", err)
	}

	// Settlement at a 10% fee leaves 2 behind as free custody.
	fx.clock.Advance(2 * time.Hour)
	if err := fx.svc.EndAuction(ctx, auctionID); err != nil {
		t.Fatalf("EndAuction: %v", err)
	}
	if err := fx.svc.RecoverToken(ctx, "vaultkeeper", "credits", dec("3")); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("over-recovery error = %v, want ErrInvalidAmount", err)
	}
	if err := fx.svc.RecoverToken(ctx, "vaultkeeper", "credits", dec("2")); err != nil {
		t.Fatalf("recover free custody: %v", err)
	}
	if got := fx.payments.Balance("vaultkeeper", "credits"); !got.Equal(dec("2")) {
		t.Fatalf("recovered amount = %s, want 2", got)
	}

	if err := fx.svc.RecoverToken(ctx, "mallory", "credits", dec("1")); !errors.Is(err, errNoRole) {
		t.Fatalf("unauthorized recovery error = %v, want role error", err)
	}
}
