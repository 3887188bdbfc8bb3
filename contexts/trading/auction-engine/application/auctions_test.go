package application

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
)

func TestCreateAuctionValidation(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()

	base := CreateAuctionCommand{
		Owner:        "alice",
		AssetID:      "nft-7",
		PaymentAsset: "credits",
		ReservePrice: dec("10"),
		BuyNowPrice:  dec("100"),
		MinIncrement: dec("1"),
		Duration:     time.Hour,
	}

	cmd := base
	cmd.Owner = " "
	if _, err := fx.svc.CreateAuction(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidAuction) {
		t.Fatalf("blank owner error = %v, want ErrInvalidAuction", err)
	}

	cmd = base
	cmd.Duration = 0
	if _, err := fx.svc.CreateAuction(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("zero duration error = %v, want ErrInvalidAmount", err)
	}

	cmd = base
	cmd.ReservePrice = dec("100")
	if _, err := fx.svc.CreateAuction(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("reserve >= buy-now error = %v, want ErrInvalidAmount", err)
	}

	cmd = base
	cmd.ReservePrice = dec("-1")
	if _, err := fx.svc.CreateAuction(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("negative reserve error = %v, want ErrInvalidAmount", err)
	}
}

func TestCreateAuctionCustodyFailureAborts(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()

	// Owner never held the asset, so taking custody fails.
	_, err := fx.svc.CreateAuction(ctx, CreateAuctionCommand{
		Owner:        "alice",
		AssetID:      "nft-7",
		PaymentAsset: "credits",
		ReservePrice: dec("10"),
		BuyNowPrice:  dec("100"),
		MinIncrement: dec("1"),
		Duration:     time.Hour,
	})
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("custody failure error = %v, want ErrTransferFailed", err)
	}

	metrics, err := fx.svc.GetSystemMetrics(ctx)
	if err != nil {
		t.Fatalf("GetSystemMetrics: %v", err)
	}
	if metrics.TotalAuctions != 0 {
		t.Fatalf("aborted create counted in metrics: %d", metrics.TotalAuctions)
	}
}

func TestEndAuctionRequiresDeadlineAndBids(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.EndAuction(ctx, auctionID); !errors.Is(err, domainerrors.ErrAuctionNotEnded) {
		t.Fatalf("early end error = %v, want ErrAuctionNotEnded", err)
	}
	if err := fx.svc.EndAuction(ctx, 404); !errors.Is(err, domainerrors.ErrInvalidAuction) {
		t.Fatalf("unknown auction error = %v, want ErrInvalidAuction", err)
	}

	// Past the deadline but without bids there is nothing to settle.
	fx.clock.Advance(2 * time.Hour)
	if err := fx.svc.EndAuction(ctx, auctionID); !errors.Is(err, domainerrors.ErrInvalidAuction) {
		t.Fatalf("no-bid end error = %v, want ErrInvalidAuction", err)
	}
}

func TestEndAuctionSettles(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	if err := fx.store.PutPlatformFeeBps(ctx, 500); err != nil {
		t.Fatalf("seed platform fee: %v", err)
	}
	fx.payments.Credit("bob", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("40")}); err != nil {
		t.Fatalf("bid: %v", err)
	}
	fx.clock.Advance(2 * time.Hour)
	if err := fx.svc.EndAuction(ctx, auctionID); err != nil {
		t.Fatalf("EndAuction: %v", err)
	}

	if got := fx.payments.Balance("bob", "nft-7"); !got.Equal(dec("1")) {
		t.Fatalf("winner asset balance = %s, want 1", got)
	}
	// 5% fee on 40 leaves 38 for the owner.
	if got := fx.payments.Balance("alice", "credits"); !got.Equal(dec("38")) {
		t.Fatalf("owner proceeds = %s, want 38", got)
	}
	if err := fx.svc.EndAuction(ctx, auctionID); !errors.Is(err, domainerrors.ErrAuctionNotActive) {
		t.Fatalf("double end error = %v, want ErrAuctionNotActive", err)
	}
}

func TestEndAuctionTransferFailureLeavesAuctionLive(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("40")}); err != nil {
		t.Fatalf("bid: %v", err)
	}
	fx.clock.Advance(2 * time.Hour)

	fx.payments.FailTransfers("nft-7", true)
	if err := fx.svc.EndAuction(ctx, auctionID); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("end during outage error = %v, want ErrTransferFailed", err)
	}
	auction, err := fx.svc.GetAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetAuction: %v", err)
	}
	if !auction.Active {
		t.Fatal("auction deactivated despite failed settlement")
	}

	fx.payments.FailTransfers("nft-7", false)
	if err := fx.svc.EndAuction(ctx, auctionID); err != nil {
		t.Fatalf("retry end: %v", err)
	}
}

func TestCancelAuction(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")}); err != nil {
		t.Fatalf("bid: %v", err)
	}

	if err := fx.svc.CancelAuction(ctx, auctionID, "mallory"); !errors.Is(err, errNoRole) {
		t.Fatalf("unauthorized cancel error = %v, want role error", err)
	}
	if err := fx.svc.CancelAuction(ctx, auctionID, "alice"); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}

	// The asset returns home and the held bid becomes withdrawable escrow.
	if got := fx.payments.Balance("alice", "nft-7"); !got.Equal(dec("1")) {
		t.Fatalf("owner asset balance = %s, want 1", got)
	}
	withdrawn, err := fx.svc.WithdrawFunds(ctx, auctionID, "bob")
	if err != nil {
		t.Fatalf("withdraw after cancel: %v", err)
	}
	if !withdrawn.Equal(dec("15")) {
		t.Fatalf("withdrawal after cancel = %s, want 15", withdrawn)
	}

	if err := fx.svc.CancelAuction(ctx, auctionID, "alice"); !errors.Is(err, domainerrors.ErrAuctionNotActive) {
		t.Fatalf("double cancel error = %v, want ErrAuctionNotActive", err)
	}
	err = fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("20")})
	if !errors.Is(err, domainerrors.ErrAuctionNotActive) {
		t.Fatalf("bid on canceled auction error = %v, want ErrAuctionNotActive", err)
	}
}

func TestCancelByAuctioneerRole(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.CancelAuction(ctx, auctionID, "ops"); err != nil {
		t.Fatalf("auctioneer cancel: %v", err)
	}
	auction, err := fx.svc.GetAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetAuction: %v", err)
	}
	if !auction.Canceled || auction.Active {
		t.Fatalf("auction state after cancel = active=%v canceled=%v", auction.Active, auction.Canceled)
	}
}
