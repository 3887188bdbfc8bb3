package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"gavel/contexts/trading/auction-engine/domain/entities"
	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
)

// TestAuctionLifecycle walks one auction from creation through competitive
// bidding, an anti-snipe extension, a buy-now close, and escrow withdrawal.
func TestAuctionLifecycle(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()

	if err := fx.store.PutPlatformFeeBps(ctx, 250); err != nil {
		t.Fatalf("seed platform fee: %v", err)
	}
	fx.payments.Credit("bob", "credits", dec("200"))
	fx.payments.Credit("carol", "credits", dec("500"))

	auctionID := mustCreateAuction(t, fx, "alice")

	// Opening bid clears the reserve.
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")}); err != nil {
		t.Fatalf("first bid: %v", err)
	}

	// A higher bid displaces bob into escrow.
	fx.clock.Advance(10 * time.Second)
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "carol", Amount: dec("20")}); err != nil {
		t.Fatalf("second bid: %v", err)
	}
	escrowed, err := fx.svc.EscrowBalance(ctx, auctionID, "bob")
	if err != nil {
		t.Fatalf("EscrowBalance: %v", err)
	}
	if !escrowed.Equal(dec("15")) {
		t.Fatalf("bob escrow = %s, want 15", escrowed)
	}

	// A bid below highest+increment is rejected without touching anything.
	fx.clock.Advance(10 * time.Second)
	err = fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "dave", Amount: dec("12")})
	if !errors.Is(err, domainerrors.ErrBidTooLow) {
		t.Fatalf("low bid error = %v, want ErrBidTooLow", err)
	}

	// A bid inside the closing window extends the deadline.
	fx.clock.Set(testEpoch.Add(3350 * time.Second))
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("30")}); err != nil {
		t.Fatalf("snipe-window bid: %v", err)
	}
	auction, err := fx.svc.GetAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetAuction: %v", err)
	}
	wantEnd := testEpoch.Add(3600*time.Second + 2*time.Minute)
	if !auction.EndTime.Equal(wantEnd) {
		t.Fatalf("extended end = %v, want %v", auction.EndTime, wantEnd)
	}

	// Buy-now closes the auction inside the same bid.
	fx.clock.Set(testEpoch.Add(3400 * time.Second))
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "carol", Amount: dec("100")}); err != nil {
		t.Fatalf("buy-now bid: %v", err)
	}
	auction, err = fx.svc.GetAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetAuction after close: %v", err)
	}
	if auction.Active {
		t.Fatal("auction still active after buy-now")
	}
	if auction.HighestBidder != "carol" || !auction.HighestBid.Equal(dec("100")) {
		t.Fatalf("winner = %s/%s, want carol/100", auction.HighestBidder, auction.HighestBid)
	}
	if got := fx.payments.Balance("carol", "nft-7"); !got.Equal(dec("1")) {
		t.Fatalf("carol asset balance = %s, want 1", got)
	}
	// 2.5% of 100 stays behind as fee; 97.5 goes to the owner.
	if got := fx.payments.Balance("alice", "credits"); !got.Equal(dec("97.5")) {
		t.Fatalf("alice proceeds = %s, want 97.5", got)
	}

	// Outbid parties withdraw exactly once.
	withdrawn, err := fx.svc.WithdrawFunds(ctx, auctionID, "bob")
	if err != nil {
		t.Fatalf("bob withdraw: %v", err)
	}
	if !withdrawn.Equal(dec("45")) {
		t.Fatalf("bob withdrawal = %s, want 45", withdrawn)
	}
	if got := fx.payments.Balance("bob", "credits"); !got.Equal(dec("200")) {
		t.Fatalf("bob final balance = %s, want 200", got)
	}
	if _, err := fx.svc.WithdrawFunds(ctx, auctionID, "bob"); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("second withdraw error = %v, want ErrInvalidAmount", err)
	}
	withdrawn, err = fx.svc.WithdrawFunds(ctx, auctionID, "carol")
	if err != nil {
		t.Fatalf("carol withdraw: %v", err)
	}
	if !withdrawn.Equal(dec("20")) {
		t.Fatalf("carol withdrawal = %s, want 20", withdrawn)
	}

	// The bid ledger is append-only and indexable.
	count, err := fx.svc.GetBidCount(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetBidCount: %v", err)
	}
	if count != 4 {
		t.Fatalf("bid count = %d, want 4", count)
	}
	bid, err := fx.svc.GetBid(ctx, auctionID, 1)
	if err != nil {
		t.Fatalf("GetBid: %v", err)
	}
	if bid.Bidder != "carol" || !bid.Amount.Equal(dec("20")) {
		t.Fatalf("bid[1] = %s/%s, want carol/20", bid.Bidder, bid.Amount)
	}
	if _, err := fx.svc.GetBid(ctx, auctionID, 9); !errors.Is(err, domainerrors.ErrBidIndexOutOfRange) {
		t.Fatalf("out-of-range bid error = %v, want ErrBidIndexOutOfRange", err)
	}

	metrics, err := fx.svc.GetSystemMetrics(ctx)
	if err != nil {
		t.Fatalf("GetSystemMetrics: %v", err)
	}
	if metrics.TotalAuctions != 1 || metrics.ActiveAuctions != 0 {
		t.Fatalf("metrics counts = %d/%d, want 1/0", metrics.TotalAuctions, metrics.ActiveAuctions)
	}
	if !metrics.TotalVolume.Equal(dec("165")) {
		t.Fatalf("total volume = %s, want 165", metrics.TotalVolume)
	}

	// Every committed write operation consumed throttle quota exactly once.
	if fx.guard.recordedActions != 4 {
		t.Fatalf("recorded actions = %d, want 4", fx.guard.recordedActions)
	}
	if fx.guard.cooldownsArmed != 3 {
		t.Fatalf("cooldowns armed = %d, want 3", fx.guard.cooldownsArmed)
	}
}

func TestFirstBidMustClearReserve(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("9")})
	if !errors.Is(err, domainerrors.ErrBidTooLow) {
		t.Fatalf("below-reserve error = %v, want ErrBidTooLow", err)
	}
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("10")}); err != nil {
		t.Fatalf("at-reserve bid: %v", err)
	}
}

func TestNativeAuctionRequiresExactPayment(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("alice", "nft-7", dec("1"))
	fx.payments.Credit("bob", entities.NativeAsset, dec("50"))
	auctionID, err := fx.svc.CreateAuction(ctx, CreateAuctionCommand{
		Owner:        "alice",
		AssetID:      "nft-7",
		ReservePrice: dec("10"),
		BuyNowPrice:  dec("100"),
		MinIncrement: dec("1"),
		Duration:     time.Hour,
	})
	if err != nil {
		t.Fatalf("CreateAuction: %v", err)
	}

	err = fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15"), PaidAmount: dec("14")})
	if !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("short payment error = %v, want ErrInvalidAmount", err)
	}
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15"), PaidAmount: dec("15")}); err != nil {
		t.Fatalf("exact payment bid: %v", err)
	}
	// The attached value lands in custody, not in limbo.
	if got := fx.payments.Balance("bob", entities.NativeAsset); !got.Equal(dec("35")) {
		t.Fatalf("bob native balance = %s, want 35", got)
	}
	if got := fx.payments.Balance("vault", entities.NativeAsset); !got.Equal(dec("15")) {
		t.Fatalf("vault native balance = %s, want 15", got)
	}
}

// TestNativeAuctionSettlement runs a native-denominated auction all the way
// through: bid, displacement, deadline close, owner proceeds, and loser
// withdrawal all settle out of the custodied native funds.
func TestNativeAuctionSettlement(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()

	if err := fx.store.PutPlatformFeeBps(ctx, 250); err != nil {
		t.Fatalf("seed platform fee: %v", err)
	}
	fx.payments.Credit("alice", "nft-7", dec("1"))
	fx.payments.Credit("bob", entities.NativeAsset, dec("100"))
	fx.payments.Credit("carol", entities.NativeAsset, dec("100"))

	auctionID, err := fx.svc.CreateAuction(ctx, CreateAuctionCommand{
		Owner:        "alice",
		AssetID:      "nft-7",
		ReservePrice: dec("10"),
		BuyNowPrice:  dec("100"),
		MinIncrement: dec("1"),
		Duration:     time.Hour,
	})
	if err != nil {
		t.Fatalf("CreateAuction: %v", err)
	}

	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15"), PaidAmount: dec("15")}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	fx.clock.Advance(10 * time.Second)
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "carol", Amount: dec("20"), PaidAmount: dec("20")}); err != nil {
		t.Fatalf("second bid: %v", err)
	}

	fx.clock.Advance(2 * time.Hour)
	if err := fx.svc.EndAuction(ctx, auctionID); err != nil {
		t.Fatalf("EndAuction: %v", err)
	}

	if got := fx.payments.Balance("carol", "nft-7"); !got.Equal(dec("1")) {
		t.Fatalf("carol asset balance = %s, want 1", got)
	}
	// 2.5% of 20 stays behind as fee; 19.5 goes to the owner.
	if got := fx.payments.Balance("alice", entities.NativeAsset); !got.Equal(dec("19.5")) {
		t.Fatalf("alice proceeds = %s, want 19.5", got)
	}

	withdrawn, err := fx.svc.WithdrawFunds(ctx, auctionID, "bob")
	if err != nil {
		t.Fatalf("bob withdraw: %v", err)
	}
	if !withdrawn.Equal(dec("15")) {
		t.Fatalf("bob withdrawal = %s, want 15", withdrawn)
	}
	if got := fx.payments.Balance("bob", entities.NativeAsset); !got.Equal(dec("100")) {
		t.Fatalf("bob final native balance = %s, want 100", got)
	}
}

func TestBidRejectionsLeaveNoTrace(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("200"))
	auctionID := mustCreateAuction(t, fx, "alice")
	recordedAfterCreate := fx.guard.recordedActions

	fx.guard.blacklisted["mallory"] = true
	err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "mallory", Amount: dec("15")})
	if !errors.Is(err, domainerrors.ErrBlacklistedBidder) {
		t.Fatalf("blacklisted bid error = %v, want ErrBlacklistedBidder", err)
	}

	// A failing funds pull aborts before any internal mutation.
	fx.payments.FailTransfers("credits", true)
	err = fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")})
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("pull failure error = %v, want ErrTransferFailed", err)
	}
	fx.payments.FailTransfers("credits", false)

	count, err := fx.svc.GetBidCount(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetBidCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("bid count after rejections = %d, want 0", count)
	}
	auction, err := fx.svc.GetAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetAuction: %v", err)
	}
	if auction.HasBids() {
		t.Fatal("highest bidder set after rejected bids")
	}
	if fx.guard.recordedActions != recordedAfterCreate {
		t.Fatalf("rejected bids consumed throttle quota: %d -> %d", recordedAfterCreate, fx.guard.recordedActions)
	}
	if fx.guard.cooldownsArmed != 0 {
		t.Fatalf("rejected bids armed cooldown %d times", fx.guard.cooldownsArmed)
	}
}

func TestGuardBlocksBidsUpFront(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	auctionID := mustCreateAuction(t, fx, "alice")

	fx.guard.operableErr = errGuardBlocked
	err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")})
	if !errors.Is(err, errGuardBlocked) {
		t.Fatalf("paused bid error = %v, want guard error", err)
	}
	fx.guard.operableErr = nil

	fx.guard.cooldownErr = errGuardBlocked
	err = fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")})
	if !errors.Is(err, errGuardBlocked) {
		t.Fatalf("cooldown bid error = %v, want guard error", err)
	}
}

func TestBidAfterDeadline(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("50"))
	auctionID := mustCreateAuction(t, fx, "alice")

	fx.clock.Advance(time.Hour)
	err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")})
	if !errors.Is(err, domainerrors.ErrAuctionEnded) {
		t.Fatalf("late bid error = %v, want ErrAuctionEnded", err)
	}
}

func TestRepeatedExtensionKeepsAuctionLive(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("500"))
	fx.payments.Credit("carol", "credits", dec("500"))
	auctionID := mustCreateAuction(t, fx, "alice")

	// Alternate bids inside the closing window; each one pushes the deadline.
	fx.clock.Set(testEpoch.Add(3400 * time.Second))
	bidders := []string{"bob", "carol", "bob"}
	amount := dec("15")
	for _, bidder := range bidders {
		if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: bidder, Amount: amount}); err != nil {
			t.Fatalf("bid by %s: %v", bidder, err)
		}
		amount = amount.Add(dec("5"))
		fx.clock.Advance(100 * time.Second)
	}

	auction, err := fx.svc.GetAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("GetAuction: %v", err)
	}
	wantEnd := testEpoch.Add(3600*time.Second + 3*2*time.Minute)
	if !auction.EndTime.Equal(wantEnd) {
		t.Fatalf("end after 3 extensions = %v, want %v", auction.EndTime, wantEnd)
	}
}

func TestWithdrawFailureRestoresEscrow(t *testing.T) {
	fx := newTestEngine(t)
	ctx := context.Background()
	fx.payments.Credit("bob", "credits", dec("100"))
	fx.payments.Credit("carol", "credits", dec("100"))
	auctionID := mustCreateAuction(t, fx, "alice")

	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "bob", Amount: dec("15")}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	if err := fx.svc.PlaceBid(ctx, PlaceBidCommand{AuctionID: auctionID, Bidder: "carol", Amount: dec("20")}); err != nil {
		t.Fatalf("second bid: %v", err)
	}

	fx.payments.FailTransfers("credits", true)
	if _, err := fx.svc.WithdrawFunds(ctx, auctionID, "bob"); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("withdraw during outage error = %v, want ErrTransferFailed", err)
	}
	fx.payments.FailTransfers("credits", false)

	balance, err := fx.svc.EscrowBalance(ctx, auctionID, "bob")
	if err != nil {
		t.Fatalf("EscrowBalance: %v", err)
	}
	if !balance.Equal(dec("15")) {
		t.Fatalf("escrow after failed withdraw = %s, want 15", balance)
	}
	if _, err := fx.svc.WithdrawFunds(ctx, auctionID, "bob"); err != nil {
		t.Fatalf("retry withdraw: %v", err)
	}
}
