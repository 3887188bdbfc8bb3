package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"gavel/contexts/trading/auction-engine/adapters/memory"

	"github.com/shopspring/decimal"
)

var (
	errNoRole       = errors.New("actor lacks required role")
	errGuardBlocked = errors.New("guard blocked")
)

type fakeRoles struct {
	grants map[string][]string
}

func (f fakeRoles) RequireRole(_ context.Context, actorID string, role string) error {
	for _, held := range f.grants[actorID] {
		if held == role {
			return nil
		}
	}
	return errNoRole
}

func (f fakeRoles) RequireAnyRole(ctx context.Context, actorID string, roleNames ...string) error {
	for _, role := range roleNames {
		if f.RequireRole(ctx, actorID, role) == nil {
			return nil
		}
	}
	return errNoRole
}

type fakeGuard struct {
	operableErr error
	actionErr   error
	cooldownErr error
	blacklisted map[string]bool

	recordedActions int
	cooldownsArmed  int
}

func (g *fakeGuard) AssertOperable(_ context.Context) error {
	return g.operableErr
}

func (g *fakeGuard) CheckAction(_ context.Context, _ string, _ time.Time) error {
	return g.actionErr
}

func (g *fakeGuard) RecordAction(_ context.Context, _ string, _ time.Time) error {
	g.recordedActions++
	return nil
}

func (g *fakeGuard) CheckBidCooldown(_ context.Context, _ string, _ time.Time) error {
	return g.cooldownErr
}

func (g *fakeGuard) ArmBidCooldown(_ context.Context, _ string, _ time.Time) error {
	g.cooldownsArmed++
	return nil
}

func (g *fakeGuard) IsBlacklisted(_ context.Context, bidderID string) (bool, error) {
	return g.blacklisted[bidderID], nil
}

type engineFixture struct {
	svc      *Service
	store    *memory.Store
	payments *memory.PaymentLedger
	clock    *memory.ManualClock
	guard    *fakeGuard
}

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) engineFixture {
	t.Helper()
	store := memory.NewStore()
	payments := memory.NewPaymentLedger()
	clock := memory.NewManualClock(testEpoch)
	guard := &fakeGuard{blacklisted: map[string]bool{}}
	roles := fakeRoles{grants: map[string][]string{
		"root":        {"admin"},
		"ops":         {"auctioneer"},
		"vaultkeeper": {"recovery"},
	}}
	svc := &Service{
		Repo:     store,
		Payments: payments,
		Guard:    guard,
		Roles:    roles,
		Outbox:   store,
		Clock:    clock,
		IDGen:    store,
	}
	return engineFixture{svc: svc, store: store, payments: payments, clock: clock, guard: guard}
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// mustCreateAuction seeds the owner with the auctioned asset and registers a
// standard credits-denominated auction.
func mustCreateAuction(t *testing.T, fx engineFixture, owner string) int64 {
	t.Helper()
	fx.payments.Credit(owner, "nft-7", dec("1"))
	auctionID, err := fx.svc.CreateAuction(context.Background(), CreateAuctionCommand{
		Owner:           owner,
		AssetID:         "nft-7",
		PaymentAsset:    "credits",
		ReservePrice:    dec("10"),
		BuyNowPrice:     dec("100"),
		MinIncrement:    dec("1"),
		Duration:        time.Hour,
		TimeExtension:   2 * time.Minute,
		ExtensionWindow: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("CreateAuction: %v", err)
	}
	return auctionID
}

func TestFeeSplit(t *testing.T) {
	fee, net := feeSplit(dec("200"), 250)
	if !fee.Equal(dec("5")) {
		t.Fatalf("fee = %s, want 5", fee)
	}
	if !net.Equal(dec("195")) {
		t.Fatalf("net = %s, want 195", net)
	}

	fee, net = feeSplit(dec("100"), 0)
	if !fee.IsZero() || !net.Equal(dec("100")) {
		t.Fatalf("zero-bps split = (%s, %s), want (0, 100)", fee, net)
	}
}
