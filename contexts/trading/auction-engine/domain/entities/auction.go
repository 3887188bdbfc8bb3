package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// NativeAsset is the payment-asset sentinel for the platform's native
// currency. Token-denominated auctions carry the token identifier instead.
const NativeAsset = "native"

// Auction is one time-bounded competition for an asset. Auctions are never
// deleted, only deactivated; identity persists for audit and queries.
type Auction struct {
	ID           int64
	Owner        string
	AssetID      string
	PaymentAsset string

	ReservePrice decimal.Decimal
	BuyNowPrice  decimal.Decimal
	MinIncrement decimal.Decimal

	TimeExtension   time.Duration
	ExtensionWindow time.Duration

	// EndTime is the only field bidding mutates (anti-snipe extension).
	EndTime  time.Time
	Active   bool
	Canceled bool

	HighestBidder string
	HighestBid    decimal.Decimal

	CreatedAt time.Time
}

// HasBids reports whether at least one bid was accepted.
func (a Auction) HasBids() bool {
	return a.HighestBidder != ""
}

// Bid is one append-only ledger entry. Only the Withdrawn flag may change
// after insertion.
type Bid struct {
	Bidder    string
	Amount    decimal.Decimal
	PlacedAt  time.Time
	Withdrawn bool
}

// SystemMetrics is the process-wide rollup. Purely derived data, mutated only
// as a side effect of registry/ledger operations.
type SystemMetrics struct {
	TotalAuctions  int64
	ActiveAuctions int64
	TotalVolume    decimal.Decimal
	LastUpdateAt   time.Time
}
