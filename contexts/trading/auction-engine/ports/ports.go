package ports

import (
	"context"
	"time"

	contractsv1 "gavel/contracts/events/v1"
	"gavel/contexts/trading/auction-engine/domain/entities"

	"github.com/shopspring/decimal"
)

// AuctionRepository owns auctions, the append-only bid ledger, escrow
// balances, the custody ledger, the platform fee setting, and the metrics
// rollup.
type AuctionRepository interface {
	NextAuctionID(ctx context.Context) (int64, error)
	SaveAuction(ctx context.Context, auction entities.Auction) error
	GetAuction(ctx context.Context, auctionID int64) (entities.Auction, error)

	AppendBid(ctx context.Context, auctionID int64, bid entities.Bid) error
	CountBids(ctx context.Context, auctionID int64) (int, error)
	GetBid(ctx context.Context, auctionID int64, index int) (entities.Bid, error)

	GetEscrow(ctx context.Context, auctionID int64, bidder string) (decimal.Decimal, error)
	PutEscrow(ctx context.Context, auctionID int64, bidder string, amount decimal.Decimal) error

	GetCustody(ctx context.Context, asset string) (decimal.Decimal, error)
	PutCustody(ctx context.Context, asset string, amount decimal.Decimal) error
	// OwedForAsset is the total the engine owes bidders in one payment asset:
	// all escrow entries plus the held highest bid of every live auction
	// denominated in that asset.
	OwedForAsset(ctx context.Context, asset string) (decimal.Decimal, error)

	GetPlatformFeeBps(ctx context.Context) (int64, error)
	PutPlatformFeeBps(ctx context.Context, bps int64) error

	GetMetrics(ctx context.Context) (entities.SystemMetrics, error)
	PutMetrics(ctx context.Context, metrics entities.SystemMetrics) error
}

// PaymentAdapter executes actual asset and fund transfers on instruction from
// the engine. Every adapter failure surfaces as ErrTransferFailed and aborts
// the enclosing operation.
type PaymentAdapter interface {
	Custody(ctx context.Context, asset string, from string, amount decimal.Decimal) error
	Release(ctx context.Context, asset string, to string, amount decimal.Decimal) error
	Pull(ctx context.Context, paymentAsset string, from string, amount decimal.Decimal) error
}

// Guard is the defensive-control surface consumed by gated commands. Check
// methods are read-only; Record/Arm commit throttle state after the guarded
// operation fully applies.
type Guard interface {
	AssertOperable(ctx context.Context) error
	CheckAction(ctx context.Context, actorID string, t time.Time) error
	RecordAction(ctx context.Context, actorID string, t time.Time) error
	CheckBidCooldown(ctx context.Context, actorID string, t time.Time) error
	ArmBidCooldown(ctx context.Context, actorID string, t time.Time) error
	IsBlacklisted(ctx context.Context, bidderID string) (bool, error)
}

// RoleChecker is the access-control membership check for role-gated commands.
type RoleChecker interface {
	RequireRole(ctx context.Context, actorID string, role string) error
	RequireAnyRole(ctx context.Context, actorID string, roles ...string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher is the bus surface the outbox relay publishes to.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
