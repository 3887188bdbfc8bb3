package ports

import (
	"context"
	"time"

	contractsv1 "gavel/contracts/events/v1"
	"gavel/contexts/operations/system-guard/domain/entities"
)

type GuardStore interface {
	GetSystemStatus(ctx context.Context) (entities.SystemStatus, error)
	PutSystemStatus(ctx context.Context, status entities.SystemStatus) error

	GetThrottle(ctx context.Context, actorID string) (entities.ThrottleRecord, bool, error)
	PutThrottle(ctx context.Context, actorID string, record entities.ThrottleRecord) error

	GetLastBidAt(ctx context.Context, actorID string) (time.Time, bool, error)
	PutLastBidAt(ctx context.Context, actorID string, at time.Time) error

	IsBlacklisted(ctx context.Context, bidderID string) (bool, error)
	AddBlacklist(ctx context.Context, bidderID string) error
}

// RoleChecker is the access-control membership check consumed by admin-gated
// guard mutations.
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
