package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
	"gavel/contexts/trading/auction-engine/ports"

	"github.com/shopspring/decimal"
)

const (
	roleAuctioneer = "auctioneer"
	roleRecovery   = "recovery"
	roleAdmin      = "admin"
)

// maxFeeBps caps the platform fee at 10% in basis points.
const maxFeeBps = 1000

// Service is the auction engine write model. Gated commands run
// validate-then-commit under a single engine mutex: every precondition,
// including throttle quota, is evaluated before any state mutates, and a
// late failure leaves no partial effects.
type Service struct {
	mu sync.Mutex

	Repo     ports.AuctionRepository
	Payments ports.PaymentAdapter
	Guard    ports.Guard
	Roles    ports.RoleChecker
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (s *Service) appendEvent(ctx context.Context, eventType string, partitionKey string, occurredAt time.Time, data map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SourceService: "auction-engine",
		SchemaVersion: 1,
		PartitionKey:  partitionKey,
		Data:          payload,
	})
}

// updateMetrics applies a rollup delta and emits the metrics event.
func (s *Service) updateMetrics(ctx context.Context, now time.Time, deltaTotal int64, deltaActive int64, deltaVolume decimal.Decimal) error {
	metrics, err := s.Repo.GetMetrics(ctx)
	if err != nil {
		return err
	}
	metrics.TotalAuctions += deltaTotal
	metrics.ActiveAuctions += deltaActive
	metrics.TotalVolume = metrics.TotalVolume.Add(deltaVolume)
	metrics.LastUpdateAt = now
	if err := s.Repo.PutMetrics(ctx, metrics); err != nil {
		return err
	}
	return s.appendEvent(ctx, "auction.metrics_updated", "metrics", now, map[string]any{
		"total_auctions":  metrics.TotalAuctions,
		"active_auctions": metrics.ActiveAuctions,
		"total_volume":    metrics.TotalVolume.String(),
	})
}

func (s *Service) platformFeeBps(ctx context.Context) (int64, error) {
	bps, err := s.Repo.GetPlatformFeeBps(ctx)
	if err != nil {
		return 0, err
	}
	if bps < 0 || bps > maxFeeBps {
		return 0, domainerrors.ErrInvalidFeePercentage
	}
	return bps, nil
}

// feeSplit returns (fee, net) for a gross amount under the given fee rate.
func feeSplit(gross decimal.Decimal, bps int64) (decimal.Decimal, decimal.Decimal) {
	fee := gross.Mul(decimal.NewFromInt(bps)).Div(decimal.NewFromInt(10000))
	return fee, gross.Sub(fee)
}

func auctionKey(auctionID int64) string {
	return "auction-" + strconv.FormatInt(auctionID, 10)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
