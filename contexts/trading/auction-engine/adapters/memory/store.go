package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gavel/contexts/trading/auction-engine/domain/entities"
	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
	"gavel/contexts/trading/auction-engine/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store is the in-memory auction repository used by tests and local wiring.
type Store struct {
	mu sync.RWMutex

	nextAuctionID int64
	auctions      map[int64]entities.Auction
	bids          map[int64][]entities.Bid
	escrow        map[int64]map[string]decimal.Decimal
	custody       map[string]decimal.Decimal
	feeBps        int64
	metrics       entities.SystemMetrics
	outbox        map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		auctions: make(map[int64]entities.Auction),
		bids:     make(map[int64][]entities.Bid),
		escrow:   make(map[int64]map[string]decimal.Decimal),
		custody:  make(map[string]decimal.Decimal),
		metrics:  entities.SystemMetrics{TotalVolume: decimal.Zero},
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) NextAuctionID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAuctionID++
	return s.nextAuctionID, nil
}

func (s *Store) SaveAuction(_ context.Context, auction entities.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if auction.ID <= 0 {
		return domainerrors.ErrInvalidAuction
	}
	s.auctions[auction.ID] = auction
	return nil
}

func (s *Store) GetAuction(_ context.Context, auctionID int64) (entities.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return entities.Auction{}, domainerrors.ErrInvalidAuction
	}
	return auction, nil
}

func (s *Store) AppendBid(_ context.Context, auctionID int64, bid entities.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[auctionID] = append(s.bids[auctionID], bid)
	return nil
}

func (s *Store) CountBids(_ context.Context, auctionID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bids[auctionID]), nil
}

func (s *Store) GetBid(_ context.Context, auctionID int64, index int) (entities.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledger := s.bids[auctionID]
	if index < 0 || index >= len(ledger) {
		return entities.Bid{}, domainerrors.ErrBidIndexOutOfRange
	}
	return ledger[index], nil
}

func (s *Store) GetEscrow(_ context.Context, auctionID int64, bidder string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byBidder, ok := s.escrow[auctionID]
	if !ok {
		return decimal.Zero, nil
	}
	balance, ok := byBidder[bidder]
	if !ok {
		return decimal.Zero, nil
	}
	return balance, nil
}

func (s *Store) PutEscrow(_ context.Context, auctionID int64, bidder string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bidder == "" || amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	byBidder, ok := s.escrow[auctionID]
	if !ok {
		byBidder = make(map[string]decimal.Decimal)
		s.escrow[auctionID] = byBidder
	}
	byBidder[bidder] = amount
	return nil
}

func (s *Store) GetCustody(_ context.Context, asset string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.custody[asset]
	if !ok {
		return decimal.Zero, nil
	}
	return balance, nil
}

func (s *Store) PutCustody(_ context.Context, asset string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset == "" {
		return domainerrors.ErrInvalidAmount
	}
	s.custody[asset] = amount
	return nil
}

func (s *Store) OwedForAsset(_ context.Context, asset string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owed := decimal.Zero
	for auctionID, auction := range s.auctions {
		if auction.PaymentAsset != asset {
			continue
		}
		for _, balance := range s.escrow[auctionID] {
			owed = owed.Add(balance)
		}
		if auction.Active && !auction.Canceled && auction.HasBids() {
			owed = owed.Add(auction.HighestBid)
		}
	}
	return owed, nil
}

func (s *Store) GetPlatformFeeBps(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feeBps, nil
}

func (s *Store) PutPlatformFeeBps(_ context.Context, bps int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bps < 0 {
		return domainerrors.ErrInvalidFeePercentage
	}
	s.feeBps = bps
	return nil
}

func (s *Store) GetMetrics(_ context.Context) (entities.SystemMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics, nil
}

func (s *Store) PutMetrics(_ context.Context, metrics entities.SystemMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if envelope.EventID == "" {
		return domainerrors.ErrInvalidEvent
	}
	if existing, ok := s.outbox[envelope.EventID]; ok {
		if !bytes.Equal(existing.Message.Payload, payload) {
			return domainerrors.ErrEventConflict
		}
		return nil
	}
	s.outbox[envelope.EventID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrInvalidEvent
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[outboxID] = row
	return nil
}

// PendingEventTypes lists pending outbox event types in creation order. Test
// helper.
func (s *Store) PendingEventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	types := make([]string, 0, len(items))
	for _, item := range items {
		types = append(types, item.EventType)
	}
	return types
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
