package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gavel/contexts/operations/system-guard/domain/entities"
	domainerrors "gavel/contexts/operations/system-guard/domain/errors"
	"gavel/contexts/operations/system-guard/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store holds guard state in memory. Throttle records are process-local by
// design; they are created lazily and never destroyed.
type Store struct {
	mu sync.RWMutex

	status    entities.SystemStatus
	throttle  map[string]entities.ThrottleRecord
	lastBidAt map[string]time.Time
	blacklist map[string]struct{}
	outbox    map[string]outboxRecord
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		status:    entities.SystemStatus{State: entities.StateActive},
		throttle:  make(map[string]entities.ThrottleRecord),
		lastBidAt: make(map[string]time.Time),
		blacklist: make(map[string]struct{}),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) GetSystemStatus(_ context.Context) (entities.SystemStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, nil
}

func (s *Store) PutSystemStatus(_ context.Context, status entities.SystemStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return nil
}

func (s *Store) GetThrottle(_ context.Context, actorID string) (entities.ThrottleRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.throttle[actorID]
	return record, ok, nil
}

func (s *Store) PutThrottle(_ context.Context, actorID string, record entities.ThrottleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if actorID == "" {
		return domainerrors.ErrInvalidActorID
	}
	s.throttle[actorID] = record
	return nil
}

func (s *Store) GetLastBidAt(_ context.Context, actorID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.lastBidAt[actorID]
	return at, ok, nil
}

func (s *Store) PutLastBidAt(_ context.Context, actorID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if actorID == "" {
		return domainerrors.ErrInvalidActorID
	}
	s.lastBidAt[actorID] = at
	return nil
}

func (s *Store) IsBlacklisted(_ context.Context, bidderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blacklist[bidderID]
	return ok, nil
}

func (s *Store) AddBlacklist(_ context.Context, bidderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bidderID == "" {
		return domainerrors.ErrInvalidActorID
	}
	s.blacklist[bidderID] = struct{}{}
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
		return domainerrors.ErrNotFound
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
