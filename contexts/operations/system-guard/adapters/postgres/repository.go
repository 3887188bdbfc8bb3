package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gavel/contexts/operations/system-guard/domain/entities"
	domainerrors "gavel/contexts/operations/system-guard/domain/errors"
	"gavel/contexts/operations/system-guard/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	statusRowID = int16(1)
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetSystemStatus(ctx context.Context) (entities.SystemStatus, error) {
	var row statusModel
	err := r.db.WithContext(ctx).
		Where("id = ?", statusRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SystemStatus{State: entities.StateActive}, nil
		}
		return entities.SystemStatus{}, r.logError("guard_repo_get_status_failed", err)
	}
	return entities.SystemStatus{
		State:  entities.SystemState(row.State),
		Paused: row.Paused,
	}, nil
}

func (r *Repository) PutSystemStatus(ctx context.Context, status entities.SystemStatus) error {
	row := statusModel{
		ID:        statusRowID,
		State:     string(status.State),
		Paused:    status.Paused,
		UpdatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"state":      row.State,
			"paused":     row.Paused,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("guard_repo_put_status_failed", create.Error, "state", row.State)
	}
	return nil
}

func (r *Repository) GetThrottle(ctx context.Context, actorID string) (entities.ThrottleRecord, bool, error) {
	var row throttleModel
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ThrottleRecord{}, false, nil
		}
		return entities.ThrottleRecord{}, false, r.logError("guard_repo_get_throttle_failed", err,
			"actor_id", strings.TrimSpace(actorID),
		)
	}
	return entities.ThrottleRecord{
		WindowStart: row.WindowStart.UTC(),
		Count:       row.Count,
	}, true, nil
}

func (r *Repository) PutThrottle(ctx context.Context, actorID string, record entities.ThrottleRecord) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return domainerrors.ErrInvalidActorID
	}
	row := throttleModel{
		ActorID:     actorID,
		WindowStart: record.WindowStart.UTC(),
		Count:       record.Count,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"window_start": row.WindowStart,
			"count":        row.Count,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("guard_repo_put_throttle_failed", create.Error, "actor_id", actorID)
	}
	return nil
}

func (r *Repository) GetLastBidAt(ctx context.Context, actorID string) (time.Time, bool, error) {
	var row lastBidModel
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, r.logError("guard_repo_get_last_bid_failed", err,
			"actor_id", strings.TrimSpace(actorID),
		)
	}
	return row.LastBidAt.UTC(), true, nil
}

func (r *Repository) PutLastBidAt(ctx context.Context, actorID string, at time.Time) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return domainerrors.ErrInvalidActorID
	}
	row := lastBidModel{
		ActorID:   actorID,
		LastBidAt: at.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_bid_at": row.LastBidAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("guard_repo_put_last_bid_failed", create.Error, "actor_id", actorID)
	}
	return nil
}

func (r *Repository) IsBlacklisted(ctx context.Context, bidderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&blacklistModel{}).
		Where("bidder_id = ?", strings.TrimSpace(bidderID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("guard_repo_is_blacklisted_failed", err,
			"bidder_id", strings.TrimSpace(bidderID),
		)
	}
	return count > 0, nil
}

func (r *Repository) AddBlacklist(ctx context.Context, bidderID string) error {
	bidderID = strings.TrimSpace(bidderID)
	if bidderID == "" {
		return domainerrors.ErrInvalidActorID
	}
	row := blacklistModel{
		BidderID:  bidderID,
		CreatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bidder_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("guard_repo_add_blacklist_failed", create.Error, "bidder_id", bidderID)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("guard_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("guard_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("guard_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrEventConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("guard_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("guard_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "operations/system-guard",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("guard repository operation failed", fields...)
	return err
}

type statusModel struct {
	ID        int16     `gorm:"column:id;primaryKey"`
	State     string    `gorm:"column:state"`
	Paused    bool      `gorm:"column:paused"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (statusModel) TableName() string {
	return "guard_status"
}

type throttleModel struct {
	ActorID     string    `gorm:"column:actor_id;primaryKey"`
	WindowStart time.Time `gorm:"column:window_start"`
	Count       int       `gorm:"column:count"`
}

func (throttleModel) TableName() string {
	return "guard_throttle"
}

type lastBidModel struct {
	ActorID   string    `gorm:"column:actor_id;primaryKey"`
	LastBidAt time.Time `gorm:"column:last_bid_at"`
}

func (lastBidModel) TableName() string {
	return "guard_last_bid"
}

type blacklistModel struct {
	BidderID  string    `gorm:"column:bidder_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (blacklistModel) TableName() string {
	return "guard_blacklist"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "guard_outbox"
}

var _ ports.GuardStore = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
