package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gavel/contexts/trading/auction-engine/domain/entities"
	domainerrors "gavel/contexts/trading/auction-engine/domain/errors"
	"gavel/contexts/trading/auction-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	settingPlatformFeeBps = "platform_fee_bps"
	metricsRowID          = int16(1)
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

func (r *Repository) NextAuctionID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT nextval('auction_id_seq')").
		Scan(&id).Error; err != nil {
		return 0, r.logError("auction_repo_next_auction_id_failed", err)
	}
	return id, nil
}

func (r *Repository) SaveAuction(ctx context.Context, auction entities.Auction) error {
	if auction.ID <= 0 {
		return domainerrors.ErrInvalidAuction
	}
	row := auctionModelFromEntity(auction)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"owner":                    row.Owner,
			"asset_id":                 row.AssetID,
			"payment_asset":            row.PaymentAsset,
			"reserve_price":            row.ReservePrice,
			"buy_now_price":            row.BuyNowPrice,
			"min_increment":            row.MinIncrement,
			"time_extension_seconds":   row.TimeExtensionSeconds,
			"extension_window_seconds": row.ExtensionWindowSeconds,
			"end_time":                 row.EndTime,
			"active":                   row.Active,
			"canceled":                 row.Canceled,
			"highest_bidder":           row.HighestBidder,
			"highest_bid":              row.HighestBid,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("auction_repo_save_auction_failed", create.Error,
			"auction_id", auction.ID,
			"owner", strings.TrimSpace(auction.Owner),
		)
	}
	return nil
}

func (r *Repository) GetAuction(ctx context.Context, auctionID int64) (entities.Auction, error) {
	var row auctionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", auctionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Auction{}, domainerrors.ErrInvalidAuction
		}
		return entities.Auction{}, r.logError("auction_repo_get_auction_failed", err, "auction_id", auctionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) AppendBid(ctx context.Context, auctionID int64, bid entities.Bid) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&bidModel{}).
		Where("auction_id = ?", auctionID).
		Count(&count).Error; err != nil {
		return r.logError("auction_repo_append_bid_count_failed", err, "auction_id", auctionID)
	}
	row := bidModel{
		AuctionID: auctionID,
		BidIndex:  int(count),
		Bidder:    strings.TrimSpace(bid.Bidder),
		Amount:    bid.Amount,
		PlacedAt:  bid.PlacedAt.UTC(),
		Withdrawn: bid.Withdrawn,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_id"}, {Name: "bid_index"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrBidIndexOutOfRange
		}
		return r.logError("auction_repo_append_bid_failed", create.Error,
			"auction_id", auctionID,
			"bidder", row.Bidder,
		)
	}
	return nil
}

func (r *Repository) CountBids(ctx context.Context, auctionID int64) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&bidModel{}).
		Where("auction_id = ?", auctionID).
		Count(&count).Error; err != nil {
		return 0, r.logError("auction_repo_count_bids_failed", err, "auction_id", auctionID)
	}
	return int(count), nil
}

func (r *Repository) GetBid(ctx context.Context, auctionID int64, index int) (entities.Bid, error) {
	var row bidModel
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Where("bid_index = ?", index).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Bid{}, domainerrors.ErrBidIndexOutOfRange
		}
		return entities.Bid{}, r.logError("auction_repo_get_bid_failed", err,
			"auction_id", auctionID,
			"bid_index", index,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetEscrow(ctx context.Context, auctionID int64, bidder string) (decimal.Decimal, error) {
	var row escrowModel
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Where("bidder = ?", strings.TrimSpace(bidder)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, r.logError("auction_repo_get_escrow_failed", err,
			"auction_id", auctionID,
			"bidder", strings.TrimSpace(bidder),
		)
	}
	return row.Amount, nil
}

func (r *Repository) PutEscrow(ctx context.Context, auctionID int64, bidder string, amount decimal.Decimal) error {
	if strings.TrimSpace(bidder) == "" || amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	row := escrowModel{
		AuctionID: auctionID,
		Bidder:    strings.TrimSpace(bidder),
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "auction_id"}, {Name: "bidder"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     row.Amount,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("auction_repo_put_escrow_failed", create.Error,
			"auction_id", auctionID,
			"bidder", row.Bidder,
		)
	}
	return nil
}

func (r *Repository) GetCustody(ctx context.Context, asset string) (decimal.Decimal, error) {
	var row custodyModel
	err := r.db.WithContext(ctx).
		Where("asset = ?", strings.TrimSpace(asset)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, r.logError("auction_repo_get_custody_failed", err, "asset", strings.TrimSpace(asset))
	}
	return row.Amount, nil
}

func (r *Repository) PutCustody(ctx context.Context, asset string, amount decimal.Decimal) error {
	if strings.TrimSpace(asset) == "" {
		return domainerrors.ErrInvalidAmount
	}
	row := custodyModel{
		Asset:     strings.TrimSpace(asset),
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asset"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     row.Amount,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("auction_repo_put_custody_failed", create.Error, "asset", row.Asset)
	}
	return nil
}

func (r *Repository) OwedForAsset(ctx context.Context, asset string) (decimal.Decimal, error) {
	var escrowed decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("auction_escrow AS e").
		Select("COALESCE(SUM(e.amount), 0)").
		Joins("JOIN auctions AS a ON a.id = e.auction_id").
		Where("a.payment_asset = ?", strings.TrimSpace(asset)).
		Scan(&escrowed).
		Error
	if err != nil {
		return decimal.Zero, r.logError("auction_repo_owed_escrow_failed", err, "asset", strings.TrimSpace(asset))
	}

	var held decimal.Decimal
	err = r.db.WithContext(ctx).
		Model(&auctionModel{}).
		Select("COALESCE(SUM(highest_bid), 0)").
		Where("payment_asset = ?", strings.TrimSpace(asset)).
		Where("active = ?", true).
		Where("canceled = ?", false).
		Where("highest_bidder <> ''").
		Scan(&held).
		Error
	if err != nil {
		return decimal.Zero, r.logError("auction_repo_owed_held_failed", err, "asset", strings.TrimSpace(asset))
	}
	return escrowed.Add(held), nil
}

func (r *Repository) GetPlatformFeeBps(ctx context.Context) (int64, error) {
	var row settingModel
	err := r.db.WithContext(ctx).
		Where("key = ?", settingPlatformFeeBps).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("auction_repo_get_platform_fee_failed", err)
	}
	return row.Value, nil
}

func (r *Repository) PutPlatformFeeBps(ctx context.Context, bps int64) error {
	if bps < 0 {
		return domainerrors.ErrInvalidFeePercentage
	}
	row := settingModel{
		Key:       settingPlatformFeeBps,
		Value:     bps,
		UpdatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("auction_repo_put_platform_fee_failed", create.Error, "fee_bps", bps)
	}
	return nil
}

func (r *Repository) GetMetrics(ctx context.Context) (entities.SystemMetrics, error) {
	var row metricsModel
	err := r.db.WithContext(ctx).
		Where("id = ?", metricsRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SystemMetrics{TotalVolume: decimal.Zero}, nil
		}
		return entities.SystemMetrics{}, r.logError("auction_repo_get_metrics_failed", err)
	}
	return entities.SystemMetrics{
		TotalAuctions:  row.TotalAuctions,
		ActiveAuctions: row.ActiveAuctions,
		TotalVolume:    row.TotalVolume,
		LastUpdateAt:   row.LastUpdateAt.UTC(),
	}, nil
}

func (r *Repository) PutMetrics(ctx context.Context, metrics entities.SystemMetrics) error {
	row := metricsModel{
		ID:             metricsRowID,
		TotalAuctions:  metrics.TotalAuctions,
		ActiveAuctions: metrics.ActiveAuctions,
		TotalVolume:    metrics.TotalVolume,
		LastUpdateAt:   metrics.LastUpdateAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_auctions":  row.TotalAuctions,
			"active_auctions": row.ActiveAuctions,
			"total_volume":    row.TotalVolume,
			"last_update_at":  row.LastUpdateAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("auction_repo_put_metrics_failed", create.Error)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("auction_repo_append_outbox_marshal_failed", err,
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
		return r.logError("auction_repo_append_outbox_insert_failed", create.Error,
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
		return r.logError("auction_repo_append_outbox_load_existing_failed", err,
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
		return nil, r.logError("auction_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("auction_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidEvent
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "trading/auction-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("auction repository operation failed", fields...)
	return err
}

type auctionModel struct {
	ID                     int64           `gorm:"column:id;primaryKey"`
	Owner                  string          `gorm:"column:owner"`
	AssetID                string          `gorm:"column:asset_id"`
	PaymentAsset           string          `gorm:"column:payment_asset"`
	ReservePrice           decimal.Decimal `gorm:"column:reserve_price;type:numeric"`
	BuyNowPrice            decimal.Decimal `gorm:"column:buy_now_price;type:numeric"`
	MinIncrement           decimal.Decimal `gorm:"column:min_increment;type:numeric"`
	TimeExtensionSeconds   int64           `gorm:"column:time_extension_seconds"`
	ExtensionWindowSeconds int64           `gorm:"column:extension_window_seconds"`
	EndTime                time.Time       `gorm:"column:end_time"`
	Active                 bool            `gorm:"column:active"`
	Canceled               bool            `gorm:"column:canceled"`
	HighestBidder          string          `gorm:"column:highest_bidder"`
	HighestBid             decimal.Decimal `gorm:"column:highest_bid;type:numeric"`
	CreatedAt              time.Time       `gorm:"column:created_at"`
}

func (auctionModel) TableName() string {
	return "auctions"
}

func auctionModelFromEntity(auction entities.Auction) auctionModel {
	row := auctionModel{
		ID:                     auction.ID,
		Owner:                  strings.TrimSpace(auction.Owner),
		AssetID:                strings.TrimSpace(auction.AssetID),
		PaymentAsset:           strings.TrimSpace(auction.PaymentAsset),
		ReservePrice:           auction.ReservePrice,
		BuyNowPrice:            auction.BuyNowPrice,
		MinIncrement:           auction.MinIncrement,
		TimeExtensionSeconds:   int64(auction.TimeExtension / time.Second),
		ExtensionWindowSeconds: int64(auction.ExtensionWindow / time.Second),
		EndTime:                auction.EndTime.UTC(),
		Active:                 auction.Active,
		Canceled:               auction.Canceled,
		HighestBidder:          strings.TrimSpace(auction.HighestBidder),
		HighestBid:             auction.HighestBid,
		CreatedAt:              auction.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m auctionModel) toEntity() entities.Auction {
	return entities.Auction{
		ID:              m.ID,
		Owner:           m.Owner,
		AssetID:         m.AssetID,
		PaymentAsset:    m.PaymentAsset,
		ReservePrice:    m.ReservePrice,
		BuyNowPrice:     m.BuyNowPrice,
		MinIncrement:    m.MinIncrement,
		TimeExtension:   time.Duration(m.TimeExtensionSeconds) * time.Second,
		ExtensionWindow: time.Duration(m.ExtensionWindowSeconds) * time.Second,
		EndTime:         m.EndTime.UTC(),
		Active:          m.Active,
		Canceled:        m.Canceled,
		HighestBidder:   m.HighestBidder,
		HighestBid:      m.HighestBid,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

type bidModel struct {
	AuctionID int64           `gorm:"column:auction_id;primaryKey"`
	BidIndex  int             `gorm:"column:bid_index;primaryKey"`
	Bidder    string          `gorm:"column:bidder"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric"`
	PlacedAt  time.Time       `gorm:"column:placed_at"`
	Withdrawn bool            `gorm:"column:withdrawn"`
}

func (bidModel) TableName() string {
	return "auction_bids"
}

func (m bidModel) toEntity() entities.Bid {
	return entities.Bid{
		Bidder:    m.Bidder,
		Amount:    m.Amount,
		PlacedAt:  m.PlacedAt.UTC(),
		Withdrawn: m.Withdrawn,
	}
}

type escrowModel struct {
	AuctionID int64           `gorm:"column:auction_id;primaryKey"`
	Bidder    string          `gorm:"column:bidder;primaryKey"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (escrowModel) TableName() string {
	return "auction_escrow"
}

type custodyModel struct {
	Asset     string          `gorm:"column:asset;primaryKey"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (custodyModel) TableName() string {
	return "auction_custody"
}

type settingModel struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     int64     `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (settingModel) TableName() string {
	return "engine_settings"
}

type metricsModel struct {
	ID             int16           `gorm:"column:id;primaryKey"`
	TotalAuctions  int64           `gorm:"column:total_auctions"`
	ActiveAuctions int64           `gorm:"column:active_auctions"`
	TotalVolume    decimal.Decimal `gorm:"column:total_volume;type:numeric"`
	LastUpdateAt   time.Time       `gorm:"column:last_update_at"`
}

func (metricsModel) TableName() string {
	return "engine_metrics"
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
	return "auction_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.AuctionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
