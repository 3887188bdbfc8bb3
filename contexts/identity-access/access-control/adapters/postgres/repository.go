package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gavel/contexts/identity-access/access-control/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type roleGrantModel struct {
	ActorID   string    `gorm:"column:actor_id;primaryKey"`
	Role      string    `gorm:"column:role;primaryKey"`
	GrantedBy string    `gorm:"column:granted_by"`
	GrantedAt time.Time `gorm:"column:granted_at"`
}

func (roleGrantModel) TableName() string {
	return "role_grants"
}

func (r *Repository) SaveGrant(ctx context.Context, grant entities.RoleGrant) error {
	row := roleGrantModel{
		ActorID:   strings.TrimSpace(grant.ActorID),
		Role:      string(grant.Role),
		GrantedBy: strings.TrimSpace(grant.GrantedBy),
		GrantedAt: grant.GrantedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "role"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("access_repo_save_grant_failed", create.Error,
			"actor_id", row.ActorID,
			"role", row.Role,
		)
	}
	return nil
}

func (r *Repository) DeleteGrant(ctx context.Context, actorID string, role entities.Role) error {
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		Where("role = ?", string(role)).
		Delete(&roleGrantModel{}).
		Error
	if err != nil {
		return r.logError("access_repo_delete_grant_failed", err,
			"actor_id", strings.TrimSpace(actorID),
			"role", string(role),
		)
	}
	return nil
}

func (r *Repository) HasGrant(ctx context.Context, actorID string, role entities.Role) (bool, error) {
	var row roleGrantModel
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		Where("role = ?", string(role)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("access_repo_has_grant_failed", err,
			"actor_id", strings.TrimSpace(actorID),
			"role", string(role),
		)
	}
	return true, nil
}

func (r *Repository) ListGrants(ctx context.Context, actorID string) ([]entities.RoleGrant, error) {
	var rows []roleGrantModel
	if err := r.db.WithContext(ctx).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		Order("role ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("access_repo_list_grants_failed", err,
			"actor_id", strings.TrimSpace(actorID),
		)
	}
	items := make([]entities.RoleGrant, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.RoleGrant{
			ActorID:   row.ActorID,
			Role:      entities.Role(row.Role),
			GrantedBy: row.GrantedBy,
			GrantedAt: row.GrantedAt,
		})
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/access-control",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("access control repository failure", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
