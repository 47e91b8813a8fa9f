// internal/repository/audit_log.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultAuditLimit = 100

// AuditQueryParams filters an audit log listing. Zero values are ignored.
type AuditQueryParams struct {
	ActionType string
	EntityType string
	EntityID   string
	ActorID    *uuid.UUID
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}

type AuditLogRepositoryIface interface {
	Create(ctx context.Context, entry *model.AccessAuditLog) error
	Query(ctx context.Context, params AuditQueryParams) ([]model.AccessAuditLog, int64, error)
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *model.AccessAuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("creating audit log: %w", err)
	}
	return nil
}

// Query returns one page of matching entries, newest first, and the total
// number of matches.
func (r *AuditLogRepository) Query(ctx context.Context, params AuditQueryParams) ([]model.AccessAuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AccessAuditLog{})

	if params.ActionType != "" {
		query = query.Where("action_type = ?", params.ActionType)
	}
	if params.EntityType != "" {
		query = query.Where("entity_type = ?", params.EntityType)
	}
	if params.EntityID != "" {
		query = query.Where("entity_id = ?", params.EntityID)
	}
	if params.ActorID != nil {
		query = query.Where("actor_id = ?", *params.ActorID)
	}
	if params.StartTime != nil {
		query = query.Where("timestamp >= ?", *params.StartTime)
	}
	if params.EndTime != nil {
		query = query.Where("timestamp <= ?", *params.EndTime)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting audit logs: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	logs := []model.AccessAuditLog{}
	err := query.
		Order("timestamp DESC").
		Limit(limit).
		Offset(params.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("querying audit logs: %w", err)
	}
	return logs, total, nil
}
