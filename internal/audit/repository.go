// File: internal/audit/repository.go
package audit

import (
	"context"
	"fmt"
	"time"

	"backend_resources/internal/common"

	"gorm.io/gorm"
)

// Repository defines the interface for audit data operations.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	List(ctx context.Context, page, pageSize int) ([]Event, *common.Pagination, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM audit repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create audit event: %w", err)
	}
	return nil
}

// ListRecent returns at most limit events, newest first.
func (r *gormRepository) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = common.DefaultPageSize
	}
	var events []Event
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, nil
}

// List returns one page of events, newest first.
func (r *gormRepository) List(ctx context.Context, page, pageSize int) ([]Event, *common.Pagination, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Event{}).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count audit events: %w", err)
	}

	var events []Event
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(common.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&events).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, common.NewPagination(total, page, pageSize), nil
}

// DeleteOlderThan removes events created before cutoff and reports how many went.
func (r *gormRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Event{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
