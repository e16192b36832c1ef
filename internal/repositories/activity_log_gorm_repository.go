package repositories

import (
	"context"
	"fmt"
	"time"

	"woodcraft/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMActivityLogRepository is a GORM implementation of ActivityLogRepository.
type GORMActivityLogRepository struct {
	db *gorm.DB
}

func NewGORMActivityLogRepository(db *gorm.DB) *GORMActivityLogRepository {
	return &GORMActivityLogRepository{db: db}
}

func (r *GORMActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

func (r *GORMActivityLogRepository) List(ctx context.Context) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return entries, nil
}
