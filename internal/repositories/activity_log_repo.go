package repositories

import (
	"context"

	"woodcraft/internal/models"
)

// ActivityLogRepository stores the append-only activity log. List returns
// entries newest first.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context) ([]models.ActivityLog, error)
}
