package repositories

import (
	"context"
	"sync"
	"time"

	"woodcraft/internal/models"

	"github.com/google/uuid"
)

// MockActivityLogRepository is an in-memory, append-only activity log.
type MockActivityLogRepository struct {
	entries []models.ActivityLog
	mu      sync.RWMutex
}

func NewMockActivityLogRepository() *MockActivityLogRepository {
	return &MockActivityLogRepository{}
}

func (r *MockActivityLogRepository) Append(_ context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// List returns all entries, newest first.
func (r *MockActivityLogRepository) List(_ context.Context) ([]models.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ActivityLog, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *MockActivityLogRepository) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
