package services

import (
	"context"
	"fmt"
	"log/slog"

	"woodcraft/internal/models"
	"woodcraft/internal/repositories"
	"woodcraft/pkg/rabbitmq"
)

// ActivityPublisher forwards activity entries to other consumers.
type ActivityPublisher interface {
	PublishActivity(evt rabbitmq.ActivityEvent) error
}

// ActivityService appends to the activity log and announces every entry.
type ActivityService struct {
	repo      repositories.ActivityLogRepository
	publisher ActivityPublisher // optional
}

// NewActivityService creates an ActivityService. publisher may be nil.
func NewActivityService(repo repositories.ActivityLogRepository, publisher ActivityPublisher) *ActivityService {
	return &ActivityService{
		repo:      repo,
		publisher: publisher,
	}
}

// Record appends an entry. Publishing is best effort: a failed publish is
// logged and does not fail the call.
func (s *ActivityService) Record(ctx context.Context, typ models.LogType, description, userID string) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown log type %q", ErrValidation, typ)
	}
	if description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	entry := &models.ActivityLog{
		Type:        typ,
		Description: description,
		UserID:      userID,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	if s.publisher == nil {
		return nil
	}
	err := s.publisher.PublishActivity(rabbitmq.ActivityEvent{
		ID:          entry.ID,
		Type:        string(entry.Type),
		Description: entry.Description,
		UserID:      entry.UserID,
		CreatedAt:   entry.CreatedAt,
	})
	if err != nil {
		slog.Warn("failed to publish activity event", "id", entry.ID, "err", err)
	}
	return nil
}

// ListLogs returns every entry, newest first.
func (s *ActivityService) ListLogs(ctx context.Context) ([]models.ActivityLog, error) {
	return s.repo.List(ctx)
}

// record is used by the other services, for which the activity log is a side
// effect that never fails the main operation.
func (s *ActivityService) record(ctx context.Context, typ models.LogType, description, userID string) {
	if s == nil {
		return
	}
	if err := s.Record(ctx, typ, description, userID); err != nil {
		slog.Warn("failed to record activity", "type", typ, "err", err)
	}
}
