package repositories

import (
	"context"
	"fmt"
	"time"

	"woodcraft/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoActivityLogRepository struct {
	coll *mongo.Collection
}

func NewMongoActivityLogRepository(db *mongo.Database) *MongoActivityLogRepository {
	return &MongoActivityLogRepository{coll: db.Collection(logsCollection)}
}

func (r *MongoActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("MongoActivityLogRepository.Append: %w", err)
	}
	return nil
}

func (r *MongoActivityLogRepository) List(ctx context.Context) ([]models.ActivityLog, error) {
	const op = "MongoActivityLogRepository.List"

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entries := make([]models.ActivityLog, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
