package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"woodcraft/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(ordersCollection)}
}

func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	const op = "MongoOrderRepository.find"

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	const op = "MongoOrderRepository.GetByID"

	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	const op = "MongoOrderRepository.Create"

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	doc, err := newOrderDocument(order)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("MongoOrderRepository.UpdateStatus: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
