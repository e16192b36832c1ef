package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"woodcraft/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository stores products as documents with their reviews
// embedded.
type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(productsCollection)}
}

func (r *MongoProductRepository) List(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	const op = "MongoProductRepository.List"

	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Featured != nil {
		filter["isFeatured"] = *q.Featured
	}
	if q.Active != nil {
		filter["isActive"] = *q.Active
	}
	if q.Keyword != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Keyword), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"category": re}}
	}

	opts := options.Find().SetSort(mongoSort(q.Sort))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func mongoSort(s ProductSort) bson.D {
	switch s {
	case SortRating:
		return bson.D{{Key: "rating", Value: -1}}
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	case SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: 1}}
	}
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	const op = "MongoProductRepository.GetByID"

	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	const op = "MongoProductRepository.Create"

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	doc, err := newProductDocument(product)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update replaces the whole document, embedded reviews included.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	const op = "MongoProductRepository.Update"

	product.UpdatedAt = time.Now()
	doc, err := newProductDocument(product)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID}, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	const op = "MongoProductRepository.Delete"

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
