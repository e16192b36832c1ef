package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"woodcraft/internal/models"
	"woodcraft/internal/repositories"

	"github.com/google/uuid"
)

const (
	featuredLimit = 4
	topLimit      = 3
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo     repositories.ProductRepository
	activity *ActivityService
}

// NewProductService creates a new ProductService. activity may be nil.
func NewProductService(repo repositories.ProductRepository, activity *ActivityService) *ProductService {
	return &ProductService{
		repo:     repo,
		activity: activity,
	}
}

// ListProducts retrieves the products matching q.
func (s *ProductService) ListProducts(ctx context.Context, q repositories.ProductQuery) ([]models.Product, error) {
	if !q.Sort.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, q.Sort)
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrValidation)
	}
	return s.repo.List(ctx, q)
}

// FeaturedProducts returns up to four featured products.
func (s *ProductService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	featured := true
	return s.repo.List(ctx, repositories.ProductQuery{Featured: &featured, Limit: featuredLimit})
}

// TopProducts returns the best rated products.
func (s *ProductService) TopProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx, repositories.ProductQuery{Sort: repositories.SortRating, Limit: topLimit})
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct persists a new product with catalog defaults: active, no
// rating and no reviews.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if product.CountInStock < 0 {
		return fmt.Errorf("%w: countInStock must not be negative", ErrValidation)
	}

	product.ID = ""
	product.IsActive = true
	product.Rating = 0
	product.NumReviews = 0
	product.Reviews = []models.Review{}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}

	s.activity.record(ctx, models.LogProductAdded,
		fmt.Sprintf("Product %q was added to the catalog", product.Name), product.CreatedBy)
	return nil
}

// UpdateProduct applies a partial patch to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if patch.CountInStock != nil && *patch.CountInStock < 0 {
		return nil, fmt.Errorf("%w: countInStock must not be negative", ErrValidation)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil || patch.Empty() {
		return product, err
	}
	patch.Apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct hard-deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddReview appends a review and recomputes the product rating. This is a
// plain read-modify-write: two concurrent submissions on the same product
// can lose one of the reviews.
func (s *ProductService) AddReview(ctx context.Context, productID string, author *models.User, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrValidation)
	}

	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.Reviews = append(product.Reviews, models.Review{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		UserID:    author.ID,
		Name:      author.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
	product.RecomputeRating()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
