package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"woodcraft/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// Reviews live in their own table and are preloaded on every read.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) withReviews(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

// List retrieves the products matching q.
func (r *GORMProductRepository) List(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	tx := r.withReviews(ctx)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Featured != nil {
		tx = tx.Where("is_featured = ?", *q.Featured)
	}
	if q.Active != nil {
		tx = tx.Where("is_active = ?", *q.Active)
	}
	if q.Keyword != "" {
		like := "%" + strings.ToLower(q.Keyword) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(category) LIKE ?)", like, like)
	}
	switch q.Sort {
	case SortRating:
		tx = tx.Order("rating DESC")
	case SortPriceAsc:
		tx = tx.Order("price ASC")
	case SortPriceDesc:
		tx = tx.Order("price DESC")
	case SortNewest:
		tx = tx.Order("created_at DESC")
	default:
		tx = tx.Order("created_at ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var products []models.Product
	if err := tx.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for i := range products {
		fillEmptyLists(&products[i])
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.withReviews(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	fillEmptyLists(&product)
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for i := range product.Reviews {
		product.Reviews[i].ProductID = product.ID
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes every product column and appends reviews that are not yet
// stored. Existing reviews are never rewritten.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
		}

		if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if len(product.Reviews) == 0 {
			return nil
		}
		for i := range product.Reviews {
			product.Reviews[i].ProductID = product.ID
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&product.Reviews).Error
		if err != nil {
			return fmt.Errorf("failed to store reviews: %w", err)
		}
		return nil
	})
}

// Delete hard-deletes a product and its reviews.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reviews reference the product, so they go first.
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// fillEmptyLists makes a product without images or reviews render them as
// empty JSON arrays.
func fillEmptyLists(p *models.Product) {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
}
