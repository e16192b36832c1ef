package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"woodcraft/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns the products matching q.
func (r *MockProductRepository) List(_ context.Context, q ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchProduct(p, q) {
			productList = append(productList, cloneProduct(p))
		}
	}
	sortProducts(productList, q.Sort)
	if q.Limit > 0 && len(productList) > q.Limit {
		productList = productList[:q.Limit]
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	product = cloneProduct(product)
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, ok := r.products[product.ID]; ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Update replaces an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append(make([]string, 0, len(p.Images)), p.Images...)
	p.Reviews = append(make([]models.Review, 0, len(p.Reviews)), p.Reviews...)
	return p
}

func matchProduct(p models.Product, q ProductQuery) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Featured != nil && p.IsFeatured != *q.Featured {
		return false
	}
	if q.Active != nil && p.IsActive != *q.Active {
		return false
	}
	if q.Keyword != "" {
		kw := strings.ToLower(q.Keyword)
		if !strings.Contains(strings.ToLower(p.Name), kw) &&
			!strings.Contains(strings.ToLower(p.Category), kw) {
			return false
		}
	}
	return true
}

func sortProducts(ps []models.Product, s ProductSort) {
	var less func(a, b models.Product) bool
	switch s {
	case SortRating:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	case SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortNewest:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

func (r *MockProductRepository) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[string]models.Product)
}
