package repositories

import (
	"context"

	"woodcraft/internal/models"
)

// ProductSort selects the ordering of a product listing.
type ProductSort string

const (
	SortDefault   ProductSort = ""
	SortNewest    ProductSort = "newest"
	SortRating    ProductSort = "rating"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
)

// Valid reports whether s is a known sort order.
func (s ProductSort) Valid() bool {
	switch s {
	case SortDefault, SortNewest, SortRating, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// ProductQuery filters a product listing. Zero values mean "no filter".
type ProductQuery struct {
	Category string
	Featured *bool
	Active   *bool
	Keyword  string // case-insensitive match on name or category
	Sort     ProductSort
	Limit    int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
