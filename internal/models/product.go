package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, the shape the storefront clients read.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog document. Reviews are owned by the product and have no
// lifecycle of their own.
type Product struct {
	ID           string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name         string          `json:"name" gorm:"type:varchar(200);not null"`
	Brand        string          `json:"brand" gorm:"type:varchar(100)"`
	Description  string          `json:"description" gorm:"type:text"`
	Category     string          `json:"category" gorm:"index;type:varchar(100)"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Images       []string        `json:"images" gorm:"serializer:json;type:text"`
	CountInStock int             `json:"countInStock"`
	IsActive     bool            `json:"isActive"`
	IsFeatured   bool            `json:"isFeatured"`
	Rating       float64         `json:"rating"`
	NumReviews   int             `json:"numReviews"`
	Reviews      []Review        `json:"reviews" gorm:"foreignKey:ProductID"`
	CreatedBy    string          `json:"user,omitempty" gorm:"type:varchar(36)"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Review is a single customer review embedded in a product.
type Review struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"-" gorm:"index;type:varchar(36)"`
	UserID    string    `json:"user" gorm:"type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecomputeRating derives NumReviews and Rating (arithmetic mean) from the
// embedded review list.
func (p *Product) RecomputeRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(p.NumReviews)
}
