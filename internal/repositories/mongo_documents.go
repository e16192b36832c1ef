package repositories

import (
	"fmt"
	"time"

	"woodcraft/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	productsCollection = "products"
	usersCollection    = "users"
	logsCollection     = "logs"
	ordersCollection   = "orders"
)

// Prices are stored as BSON Decimal128 and surface as decimal.Decimal
// everywhere else.

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("price %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %s: %w", v, err)
	}
	return d, nil
}

type reviewDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user"`
	Name      string    `bson:"name"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"createdAt"`
}

type productDocument struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"name"`
	Brand        string               `bson:"brand"`
	Description  string               `bson:"description"`
	Category     string               `bson:"category"`
	Price        primitive.Decimal128 `bson:"price"`
	Images       []string             `bson:"images"`
	CountInStock int                  `bson:"countInStock"`
	IsActive     bool                 `bson:"isActive"`
	IsFeatured   bool                 `bson:"isFeatured"`
	Rating       float64              `bson:"rating"`
	NumReviews   int                  `bson:"numReviews"`
	Reviews      []reviewDocument     `bson:"reviews"`
	CreatedBy    string               `bson:"user,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func newProductDocument(p *models.Product) (productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDocument{}, err
	}
	doc := productDocument{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Description:  p.Description,
		Category:     p.Category,
		Price:        price,
		Images:       p.Images,
		CountInStock: p.CountInStock,
		IsActive:     p.IsActive,
		IsFeatured:   p.IsFeatured,
		Rating:       p.Rating,
		NumReviews:   p.NumReviews,
		Reviews:      make([]reviewDocument, 0, len(p.Reviews)),
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if doc.Images == nil {
		doc.Images = []string{}
	}
	for _, r := range p.Reviews {
		doc.Reviews = append(doc.Reviews, reviewDocument{
			ID:        r.ID,
			UserID:    r.UserID,
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return doc, nil
}

func (d productDocument) toModel() (models.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		ID:           d.ID,
		Name:         d.Name,
		Brand:        d.Brand,
		Description:  d.Description,
		Category:     d.Category,
		Price:        price,
		Images:       d.Images,
		CountInStock: d.CountInStock,
		IsActive:     d.IsActive,
		IsFeatured:   d.IsFeatured,
		Rating:       d.Rating,
		NumReviews:   d.NumReviews,
		Reviews:      make([]models.Review, 0, len(d.Reviews)),
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, r := range d.Reviews {
		p.Reviews = append(p.Reviews, models.Review{
			ID:        r.ID,
			ProductID: d.ID,
			UserID:    r.UserID,
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return p, nil
}

type orderItemDocument struct {
	ProductID string               `bson:"product"`
	Name      string               `bson:"name"`
	Image     string               `bson:"image,omitempty"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

type orderDocument struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"user"`
	Items           []orderItemDocument  `bson:"orderItems"`
	ShippingAddress string               `bson:"shippingAddress"`
	TotalAmount     primitive.Decimal128 `bson:"totalPrice"`
	Status          models.OrderStatus   `bson:"status"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func newOrderDocument(o *models.Order) (orderDocument, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDocument{}, err
	}
	doc := orderDocument{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           make([]orderItemDocument, 0, len(o.Items)),
		ShippingAddress: o.ShippingAddress,
		TotalAmount:     total,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, it := range o.Items {
		price, err := toDecimal128(it.Price)
		if err != nil {
			return orderDocument{}, err
		}
		doc.Items = append(doc.Items, orderItemDocument{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			Price:     price,
		})
	}
	return doc, nil
}

func (d orderDocument) toModel() (models.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return models.Order{}, err
	}
	o := models.Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Items:           make([]models.OrderItem, 0, len(d.Items)),
		ShippingAddress: d.ShippingAddress,
		TotalAmount:     total,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, it := range d.Items {
		price, err := fromDecimal128(it.Price)
		if err != nil {
			return models.Order{}, err
		}
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			Price:     price,
		})
	}
	return o, nil
}
