package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // Price at the time of order
}

// Order represents a placed checkout.
type Order struct {
	ID              string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user" gorm:"index;type:varchar(36)"`
	Items           []OrderItem     `json:"orderItems" gorm:"serializer:json;type:text"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:text"`
	TotalAmount     decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20)"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
