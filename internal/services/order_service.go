package services

import (
	"context"
	"fmt"
	"strings"

	"woodcraft/internal/models"
	"woodcraft/internal/repositories"

	"github.com/shopspring/decimal"
)

// OrderLine is one requested product and quantity of a checkout.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// OrderService turns a client cart into a persisted order.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	activity    *ActivityService
}

// NewOrderService creates a new OrderService. activity may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, activity *ActivityService) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		activity:    activity,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetMyOrders retrieves the orders of one user.
func (s *OrderService) GetMyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(ctx, userID)
}

// GetOrderByID retrieves an order visible to viewer: its owner or an admin.
func (s *OrderService) GetOrderByID(ctx context.Context, id string, viewer *models.User) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && order.UserID != viewer.ID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, id)
	}
	return order, nil
}

// CreateOrder prices the lines from the catalog, checks and decrements stock
// and stores the order. Quantities of repeated products are merged. Stock
// updates are not transactional.
func (s *OrderService) CreateOrder(ctx context.Context, buyer *models.User, lines []OrderLine, shippingAddress string) (*models.Order, error) {
	lines, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	products := make([]*models.Product, 0, len(lines))
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s is not available", ErrValidation, product.Name)
		}
		if product.CountInStock < line.Quantity {
			return nil, fmt.Errorf("%w for product %s (requested: %d, available: %d)",
				ErrInsufficientStock, product.Name, line.Quantity, product.CountInStock)
		}

		item := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		items = append(items, item)
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		products = append(products, product)
	}

	for i, product := range products {
		product.CountInStock -= lines[i].Quantity
		if err := s.productRepo.Update(ctx, product); err != nil {
			return nil, fmt.Errorf("failed to reserve stock for product %s: %w", product.ID, err)
		}
	}

	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		address = buyer.Address
	}

	order := &models.Order{
		UserID:          buyer.ID,
		Items:           items,
		ShippingAddress: address,
		TotalAmount:     total,
		Status:          models.OrderPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.activity.record(ctx, models.LogOrderPlaced,
		fmt.Sprintf("Order %s placed by %s for %s", order.ID, buyer.Name, total.StringFixed(2)), buyer.ID)
	return order, nil
}

// UpdateOrderStatus moves an order to another status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid order status: %s", ErrValidation, status)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, id)
}

func mergeLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	merged := make([]OrderLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, fmt.Errorf("%w: product id is required", ErrValidation)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}
