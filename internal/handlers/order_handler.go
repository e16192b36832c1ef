package handlers

import (
	"log/slog"

	"woodcraft/internal/middleware"
	"woodcraft/internal/models"
	"woodcraft/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const orderNotFound = "Order not found"

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// orderItemRequest accepts either an explicit "product" id or a cart entry,
// whose id is "_id".
type orderItemRequest struct {
	Product  string `json:"product"`
	ID       string `json:"_id"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	OrderItems      []orderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" validate:"max=500"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// RegisterRoutes registers the order routes. Every route requires auth;
// listing all orders and changing a status also require an admin.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.AdminOnly()

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", auth, admin, h.HandleGetOrders)
	orderRoutes.Get("/mine", auth, h.HandleGetMyOrders)
	orderRoutes.Get("/:id", auth, h.HandleGetOrderByID)
	orderRoutes.Post("/", auth, h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", auth, admin, h.HandleUpdateOrderStatus)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(orders)
}

// HandleGetMyOrders retrieves the current user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetMyOrders(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order owned by the caller, or any
// order for an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(order)
}

// HandleCreateOrder checks out the submitted items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	lines := make([]services.OrderLine, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		productID := item.Product
		if productID == "" {
			productID = item.ID
		}
		lines = append(lines, services.OrderLine{ProductID: productID, Quantity: item.Quantity})
	}

	buyer := middleware.CurrentUser(c)
	order, err := h.service.CreateOrder(c.UserContext(), buyer, lines, req.ShippingAddress)
	if err != nil {
		slog.Info("order rejected", "user", buyer.ID, "err", err)
		return writeError(c, err, productNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateOrderStatus moves an order to another status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(order)
}
