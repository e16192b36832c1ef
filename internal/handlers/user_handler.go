package handlers

import (
	"woodcraft/internal/middleware"
	"woodcraft/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the signed-in user's own account.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

type addressRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

// RegisterRoutes registers the account routes. Every route requires auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/users/profile", auth, h.HandleGetProfile)
	router.Get("/users/address", auth, h.HandleGetAddress)
	router.Put("/users/address", auth, h.HandleUpdateAddress)
}

// HandleGetProfile returns the current user.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return writeError(c, err, "User not found")
	}
	return c.JSON(user)
}

// HandleGetAddress returns the stored shipping address.
func (h *UserHandler) HandleGetAddress(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return writeError(c, err, "User not found")
	}
	return c.JSON(fiber.Map{"address": user.Address})
}

// HandleUpdateAddress replaces the stored shipping address.
func (h *UserHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var req addressRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateAddress(c.UserContext(), middleware.CurrentUser(c).ID, req.Address)
	if err != nil {
		return writeError(c, err, "User not found")
	}
	return c.JSON(fiber.Map{
		"message": "Address updated",
		"address": user.Address,
	})
}
