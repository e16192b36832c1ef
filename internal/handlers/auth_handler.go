package handlers

import (
	"log/slog"
	"time"

	"woodcraft/internal/middleware"
	"woodcraft/internal/models"
	"woodcraft/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks the session
// cookie as HTTPS-only.
func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validate:      newValidator(),
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse is the identity a client caches after signing in.
type authResponse struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)

	// Aliases kept for older clients.
	router.Post("/users", h.HandleRegister)
	router.Post("/users/login", h.HandleLogin)
}

// HandleRegister handles new user registration and signs the user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user := models.User{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		slog.Info("registration rejected", "email", req.Email, "err", err)
		return writeError(c, err, "User not found")
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		return err
	}
	h.setTokenCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(newAuthResponse(&user, token))
}

// HandleLogin authenticates by email and password.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err, "User not found")
	}
	h.setTokenCookie(c, token)
	return c.JSON(newAuthResponse(user, token))
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(h.authService.TokenTTL()),
	})
}

func newAuthResponse(user *models.User, token string) authResponse {
	return authResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}
}
