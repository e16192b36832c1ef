package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"woodcraft/internal/models"
	"woodcraft/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	// TokenCookie is the http-only cookie carrying the credential.
	TokenCookie = "jwt"

	userLocalsKey = "user"
)

// AuthRequired is a Fiber middleware that resolves the credential from the
// "jwt" cookie or the "Authorization: Bearer" header into a user stored in
// the request locals.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, no token",
			})
		}

		user, err := authService.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				return err
			}
			slog.Debug("token rejected", "path", c.Path(), "err", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, token failed",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// AdminOnly rejects callers whose resolved user is not an administrator. It
// must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized as an admin",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user attached by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}

func bearerToken(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
