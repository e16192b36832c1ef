package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"woodcraft/internal/middleware"
	"woodcraft/internal/models"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*fiber.App, *services.AuthService, *repositories.MockUserRepository) {
	t.Helper()
	users := repositories.NewMockUserRepository()
	auth := services.NewAuthService(users, nil, "test_jwt_secret", 0)

	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(auth), func(c *fiber.Ctx) error {
		return c.JSON(middleware.CurrentUser(c))
	})
	app.Get("/admin", middleware.AuthRequired(auth), middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, auth, users
}

func createUser(t *testing.T, users *repositories.MockUserRepository, auth *services.AuthService, admin bool) string {
	t.Helper()
	user := &models.User{Name: "Ana", Email: "ana@example.com", Password: "hash", IsAdmin: admin}
	require.NoError(t, users.Create(context.Background(), user))
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func message(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	msg, _ := out["message"].(string)
	return msg
}

func TestAuthRequired(t *testing.T) {
	app, auth, users := setup(t)
	token := createUser(t, users, auth, false)

	t.Run("no token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Not authorized, no token", message(t, resp))
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Not authorized, token failed", message(t, resp))
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
		assert.Equal(t, "Ana", user["name"])
		assert.NotContains(t, user, "password")
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAdminOnly(t *testing.T) {
	app, auth, users := setup(t)
	userToken := createUser(t, users, auth, false)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authorized as an admin", message(t, resp))

	// Authentication runs first: no token never reaches the admin check.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, "Not authorized, no token", message(t, resp))

	adminUsers := repositories.NewMockUserRepository()
	adminAuth := services.NewAuthService(adminUsers, nil, "test_jwt_secret", 0)
	adminToken := createUser(t, adminUsers, adminAuth, true)
	adminApp := fiber.New()
	adminApp.Get("/admin", middleware.AuthRequired(adminAuth), middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = adminApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
