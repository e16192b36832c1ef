package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"woodcraft/internal/app"
	"woodcraft/internal/cart"
	"woodcraft/internal/models"
	"woodcraft/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*app.App, string) {
	t.Helper()
	a := app.New(app.Options{
		Store:     repositories.NewMemoryStore(),
		JWTSecret: "test_jwt_secret",
		TokenTTL:  time.Hour,
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.Listener(ln) }()
	t.Cleanup(func() { _ = a.Shutdown() })
	return a, "http://" + ln.Addr().String()
}

func newShell(base string, storage cart.Storage) (*shell, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &shell{api: newAPIClient(base), storage: storage, out: out}, out
}

func TestShell_CartAndCheckout(t *testing.T) {
	ctx := context.Background()
	a, base := startServer(t)

	table := &models.Product{Name: "Oak Table", Category: "Tables", Price: decimal.RequireFromString("450.00"), CountInStock: 3}
	chair := &models.Product{Name: "Oak Chair", Category: "Chairs", Price: decimal.RequireFromString("89.50"), CountInStock: 10}
	require.NoError(t, a.Products.CreateProduct(ctx, table))
	require.NoError(t, a.Products.CreateProduct(ctx, chair))
	require.NoError(t, a.Auth.RegisterUser(ctx, &models.User{Name: "Jane", Email: "jane@example.com", Password: "secret1"}))

	storage := cart.NewMemoryStorage()
	sh, out := newShell(base, storage)

	require.NoError(t, sh.run(ctx, []string{"products"}))
	assert.Contains(t, out.String(), "Oak Table")
	assert.Contains(t, out.String(), "89.50")

	require.NoError(t, sh.run(ctx, []string{"add", table.ID}))
	require.NoError(t, sh.run(ctx, []string{"add", chair.ID, "2"}))
	require.NoError(t, sh.run(ctx, []string{"add", chair.ID}))
	require.NoError(t, sh.run(ctx, []string{"set", table.ID, "2"}))

	c, err := cart.Load(storage)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Count())
	assert.True(t, decimal.RequireFromString("1168.50").Equal(c.Total()))

	out.Reset()
	require.NoError(t, sh.run(ctx, []string{"cart"}))
	assert.Contains(t, out.String(), "5 items")
	assert.Contains(t, out.String(), "1168.50")

	err = sh.run(ctx, []string{"checkout"})
	assert.ErrorContains(t, err, "not signed in")

	err = sh.run(ctx, []string{"login", "jane@example.com", "wrong"})
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Message)

	require.NoError(t, sh.run(ctx, []string{"login", "jane@example.com", "secret1"}))
	info, err := cart.NewSession(storage).Load()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Jane", info.Name)

	out.Reset()
	require.NoError(t, sh.run(ctx, []string{"checkout", "1 Forest Lane"}))
	assert.Contains(t, out.String(), "total 1168.50")

	c, err = cart.Load(storage)
	require.NoError(t, err)
	assert.Zero(t, c.Count())

	stored, err := a.Products.GetProductByID(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CountInStock)

	require.NoError(t, sh.run(ctx, []string{"logout"}))
	info, err = cart.NewSession(storage).Load()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestShell_Errors(t *testing.T) {
	ctx := context.Background()
	_, base := startServer(t)
	storage := cart.NewMemoryStorage()
	sh, _ := newShell(base, storage)

	assert.ErrorIs(t, sh.run(ctx, nil), errUsage)
	assert.ErrorIs(t, sh.run(ctx, []string{"fly"}), errUsage)
	assert.ErrorIs(t, sh.run(ctx, []string{"set", "x"}), errUsage)
	assert.ErrorIs(t, sh.run(ctx, []string{"add", "x", "many"}), errUsage)

	err := sh.run(ctx, []string{"add", "missing"})
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "Product not found", apiErr.Message)

	assert.ErrorIs(t, sh.run(ctx, []string{"add", "x", "0"}), cart.ErrInvalidQuantity)
}
