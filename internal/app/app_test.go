package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"woodcraft/internal/repositories"
	"woodcraft/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of the activity publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishActivity(evt rabbitmq.ActivityEvent) error {
	args := m.Called(evt)
	return args.Error(0)
}

func newTestApp(t *testing.T, publisher *MockPublisher) (*App, *repositories.Store) {
	t.Helper()
	store := repositories.NewMemoryStore()
	opts := Options{
		Store:          store,
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	if publisher != nil {
		opts.Publisher = publisher
	}
	return New(opts), store
}

func TestHealthAndRoot(t *testing.T) {
	a, _ := newTestApp(t, nil)

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)

	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "API is running successfully...", string(body))
}

func TestUnauthenticatedAccess(t *testing.T) {
	a, _ := newTestApp(t, nil)

	// Reading the catalog is public.
	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"Stool","price":10}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = a.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Not authorized, no token", out["message"])
}

func TestRegisterPublishesActivity(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishActivity", mock.MatchedBy(func(evt rabbitmq.ActivityEvent) bool {
		return evt.Type == "USER_REGISTERED" && evt.UserID != ""
	})).Return(nil).Once()

	a, store := newTestApp(t, publisher)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	publisher.AssertExpectations(t)

	logs, err := store.Logs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "USER_REGISTERED", string(logs[0].Type))
}

func TestCORS(t *testing.T) {
	a, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := a.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
