package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"woodcraft/internal/models"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	logs := repositories.NewMockActivityLogRepository()
	authService := services.NewAuthService(mockRepo, services.NewActivityService(logs, nil), testJWTSecret, 0)

	// Test successful registration
	user := &models.User{
		Name:     "Test User",
		Email:    " Test@Example.com ",
		Password: "password123",
		IsAdmin:  true,
	}
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = "user-1"
	}).Return(nil).Once()

	err := authService.RegisterUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.False(t, user.IsAdmin, "registration never grants admin")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	entries, err := logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LogUserRegistered, entries[0].Type)
	assert.Equal(t, "user-1", entries[0].UserID)

	// Test email already registered
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(ctx, &models.User{Email: "test@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")

	// Test a duplicate caught by the store
	mockRepo.On("GetByEmail", ctx, "race@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicate).Once()
	err = authService.RegisterUser(ctx, &models.User{Email: "race@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, testJWTSecret, time.Hour)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Name:     "Test User",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	loggedIn, token, err := authService.LoginUser(ctx, "TEST@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	// Validate the token structure
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["userId"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, _, err = authService.LoginUser(ctx, user.Email, "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = authService.LoginUser(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials) // Should return generic invalid credentials message
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), nil, testJWTSecret, 0)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "user-123",
		"exp":    jwt.TimeFunc().Add(time.Hour).Unix(), // Expires in 1 hour
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["userId"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test wrong secret
	forged, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(forged)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "user-123",
		"exp":    jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, testJWTSecret, 0)

	user := &models.User{ID: "user-123", Name: "Test User", Password: "hash"}
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	mockRepo.On("GetByID", ctx, "user-123").Return(&models.User{ID: "user-123", Name: "Test User", Password: "hash"}, nil).Once()
	resolved, err := authService.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Test User", resolved.Name)
	assert.Empty(t, resolved.Password)

	// A token for a deleted user is rejected.
	mockRepo.On("GetByID", ctx, "user-123").Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.Authenticate(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = authService.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Store failures are not reported as bad credentials.
	mockRepo.On("GetByID", ctx, "user-123").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err = authService.Authenticate(ctx, token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrUnauthorized)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateAddress(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, testJWTSecret, 0)

	mockRepo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1", Password: "hash"}, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Address == "1 Forest Road"
	})).Return(nil).Once()

	user, err := authService.UpdateAddress(ctx, "user-1", "  1 Forest Road ")
	require.NoError(t, err)
	assert.Equal(t, "1 Forest Road", user.Address)
	assert.Empty(t, user.Password)
	mockRepo.AssertExpectations(t)
}
