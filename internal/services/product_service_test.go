package services_test

import (
	"context"
	"fmt"
	"testing"

	"woodcraft/internal/models"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Oak Chair", Price: decimal.NewFromInt(180), CountInStock: 5},
		{ID: "2", Name: "Pine Table", Price: decimal.RequireFromString("320.50"), CountInStock: 2},
	}
	q := repositories.ProductQuery{Category: "Chairs", Sort: repositories.SortPriceAsc}
	mockRepo.On("List", ctx, q).Return(expectedProducts, nil).Once()

	products, err := service.ListProducts(ctx, q)
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	_, err = service.ListProducts(ctx, repositories.ProductQuery{Sort: "cheapest"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.ListProducts(ctx, repositories.ProductQuery{Limit: -1})
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestProductService_FeaturedAndTop(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("List", ctx, repositories.ProductQuery{Featured: ptr(true), Limit: 4}).Return([]models.Product{}, nil).Once()
	mockRepo.On("List", ctx, repositories.ProductQuery{Sort: repositories.SortRating, Limit: 3}).Return([]models.Product{}, nil).Once()

	_, err := service.FeaturedProducts(ctx)
	assert.NoError(t, err)
	_, err = service.TopProducts(ctx)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: "1", Name: "Oak Chair"}

	// Test successful retrieval
	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	logs := repositories.NewMockActivityLogRepository()
	service := services.NewProductService(mockRepo, services.NewActivityService(logs, nil))

	newProduct := &models.Product{
		ID:         "client-chosen",
		Name:       " Oak Chair ",
		Price:      decimal.NewFromInt(180),
		Category:   "Chairs",
		Rating:     5,
		NumReviews: 9,
		IsActive:   false,
		CreatedBy:  "admin-1",
	}

	// Test successful creation
	mockRepo.On("Create", ctx, newProduct).Return(nil).Once()
	err := service.CreateProduct(ctx, newProduct)
	require.NoError(t, err)
	assert.Empty(t, newProduct.ID)
	assert.Equal(t, "Oak Chair", newProduct.Name)
	assert.True(t, newProduct.IsActive)
	assert.False(t, newProduct.IsFeatured)
	assert.Zero(t, newProduct.Rating)
	assert.Zero(t, newProduct.NumReviews)
	assert.Equal(t, []models.Review{}, newProduct.Reviews)
	assert.Equal(t, []string{}, newProduct.Images)

	entries, _ := logs.List(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LogProductAdded, entries[0].Type)
	assert.Equal(t, "admin-1", entries[0].UserID)

	// Test creation failure (e.g., database error)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(ctx, &models.Product{Name: "Stool"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)

	// Validation happens before the store is touched.
	err = service.CreateProduct(ctx, &models.Product{Name: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)
	err = service.CreateProduct(ctx, &models.Product{Name: "Stool", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, services.ErrValidation)
	err = service.CreateProduct(ctx, &models.Product{Name: "Stool", CountInStock: -1})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	stored := &models.Product{
		ID:           "1",
		Name:         "Oak Chair",
		Price:        decimal.NewFromInt(180),
		CountInStock: 5,
		IsFeatured:   true,
	}
	mockRepo.On("GetByID", ctx, "1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, stored).Return(nil).Once()

	// Zero numbers are applied, an empty string is not.
	updated, err := service.UpdateProduct(ctx, "1", models.ProductPatch{
		Name:         ptr(""),
		Price:        ptr(decimal.Zero),
		CountInStock: ptr(0),
		IsFeatured:   ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Oak Chair", updated.Name)
	assert.True(t, updated.Price.IsZero())
	assert.Zero(t, updated.CountInStock)
	assert.False(t, updated.IsFeatured)

	// Test update failure (product not found in repo)
	mockRepo.On("GetByID", ctx, "99").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.UpdateProduct(ctx, "99", models.ProductPatch{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = service.UpdateProduct(ctx, "1", models.ProductPatch{Price: ptr(decimal.NewFromInt(-5))})
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// Test successful deletion
	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, "1"))

	// Test deletion failure (e.g., product not found)
	mockRepo.On("Delete", ctx, "99").Return(fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	err := service.DeleteProduct(ctx, "99")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AddReview(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo, nil)

	product := &models.Product{Name: "Oak Chair", Price: decimal.NewFromInt(180)}
	require.NoError(t, service.CreateProduct(ctx, product))

	alice := &models.User{ID: "u1", Name: "Alice"}
	bob := &models.User{ID: "u2", Name: "Bob"}

	_, err := service.AddReview(ctx, product.ID, alice, 5, "Sturdy")
	require.NoError(t, err)
	_, err = service.AddReview(ctx, product.ID, bob, 4, "Nice grain")
	require.NoError(t, err)
	updated, err := service.AddReview(ctx, product.ID, alice, 2, "Wobbles now")
	require.NoError(t, err)

	assert.Equal(t, 3, updated.NumReviews)
	assert.InDelta(t, 11.0/3.0, updated.Rating, 1e-9)

	stored, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reviews, 3)
	assert.Equal(t, "Alice", stored.Reviews[0].Name)
	assert.Equal(t, "u2", stored.Reviews[1].UserID)

	_, err = service.AddReview(ctx, product.ID, alice, 0, "Bad")
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = service.AddReview(ctx, product.ID, alice, 3, "   ")
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = service.AddReview(ctx, "missing", alice, 3, "Nothing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
