package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"woodcraft/internal/middleware"
	"woodcraft/internal/models"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const productNotFound = "Product not found"

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       newValidator(),
	}
}

type createProductRequest struct {
	Name         string           `json:"name" validate:"required,max=200"`
	Brand        string           `json:"brand" validate:"max=100"`
	Description  string           `json:"description"`
	Category     string           `json:"category" validate:"max=100"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	ImageURLs    []string         `json:"imageUrls"`
	Images       []string         `json:"images"`
	CountInStock int              `json:"countInStock" validate:"gte=0"`
	IsFeatured   bool             `json:"isFeatured"`
}

// updateProductRequest carries only the fields the client sent; a nil
// pointer means "leave unchanged".
type updateProductRequest struct {
	Name         *string          `json:"name"`
	Brand        *string          `json:"brand"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	ImageURLs    *[]string        `json:"imageUrls"`
	Images       *[]string        `json:"images"`
	CountInStock *int             `json:"countInStock"`
	IsActive     *bool            `json:"isActive"`
	IsFeatured   *bool            `json:"isFeatured"`
}

// reviewRequest accepts the rating as a number or a numeric string.
type reviewRequest struct {
	Rating  json.Number `json:"rating" validate:"required"`
	Comment string      `json:"comment" validate:"required"`
}

// RegisterRoutes registers the product routes. Static paths are registered
// before "/:id" so they are not captured as ids.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.AdminOnly()

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/featured", h.HandleGetFeatured)
	productRoutes.Get("/top", h.HandleGetTop)
	productRoutes.Get("/manage", auth, admin, h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", auth, admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, admin, h.HandleDeleteProduct)
	productRoutes.Post("/:id/reviews", auth, h.HandleCreateReview)
}

// HandleGetProducts lists products, optionally filtered and sorted by the
// query string: category, featured, active, keyword, sort and limit.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	q, err := parseProductQuery(c)
	if err != nil {
		return err
	}

	products, err := h.productService.ListProducts(c.UserContext(), q)
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(products)
}

// HandleGetFeatured lists the featured products for the landing page.
func (h *ProductHandler) HandleGetFeatured(c *fiber.Ctx) error {
	products, err := h.productService.FeaturedProducts(c.UserContext())
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(products)
}

// HandleGetTop lists the best rated products.
func (h *ProductHandler) HandleGetTop(c *fiber.Ctx) error {
	products, err := h.productService.TopProducts(c.UserContext())
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.productService.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	images := req.ImageURLs
	if len(images) == 0 {
		images = req.Images
	}
	product := models.Product{
		Name:         req.Name,
		Brand:        req.Brand,
		Description:  req.Description,
		Category:     req.Category,
		Price:        *req.Price,
		Images:       images,
		CountInStock: req.CountInStock,
		IsFeatured:   req.IsFeatured,
		CreatedBy:    middleware.CurrentUser(c).ID,
	}
	if err := h.productService.CreateProduct(c.UserContext(), &product); err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update. Absent fields are left as
// they are.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req updateProductRequest
	if err := bind(c, nil, &req); err != nil {
		return err
	}

	patch := models.ProductPatch{
		Name:         req.Name,
		Brand:        req.Brand,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Images:       req.ImageURLs,
		CountInStock: req.CountInStock,
		IsActive:     req.IsActive,
		IsFeatured:   req.IsFeatured,
	}
	if patch.Images == nil {
		patch.Images = req.Images
	}

	product, err := h.productService.UpdateProduct(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product permanently.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.productService.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}

// HandleCreateReview adds the current user's review to a product.
func (h *ProductHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req reviewRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	rating, err := strconv.Atoi(req.Rating.String())
	if err != nil {
		return &requestError{message: "Rating must be a whole number", cause: err}
	}

	product, err := h.productService.AddReview(c.UserContext(), c.Params("id"), middleware.CurrentUser(c), rating, req.Comment)
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Review added",
		"rating":     product.Rating,
		"numReviews": product.NumReviews,
	})
}

func parseProductQuery(c *fiber.Ctx) (repositories.ProductQuery, error) {
	q := repositories.ProductQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Sort:     repositories.ProductSort(c.Query("sort")),
	}

	var err error
	if q.Featured, err = queryBool(c, "featured"); err != nil {
		return q, err
	}
	if q.Active, err = queryBool(c, "active"); err != nil {
		return q, err
	}
	if raw := c.Query("limit"); raw != "" {
		q.Limit, err = strconv.Atoi(raw)
		if err != nil {
			return q, &requestError{message: "Invalid limit", cause: err}
		}
	}
	return q, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &requestError{message: "Invalid " + key + " filter", cause: err}
	}
	return &v, nil
}
