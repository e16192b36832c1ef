// Package app assembles the HTTP application from a store and its settings.
package app

import (
	"slices"
	"strings"
	"time"

	"woodcraft/internal/handlers"
	"woodcraft/internal/middleware"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Options struct {
	Store     *repositories.Store
	Publisher services.ActivityPublisher // optional

	JWTSecret      string
	TokenTTL       time.Duration
	SecureCookies  bool
	AllowedOrigins []string
	AccessLog      bool
}

// App is the fiber application together with the services behind it.
type App struct {
	*fiber.App

	Auth     *services.AuthService
	Products *services.ProductService
	Orders   *services.OrderService
	Activity *services.ActivityService
}

// New wires services and handlers over opts.Store and registers every route
// under /api.
func New(opts Options) *App {
	activity := services.NewActivityService(opts.Store.Logs, opts.Publisher)
	a := &App{
		Auth:     services.NewAuthService(opts.Store.Users, activity, opts.JWTSecret, opts.TokenTTL),
		Products: services.NewProductService(opts.Store.Products, activity),
		Orders:   services.NewOrderService(opts.Store.Orders, opts.Store.Products, activity),
		Activity: activity,
	}

	a.App = fiber.New(fiber.Config{
		AppName:               "woodcraft",
		ErrorHandler:          handlers.ErrorHandler,
		Immutable:             true,
		DisableStartupMessage: true,
	})

	a.Use(recover.New())
	if opts.AccessLog {
		a.Use(logger.New())
	}
	if len(opts.AllowedOrigins) > 0 {
		a.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(opts.AllowedOrigins, ","),
			AllowCredentials: !slices.Contains(opts.AllowedOrigins, "*"),
		}))
	}

	auth := middleware.AuthRequired(a.Auth)
	api := a.Group("/api")
	handlers.NewAuthHandler(a.Auth, opts.SecureCookies).RegisterRoutes(api)
	handlers.NewUserHandler(a.Auth).RegisterRoutes(api, auth)
	handlers.NewProductHandler(a.Products).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(a.Orders).RegisterRoutes(api, auth)
	handlers.NewLogHandler(activity).RegisterRoutes(api, auth)

	a.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	a.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API is running successfully...")
	})

	return a
}
