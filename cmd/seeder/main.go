// Command seeder loads the sample woodcraft catalog and an administrator
// into the configured store, or wipes the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"woodcraft/internal/config"
	"woodcraft/internal/models"
	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

const (
	importFlag  = "import"
	destroyFlag = "destroy"
)

func main() {
	flags := pflag.NewFlagSet("seeder", pflag.ExitOnError)
	flags.String("config", "", "config file")
	importData := flags.BoolP(importFlag, "i", false, "replace all data with the sample catalog")
	destroyData := flags.BoolP(destroyFlag, "d", false, "delete all data")
	adminEmail := flags.String("admin-email", "admin@example.com", "email of the seeded administrator")
	adminPassword := flags.String("admin-password", "123456", "password of the seeded administrator")
	_ = flags.Parse(os.Args[1:])

	if *importData == *destroyData {
		fmt.Fprintf(os.Stderr, "exactly one of --%s or --%s is required\n", importFlag, destroyFlag)
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.StoreDriver == repositories.DriverMemory {
		fmt.Fprintln(os.Stderr, "seeding the memory store has no lasting effect")
		os.Exit(2)
	}

	ctx := context.Background()
	store, err := repositories.OpenStore(ctx, repositories.StoreConfig{
		Driver:        cfg.StoreDriver,
		DSN:           cfg.DatabaseDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		slog.Error("failed to open store", "err", err)
		os.Exit(1)
	}

	if *destroyData {
		err = store.Reset(ctx)
	} else {
		err = seed(ctx, store, cfg, *adminEmail, *adminPassword)
	}
	err = errors.Join(err, store.Close(ctx))
	if err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}

	if *destroyData {
		slog.Info("data destroyed")
	} else {
		slog.Info("sample data imported")
	}
}

func seed(ctx context.Context, store *repositories.Store, cfg config.Config, email, password string) error {
	if err := store.Reset(ctx); err != nil {
		return err
	}

	activity := services.NewActivityService(store.Logs, nil)
	auth := services.NewAuthService(store.Users, activity, cfg.JWTSecret, cfg.JWTTTL)
	products := services.NewProductService(store.Products, activity)

	admin := &models.User{Name: "Admin User", Email: email, Password: password}
	if err := auth.RegisterUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	admin.IsAdmin = true
	if err := store.Users.Update(ctx, admin); err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}

	for _, p := range sampleProducts() {
		p.CreatedBy = admin.ID
		if err := products.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("failed to create %q: %w", p.Name, err)
		}
		slog.Info("seeded product", "name", p.Name, "id", p.ID)
	}
	return nil
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name:         "Heritage Oak Dining Table",
			Brand:        "Sovereign Woodcraft",
			Description:  "Six-seat dining table in solid white oak with a hand-rubbed oil finish.",
			Category:     "Tables",
			Price:        decimal.RequireFromString("1249.00"),
			Images:       []string{"/images/oak-dining-table.jpg"},
			CountInStock: 4,
			IsFeatured:   true,
		},
		{
			Name:         "Walnut Windsor Chair",
			Brand:        "Sovereign Woodcraft",
			Description:  "Steam-bent walnut chair with a saddle seat.",
			Category:     "Chairs",
			Price:        decimal.RequireFromString("329.50"),
			Images:       []string{"/images/walnut-windsor-chair.jpg"},
			CountInStock: 12,
			IsFeatured:   true,
		},
		{
			Name:         "Cherry Bookshelf",
			Brand:        "Sovereign Woodcraft",
			Description:  "Five adjustable shelves in American cherry.",
			Category:     "Storage",
			Price:        decimal.RequireFromString("689.00"),
			Images:       []string{"/images/cherry-bookshelf.jpg"},
			CountInStock: 6,
		},
		{
			Name:         "Maple Cutting Board",
			Brand:        "Sovereign Woodcraft",
			Description:  "End-grain hard maple board finished with food-safe wax.",
			Category:     "Kitchen",
			Price:        decimal.RequireFromString("79.99"),
			Images:       []string{"/images/maple-cutting-board.jpg"},
			CountInStock: 40,
			IsFeatured:   true,
		},
		{
			Name:         "Ash Bedside Table",
			Brand:        "Sovereign Woodcraft",
			Description:  "Compact nightstand in white ash with one soft-close drawer.",
			Category:     "Tables",
			Price:        decimal.RequireFromString("245.00"),
			Images:       []string{"/images/ash-bedside-table.jpg"},
			CountInStock: 10,
		},
		{
			Name:         "Teak Garden Bench",
			Brand:        "Sovereign Woodcraft",
			Description:  "Weather-resistant teak bench seating three.",
			Category:     "Outdoor",
			Price:        decimal.RequireFromString("899.00"),
			Images:       []string{"/images/teak-garden-bench.jpg"},
			CountInStock: 0,
			IsFeatured:   true,
		},
	}
}
