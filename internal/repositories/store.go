package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"woodcraft/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// StoreConfig selects and addresses the backing store.
type StoreConfig struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// Store bundles the repositories of one backend.
type Store struct {
	Products ProductRepository
	Users    UserRepository
	Logs     ActivityLogRepository
	Orders   OrderRepository

	closeFn func(context.Context) error
	resetFn func(context.Context) error
}

// Reset deletes every product, review, user, activity entry and order.
func (s *Store) Reset(ctx context.Context) error {
	if s.resetFn == nil {
		return fmt.Errorf("repositories.Reset: not supported by this store")
	}
	return s.resetFn(ctx)
}

// Close releases the underlying connections.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// OpenStore connects to the configured backend. A connectivity failure is
// returned to the caller, which treats it as fatal.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	const op = "repositories.OpenStore"

	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		db, err := OpenGORM(sqlite.Open(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return NewGORMStore(db), nil
	case DriverPostgres:
		db, err := OpenGORM(postgres.Open(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return NewGORMStore(db), nil
	case DriverMongo:
		s, err := openMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%s: unknown store driver %q", op, cfg.Driver)
	}
}

// NewMemoryStore returns a store backed by the in-memory repositories.
func NewMemoryStore() *Store {
	products := NewMockProductRepository()
	users := NewMockUserRepository()
	logs := NewMockActivityLogRepository()
	orders := NewMockOrderRepository()
	return &Store{
		Products: products,
		Users:    users,
		Logs:     logs,
		Orders:   orders,
		resetFn: func(context.Context) error {
			products.clear()
			users.clear()
			logs.clear()
			orders.clear()
			return nil
		},
	}
}

// OpenGORM opens a database and migrates the schema.
func OpenGORM(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.Review{},
		&models.User{},
		&models.ActivityLog{},
		&models.Order{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// NewGORMStore wires the GORM repositories over db.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Products: NewGORMProductRepository(db),
		Users:    NewGORMUserRepository(db),
		Logs:     NewGORMActivityLogRepository(db),
		Orders:   NewGORMOrderRepository(db),
		closeFn: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
		resetFn: func(ctx context.Context) error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
				for _, model := range []any{&models.Review{}, &models.Product{}, &models.Order{}, &models.ActivityLog{}, &models.User{}} {
					if err := all.Delete(model).Error; err != nil {
						return fmt.Errorf("repositories.Reset: %w", err)
					}
				}
				return nil
			})
		},
	}
}

func openMongoStore(ctx context.Context, uri, database string) (*Store, error) {
	log := slog.With("op", "repositories.openMongoStore")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo is unavailable: %w", err)
	}
	log.Info("mongo is available", "database", database)

	db := client.Database(database)
	users := NewMongoUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		Products: NewMongoProductRepository(db),
		Users:    users,
		Logs:     NewMongoActivityLogRepository(db),
		Orders:   NewMongoOrderRepository(db),
		closeFn:  client.Disconnect,
		resetFn: func(ctx context.Context) error {
			for _, name := range []string{productsCollection, usersCollection, logsCollection, ordersCollection} {
				if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
					return fmt.Errorf("repositories.Reset: %s: %w", name, err)
				}
			}
			return nil
		},
	}, nil
}
