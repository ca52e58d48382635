package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dafailyasa/salt-be-test/internal/config"
	"github.com/dafailyasa/salt-be-test/internal/handlers"
	"github.com/dafailyasa/salt-be-test/internal/middleware"
	"github.com/dafailyasa/salt-be-test/internal/repositories"
	"github.com/dafailyasa/salt-be-test/internal/services"
	"github.com/dafailyasa/salt-be-test/pkg/cache"
	"github.com/dafailyasa/salt-be-test/pkg/logger"
	"github.com/dafailyasa/salt-be-test/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(&logger.Config{
		Name:     cfg.AppName,
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("application stopped with error", zap.Error(err))
		appLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger logger.Logger) error {
	ctx := context.Background()

	// --- Store ---
	productRepo, closeStore, err := newProductRepository(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Cache ---
	productCache, err := newCache(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer productCache.Close()

	// --- Product events (optional) ---
	opts := []services.Option{services.WithCacheTTL(cfg.CacheTTL)}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, AppID: cfg.AppName})
		if err != nil {
			appLogger.Warn("RabbitMQ unavailable, product events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			opts = append(opts, services.WithEventPublisher(mqClient))
		}
	}

	productService := services.NewProductService(productRepo, productCache, appLogger, opts...)
	app := newApp(cfg, productService, appLogger)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("starting server", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		serverErr <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	appLogger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("error during fiber shutdown", zap.Error(err))
	}
	appLogger.Info("server gracefully stopped")
	return nil
}

// newApp builds the fiber application with middleware and routes.
func newApp(cfg *config.Config, productService *services.ProductService, appLogger logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler(appLogger),
	})

	// --- Middleware ---
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(appLogger))
	app.Use(middleware.Recover(appLogger))
	app.Use(middleware.RateLimiter(cfg.RateLimitLimit, cfg.RateLimitTTL))

	// --- Health Check Endpoint ---
	handlers.NewHealthHandler(productService).RegisterRoutes(app)

	// --- API Routes ---
	api := app.Group("/api")
	handlers.NewProductHandler(productService).RegisterRoutes(api)

	return app
}

// newProductRepository opens the store selected by STORE_DRIVER. The
// returned func releases its connection.
func newProductRepository(ctx context.Context, cfg *config.Config, appLogger logger.Logger) (repositories.ProductRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := repositories.ConnectMongo(ctx, repositories.MongoConfig{
			URI:               cfg.Mongo.URI(),
			Database:          cfg.Mongo.Database,
			ConnectionTimeout: cfg.Mongo.ConnectionTimeout,
			SocketTimeout:     cfg.Mongo.SocketTimeout,
			RetryAttempts:     cfg.Mongo.RetryAttempts,
		}, appLogger)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewMongoProductRepository(client.Database(cfg.Mongo.Database))
		if err := repo.EnsureIndexes(ctx); err != nil {
			appLogger.Warn("failed to ensure product indexes", zap.Error(err))
		}
		return repo, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				appLogger.Error("error disconnecting mongodb", zap.Error(err))
			}
		}, nil

	case config.StorePostgres, config.StoreSQLite:
		dialector := postgres.Open(cfg.DatabaseDSN)
		if cfg.StoreDriver == config.StoreSQLite {
			dialector = sqlite.Open(cfg.DatabaseDSN)
		}
		logLevel := gormlogger.Warn
		if cfg.Debug() {
			logLevel = gormlogger.Info
		}
		db, err := gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(logLevel),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.StoreDriver, err)
		}
		repo := repositories.NewGORMProductRepository(db)
		if err := repo.AutoMigrate(ctx); err != nil {
			return nil, nil, err
		}
		appLogger.Info("connected to database", zap.String("driver", cfg.StoreDriver))
		return repo, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil

	case config.StoreMemory:
		appLogger.Warn("using in-memory product store, data is lost on restart")
		return repositories.NewMockProductRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// newCache builds the cache selected by CACHE_DRIVER. An unreachable Redis
// is logged but not fatal; reads fall back to the store.
func newCache(ctx context.Context, cfg *config.Config, appLogger logger.Logger) (cache.Cache, error) {
	switch cfg.CacheDriver {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(&cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			appLogger.Warn("redis not reachable, continuing without warm cache", zap.Error(err))
		} else {
			appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr()))
		}
		return rc, nil

	case config.CacheMemory:
		return cache.NewMemoryCache(&cache.MemoryConfig{
			Capacity: cfg.CacheCapacity,
			TTL:      cfg.CacheTTL,
		})
	}
	return nil, fmt.Errorf("unsupported cache driver %q", cfg.CacheDriver)
}
