package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RaulAJaimes/eccomerce/internal/config"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/events"
	httpDelivery "github.com/RaulAJaimes/eccomerce/internal/delivery/http"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/http/handler"
	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/cache"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/database"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
	cacheRepo "github.com/RaulAJaimes/eccomerce/internal/repository/cache"
	"github.com/RaulAJaimes/eccomerce/internal/repository/memory"
	"github.com/RaulAJaimes/eccomerce/internal/repository/postgres"
	"github.com/RaulAJaimes/eccomerce/internal/usecase/catalog"

	_ "github.com/RaulAJaimes/eccomerce/docs"
)

const migrationsDir = "migrations"

// @title Product Catalog API
// @version 1.0
// @description An e-commerce product catalog with inventory tracking, Redis caching, and NATS stock events.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/RaulAJaimes/eccomerce
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @tag.name Products
// @tag.description Product catalog endpoints

// @tag.name Inventory
// @tag.description Stock tracking endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	if cfg.LogLevel != "" {
		appLogger = appLogger.Level(cfg.LogLevel)
	}
	appLogger.Info("Starting Product Catalog API...")

	productRepo, cleanup, err := buildRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to set up storage", err)
	}
	defer cleanup()

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg.Redis, 10, 2*time.Second, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	streamConfig := events.NewStreamConfig(publisher.JetStream(), appLogger)
	if err := streamConfig.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure event stream", err)
	}

	redisCache := cacheRepo.NewRedisCache(
		redisClient,
		cfg.Cache.ProductTTL,
		cfg.Cache.ListingTTL,
		cfg.Cache.CategoriesTTL,
	)

	catalogService := catalog.NewService(productRepo, redisCache, publisher, appLogger)
	productHandler := handler.NewProductHandler(catalogService, appLogger)

	router := httpDelivery.NewRouter(productHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}

// buildRepository opens the product store selected by STORAGE_DRIVER. The
// returned cleanup closes whatever the driver opened.
func buildRepository(cfg *config.Config, log *logger.Logger) (domain.ProductRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Info("Using in-memory product store")
		return memory.NewProductRepository(), func() {}, nil

	default:
		log.Info("Connecting to PostgreSQL...")
		db, err := database.WaitForDB(cfg.Database, 10, 2*time.Second, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to PostgreSQL successfully")

		if err := database.RunMigrations(db, migrationsDir); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("Migrations applied")

		return postgres.NewProductRepository(db), func() { db.Close() }, nil
	}
}
