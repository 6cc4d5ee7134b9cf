//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAJaimes/eccomerce/internal/config"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/events"
	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/database"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
	"github.com/RaulAJaimes/eccomerce/internal/repository/postgres"
	"github.com/RaulAJaimes/eccomerce/internal/worker"
)

func newWorkerProduct(t *testing.T, name string, stock int) *domain.Product {
	t.Helper()

	now := time.Now().UTC()
	product, err := domain.ProductFromRecord(domain.ProductRecord{
		ID:          uuid.NewString(),
		Name:        name,
		PriceAmount: 49.99,
		Currency:    "USD",
		Stock:       stock,
		SKU:         fmt.Sprintf("WRK-%s", uuid.NewString()[:8]),
		Category:    "integration",
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return product
}

func TestStockWorker_EndToEnd(t *testing.T) {
	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)

	// Setup logger
	log := logger.New(cfg.Env)

	// Connect to database
	db, err := database.WaitForDB(cfg.Database, 5, 2*time.Second, log)
	require.NoError(t, err)
	defer db.Close()

	err = database.RunMigrations(db, "../../migrations")
	require.NoError(t, err)

	// Connect to NATS
	nc, err := nats.Connect(cfg.NATS.URL)
	require.NoError(t, err)
	defer nc.Close()

	// Create checker and worker
	checker := worker.NewStockChecker(db, cfg.Worker.StockAlertThreshold, log)
	stockWorker := worker.NewStockWorker(checker, 500*time.Millisecond, log)

	// Subscribe to catalog events
	_, err = nc.Subscribe(events.StreamSubjects, func(msg *nats.Msg) {
		_ = stockWorker.HandleEvent(msg.Data)
	})
	require.NoError(t, err)

	productRepo := postgres.NewProductRepository(db)

	ctx := context.Background()

	// Create test product already below the alert threshold
	product := newWorkerProduct(t, "Worker Probe Keyboard", 2)
	err = productRepo.Save(ctx, product)
	require.NoError(t, err)

	// Cleanup function
	defer func() {
		_ = productRepo.Delete(ctx, product.ID())
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = stockWorker.Shutdown(shutdownCtx)
	}()

	// Publish stock change event
	event := worker.CatalogEvent{
		EventType: "product.stock_changed",
		ProductID: product.ID(),
		Timestamp: time.Now(),
	}
	eventData, _ := json.Marshal(event)
	err = nc.Publish(events.StreamSubjects, eventData)
	require.NoError(t, err)

	// Wait for event processing (debounce window + processing time)
	time.Sleep(2 * time.Second)

	// The debounced check fired and drained
	assert.Equal(t, 0, stockWorker.GetPendingCount(), "Check should have fired")

	// The checker reads the stored level, not the event payload
	stock, err := checker.CurrentStock(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestStockWorker_Debouncing(t *testing.T) {
	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)

	// Setup logger
	log := logger.New(cfg.Env)

	// Connect to database
	db, err := database.WaitForDB(cfg.Database, 5, 2*time.Second, log)
	require.NoError(t, err)
	defer db.Close()

	err = database.RunMigrations(db, "../../migrations")
	require.NoError(t, err)

	// Connect to NATS
	nc, err := nats.Connect(cfg.NATS.URL)
	require.NoError(t, err)
	defer nc.Close()

	// Create checker and worker
	checker := worker.NewStockChecker(db, cfg.Worker.StockAlertThreshold, log)
	stockWorker := worker.NewStockWorker(checker, 1*time.Second, log)

	// Subscribe to catalog events
	_, err = nc.Subscribe(events.StreamSubjects, func(msg *nats.Msg) {
		_ = stockWorker.HandleEvent(msg.Data)
	})
	require.NoError(t, err)

	productRepo := postgres.NewProductRepository(db)

	ctx := context.Background()

	// Create test product with stock to burn through
	product := newWorkerProduct(t, "Flash Sale Monitor", 20)
	err = productRepo.Save(ctx, product)
	require.NoError(t, err)

	// Cleanup function
	defer func() {
		_ = productRepo.Delete(ctx, product.ID())
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = stockWorker.Shutdown(shutdownCtx)
	}()

	// Sell out rapidly: 20 unit sales, one event each
	for i := 0; i < 20; i++ {
		err = product.ReduceStock(1)
		require.NoError(t, err)
		err = productRepo.Save(ctx, product)
		require.NoError(t, err)

		// Publish event immediately
		event := worker.CatalogEvent{
			EventType: "product.stock_changed",
			ProductID: product.ID(),
			Timestamp: time.Now(),
		}
		eventData, _ := json.Marshal(event)
		err = nc.Publish(events.StreamSubjects, eventData)
		require.NoError(t, err)
	}

	// Check that events are being debounced (one pending check per product)
	time.Sleep(500 * time.Millisecond)
	pendingCount := stockWorker.GetPendingCount()
	assert.LessOrEqual(t, pendingCount, 1, "Events should collapse into one pending check")

	// Wait for final processing
	time.Sleep(2 * time.Second)

	assert.Equal(t, 0, stockWorker.GetPendingCount(), "Debounced check should have drained")

	// The single check saw the final level
	stock, err := checker.CurrentStock(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}
