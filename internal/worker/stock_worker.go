package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
)

const (
	// defaultDebounce is used when no window is configured
	defaultDebounce = 1 * time.Second

	// stockChangedEvent is the only event type that triggers a check
	stockChangedEvent = "product.stock_changed"

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// CatalogEvent represents a catalog event from NATS
type CatalogEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// StockWorker processes catalog events and checks stock levels asynchronously
type StockWorker struct {
	checker  *StockChecker
	debounce time.Duration
	logger   *logger.Logger

	// Debouncing state
	mu            sync.Mutex
	pendingChecks map[string]*pendingCheck
	shutdownCh    chan struct{}
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

type pendingCheck struct {
	productID string
	timestamp time.Time
	timer     *time.Timer
}

// NewStockWorker creates a new stock worker. A non-positive debounce window
// falls back to the default.
func NewStockWorker(checker *StockChecker, debounce time.Duration, log *logger.Logger) *StockWorker {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &StockWorker{
		checker:       checker,
		debounce:      debounce,
		logger:        log,
		pendingChecks: make(map[string]*pendingCheck),
		shutdownCh:    make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// HandleEvent processes a catalog event. Only stock changes schedule a
// check; every other event type is acknowledged and skipped.
func (w *StockWorker) HandleEvent(data []byte) error {
	var event CatalogEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.WithFields(map[string]any{
			"error": err.Error(),
		}).Error("Failed to unmarshal catalog event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.ProductID == "" {
		return fmt.Errorf("event %q carries no product id", event.EventType)
	}

	w.logger.WithFields(map[string]any{
		"event_type": event.EventType,
		"product_id": event.ProductID,
		"timestamp":  event.Timestamp,
	}).Info("Received catalog event")

	if event.EventType != stockChangedEvent {
		w.logger.WithFields(map[string]any{
			"event_type": event.EventType,
		}).Debug("Event does not affect stock, skipping")
		return nil
	}

	// Schedule stock check with debouncing
	w.scheduleCheck(event.ProductID, event.Timestamp)

	return nil
}

// scheduleCheck implements debouncing logic
// Multiple events for the same product within the window result in one check
func (w *StockWorker) scheduleCheck(productID string, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Check if already shutting down
	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pendingChecks[productID]

	// If we have a pending check, see if this event is newer
	if found {
		// Ignore stale events
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"product_id":  productID,
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		// Cancel existing timer (we'll create a new one). A timer that
		// already fired has an in-flight check consuming the current
		// wait-group slot, so the replacement needs its own.
		if !existing.timer.Stop() {
			w.wg.Add(1)
		}
		w.logger.WithFields(map[string]any{
			"product_id": productID,
		}).Debug("Debouncing: resetting timer for product")
	} else {
		// New product, increment wait group
		w.wg.Add(1)
	}

	// Create new timer for debounced check
	timer := time.AfterFunc(w.debounce, func() {
		w.processCheck(productID)
	})

	w.pendingChecks[productID] = &pendingCheck{
		productID: productID,
		timestamp: timestamp,
		timer:     timer,
	}
}

// processCheck executes the stock check with retry logic
func (w *StockWorker) processCheck(productID string) {
	defer w.wg.Done()

	w.mu.Lock()
	delete(w.pendingChecks, productID)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"product_id": productID,
	}).Info("Processing stock check")

	// Retry loop with exponential backoff
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"product_id": productID,
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying stock check")

			select {
			case <-time.After(backoff):
				// Continue with retry
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		// Create context with timeout for each attempt
		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		err := w.checker.CheckAndAlert(ctx, productID)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"product_id": productID,
			"attempt":    attempt + 1,
			"error":      err.Error(),
		}).Error("Failed to check stock", err)
	}

	// All retries exhausted
	w.logger.WithFields(map[string]any{
		"product_id":  productID,
		"max_retries": maxRetries,
		"error":       lastErr.Error(),
	}).Error("Stock check failed after all retries", lastErr)
}

// Shutdown gracefully shuts down the worker
// Cancels pending timers and waits for in-flight checks to complete
func (w *StockWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down stock worker...")

	// Signal shutdown to prevent new checks
	close(w.shutdownCh)

	// Cancel context to stop retries
	w.cancel()

	// Cancel all pending timers. A timer that already fired has an in-flight
	// check that will release its own wait-group slot.
	w.mu.Lock()
	pendingCount := len(w.pendingChecks)
	for _, check := range w.pendingChecks {
		if check.timer.Stop() {
			w.wg.Done()
		}
	}
	w.pendingChecks = make(map[string]*pendingCheck)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"cancelled_checks": pendingCount,
	}).Info("Cancelled pending checks")

	// Wait for in-flight checks to complete or context timeout
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight checks completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of pending checks (used for monitoring/testing)
func (w *StockWorker) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingChecks)
}
