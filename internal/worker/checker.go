package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
)

// StockChecker inspects stored stock levels and raises alerts
type StockChecker struct {
	db        *sqlx.DB
	threshold int
	logger    *logger.Logger
}

// NewStockChecker creates a new stock checker. A non-positive threshold
// falls back to the domain default minimum.
func NewStockChecker(db *sqlx.DB, threshold int, log *logger.Logger) *StockChecker {
	if threshold <= 0 {
		threshold = domain.DefaultMinStock
	}
	return &StockChecker{
		db:        db,
		threshold: threshold,
		logger:    log,
	}
}

type stockRow struct {
	Name   string `db:"name"`
	Stock  int    `db:"stock"`
	Active bool   `db:"is_active"`
}

// CheckAndAlert reads the current stock level of a product and logs an alert
// when it is exhausted or below the threshold. It reads the database rather
// than the event payload, so a debounced check always sees the latest level.
func (c *StockChecker) CheckAndAlert(ctx context.Context, productID string) error {
	var row stockRow
	query := `SELECT name, stock, is_active FROM products WHERE id = $1`

	err := c.db.GetContext(ctx, &row, query, productID)
	if errors.Is(err, sql.ErrNoRows) {
		// Product deleted between event and check - nothing to alert on
		c.logger.WithFields(map[string]any{
			"product_id": productID,
		}).Info("Product not found, skipping stock check")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stock level: %w", err)
	}

	fields := map[string]any{
		"product_id": productID,
		"name":       row.Name,
		"stock":      row.Stock,
		"threshold":  c.threshold,
	}

	switch {
	case !row.Active:
		c.logger.WithFields(fields).Debug("Product inactive, stock not monitored")
	case row.Stock == 0:
		c.logger.WithFields(fields).Warn("Product out of stock")
	case row.Stock < c.threshold:
		c.logger.WithFields(fields).Warn("Product stock below threshold")
	default:
		c.logger.WithFields(fields).Debug("Stock level healthy")
	}

	return nil
}

// CurrentStock retrieves the stored stock level for verification (used in tests)
func (c *StockChecker) CurrentStock(ctx context.Context, productID string) (int, error) {
	var stock int
	query := `SELECT stock FROM products WHERE id = $1`

	if err := c.db.GetContext(ctx, &stock, query, productID); err != nil {
		return 0, fmt.Errorf("failed to get current stock: %w", err)
	}

	return stock, nil
}
