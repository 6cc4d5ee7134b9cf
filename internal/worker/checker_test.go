package worker

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
)

func TestStockChecker_CheckAndAlert_LowStock(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx := context.Background()

	// Expect SELECT query
	rows := sqlmock.NewRows([]string{"name", "stock", "is_active"}).
		AddRow("Mechanical Keyboard", 2, true)
	mock.ExpectQuery("SELECT name, stock, is_active FROM products").
		WithArgs("prod-1").
		WillReturnRows(rows)

	// Execute
	err = checker.CheckAndAlert(ctx, "prod-1")

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockChecker_CheckAndAlert_OutOfStock(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"name", "stock", "is_active"}).
		AddRow("Mechanical Keyboard", 0, true)
	mock.ExpectQuery("SELECT name, stock, is_active FROM products").
		WithArgs("prod-1").
		WillReturnRows(rows)

	// Execute
	err = checker.CheckAndAlert(ctx, "prod-1")

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockChecker_CheckAndAlert_HealthyStock(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"name", "stock", "is_active"}).
		AddRow("Mechanical Keyboard", 50, true)
	mock.ExpectQuery("SELECT name, stock, is_active FROM products").
		WithArgs("prod-1").
		WillReturnRows(rows)

	// Execute
	err = checker.CheckAndAlert(ctx, "prod-1")

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockChecker_CheckAndAlert_ProductNotFound(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx := context.Background()

	// No matching row
	rows := sqlmock.NewRows([]string{"name", "stock", "is_active"})
	mock.ExpectQuery("SELECT name, stock, is_active FROM products").
		WithArgs("ghost").
		WillReturnRows(rows)

	// Execute
	err = checker.CheckAndAlert(ctx, "ghost")

	// Assert - should not return error for missing product
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockChecker_CheckAndAlert_QueryFailure(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx := context.Background()

	mock.ExpectQuery("SELECT name, stock, is_active FROM products").
		WithArgs("prod-1").
		WillReturnError(assert.AnError)

	// Execute
	err = checker.CheckAndAlert(ctx, "prod-1")

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "stock level")
}

func TestStockChecker_CheckAndAlert_ContextTimeout(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()

	// Simulate slow query
	rows := sqlmock.NewRows([]string{"name", "stock", "is_active"}).
		AddRow("Mechanical Keyboard", 2, true)
	mock.ExpectQuery("SELECT name, stock, is_active FROM products").
		WithArgs("prod-1").
		WillDelayFor(100 * time.Millisecond).
		WillReturnRows(rows)

	// Wait for context to timeout
	time.Sleep(10 * time.Millisecond)

	// Execute
	err = checker.CheckAndAlert(ctx, "prod-1")

	// Assert - should return context timeout error
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}

func TestStockChecker_DefaultThreshold(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 0, log)

	assert.Equal(t, domain.DefaultMinStock, checker.threshold)
}

func TestStockChecker_CurrentStock_Success(t *testing.T) {
	// Setup
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	log := logger.New("test")
	checker := NewStockChecker(sqlxDB, 5, log)

	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"stock"}).AddRow(7)
	mock.ExpectQuery("SELECT stock FROM products").
		WithArgs("prod-1").
		WillReturnRows(rows)

	// Execute
	stock, err := checker.CurrentStock(ctx, "prod-1")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 7, stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}
