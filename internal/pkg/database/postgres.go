package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/RaulAJaimes/eccomerce/internal/config"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
)

// Connect opens a PostgreSQL connection pool and verifies it with a ping.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// WaitForDB retries Connect until the database answers or the attempts run
// out. Containers routinely come up before their database does.
func WaitForDB(cfg config.DatabaseConfig, attempts int, delay time.Duration, log *logger.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	for i := 0; i < attempts; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < attempts-1 {
			log.Warnf("database not ready (attempt %d/%d): %v", i+1, attempts, err)
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}
