package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers selectable through STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Env           string
	LogLevel      string
	StorageDriver string
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	NATS          NATSConfig
	Cache         CacheConfig
	Worker        WorkerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the Redis host:port address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	ProductTTL    time.Duration
	ListingTTL    time.Duration
	CategoriesTTL time.Duration
}

// WorkerConfig holds stock worker configuration
type WorkerConfig struct {
	StockAlertThreshold int
	Debounce            time.Duration
}

// Load reads configuration from environment variables and returns a Config struct
func Load() (*Config, error) {
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("STORAGE_DRIVER", DriverPostgres)

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "catalog")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("NATS_URL", "nats://localhost:4222")

	viper.SetDefault("CACHE_TTL_PRODUCT", "300s")
	viper.SetDefault("CACHE_TTL_LISTING", "60s")
	viper.SetDefault("CACHE_TTL_CATEGORIES", "600s")

	viper.SetDefault("STOCK_ALERT_THRESHOLD", 5)
	viper.SetDefault("STOCK_WORKER_DEBOUNCE", "1s")

	driver := viper.GetString("STORAGE_DRIVER")
	if driver != DriverPostgres && driver != DriverMemory {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: must be %q or %q", driver, DriverPostgres, DriverMemory)
	}

	readTimeout, err := durationVar("SERVER_READ_TIMEOUT")
	if err != nil {
		return nil, err
	}

	writeTimeout, err := durationVar("SERVER_WRITE_TIMEOUT")
	if err != nil {
		return nil, err
	}

	requestTimeout, err := durationVar("SERVER_REQUEST_TIMEOUT")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := durationVar("SERVER_SHUTDOWN_TIMEOUT")
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := durationVar("DB_CONN_MAX_LIFETIME")
	if err != nil {
		return nil, err
	}

	productTTL, err := durationVar("CACHE_TTL_PRODUCT")
	if err != nil {
		return nil, err
	}

	listingTTL, err := durationVar("CACHE_TTL_LISTING")
	if err != nil {
		return nil, err
	}

	categoriesTTL, err := durationVar("CACHE_TTL_CATEGORIES")
	if err != nil {
		return nil, err
	}

	debounce, err := durationVar("STOCK_WORKER_DEBOUNCE")
	if err != nil {
		return nil, err
	}

	threshold := viper.GetInt("STOCK_ALERT_THRESHOLD")
	if threshold < 1 {
		return nil, fmt.Errorf("invalid STOCK_ALERT_THRESHOLD %d: must be at least 1", threshold)
	}

	allowedOrigins := strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	config := &Config{
		Env:           viper.GetString("ENV"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		StorageDriver: driver,
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			RequestTimeout:  requestTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  allowedOrigins,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Cache: CacheConfig{
			ProductTTL:    productTTL,
			ListingTTL:    listingTTL,
			CategoriesTTL: categoriesTTL,
		},
		Worker: WorkerConfig{
			StockAlertThreshold: threshold,
			Debounce:            debounce,
		},
	}

	return config, nil
}

func durationVar(key string) (time.Duration, error) {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
