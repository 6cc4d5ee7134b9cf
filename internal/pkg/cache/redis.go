package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RaulAJaimes/eccomerce/internal/config"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
)

// NewRedisClient opens a Redis connection and verifies it with a ping.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until Redis answers or the attempts
// run out.
func WaitForRedis(cfg config.RedisConfig, attempts int, delay time.Duration, log *logger.Logger) (*redis.Client, error) {
	var client *redis.Client
	var err error

	for i := 0; i < attempts; i++ {
		client, err = NewRedisClient(cfg)
		if err == nil {
			return client, nil
		}

		if i < attempts-1 {
			log.Warnf("redis not ready (attempt %d/%d): %v", i+1, attempts, err)
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", attempts, err)
}
