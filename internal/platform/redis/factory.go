package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"message-relay-backend/internal/common/config"
)

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// HealthChecker adapts a client to the readiness probe.
type HealthChecker struct {
	client *redis.Client
}

func NewHealthChecker(client *redis.Client) *HealthChecker {
	return &HealthChecker{client: client}
}

func (h *HealthChecker) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
