package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/folioawards/folio-backend/config"
	"github.com/redis/go-redis/v9"
)

// OpenRedis connects and pings. Callers may keep running on a failed ping;
// every redis-backed feature degrades instead of failing requests.
func OpenRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pctx).Err(); err != nil {
		return client, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
