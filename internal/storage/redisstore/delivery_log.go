package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryLog remembers webhook deliveries that were fully processed so a
// provider retry can be acknowledged without touching the database again.
type DeliveryLog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryLog(client *redis.Client, ttl time.Duration) *DeliveryLog {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &DeliveryLog{client: client, ttl: ttl}
}

// Seen reports whether the delivery was already marked.
func (l *DeliveryLog) Seen(ctx context.Context, source, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	err := l.client.Get(ctx, deliveryKey(source, id)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read delivery %s/%s: %w", source, id, err)
	}
	return true, nil
}

// Mark records a processed delivery. Call it only after the mutation committed.
func (l *DeliveryLog) Mark(ctx context.Context, source, id string) error {
	if id == "" {
		return nil
	}
	if err := l.client.Set(ctx, deliveryKey(source, id), time.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark delivery %s/%s: %w", source, id, err)
	}
	return nil
}
