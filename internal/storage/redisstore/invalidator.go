package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Invalidation is published for the presentation layer to revalidate paths.
type Invalidation struct {
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}

type Invalidator struct {
	client  *redis.Client
	channel string
}

func NewInvalidator(client *redis.Client) *Invalidator {
	return &Invalidator{client: client, channel: InvalidationChannel}
}

func (i *Invalidator) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	data, err := json.Marshal(Invalidation{Paths: paths, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}
