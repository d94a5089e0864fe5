package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// FinalizeQueue holds user ids whose claim finalization failed after the
// profile sync committed. It is a set, so re-enqueueing is harmless.
type FinalizeQueue struct {
	client *redis.Client
}

func NewFinalizeQueue(client *redis.Client) *FinalizeQueue {
	return &FinalizeQueue{client: client}
}

func (q *FinalizeQueue) Enqueue(ctx context.Context, userID string) error {
	if err := q.client.SAdd(ctx, finalizePendingKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue finalize for %s: %w", userID, err)
	}
	return nil
}

func (q *FinalizeQueue) Pending(ctx context.Context) ([]string, error) {
	ids, err := q.client.SMembers(ctx, finalizePendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending finalizations: %w", err)
	}
	return ids, nil
}

func (q *FinalizeQueue) Ack(ctx context.Context, userID string) error {
	if err := q.client.SRem(ctx, finalizePendingKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to ack finalize for %s: %w", userID, err)
	}
	return nil
}
