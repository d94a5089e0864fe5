package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/folioawards/folio-backend/internal/storage/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type scriptedFinalizer map[string]error

func (s scriptedFinalizer) Finalize(_ context.Context, userID string) error {
	return s[userID]
}

func TestClaimSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	queue := redisstore.NewFinalizeQueue(client)
	for _, id := range []string{"ok", "gone", "flaky"} {
		require.NoError(t, queue.Enqueue(ctx, id))
	}

	finalizer := scriptedFinalizer{
		"gone":  fmt.Errorf("finalize claim for gone: %w", pdomain.ErrProfileNotFound),
		"flaky": errors.New("db timeout"),
	}
	sweeper := NewClaimSweeper(queue, finalizer, discard())

	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Finalized: 1, Dropped: 1, Failed: 1}, res)

	pending, err := queue.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"flaky"}, pending)

	delete(finalizer, "flaky")
	res, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Finalized)

	pending, err = queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestClaimSweeper_QueueDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewClaimSweeper(redisstore.NewFinalizeQueue(client), scriptedFinalizer{}, discard()).Sweep(context.Background())
	assert.Error(t, err)
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(discard())

	assert.Error(t, s.Add("not a spec", "bad", func(context.Context) {}))

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("@every 1s", "tick", func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
