package jobs

import (
	"context"
	"errors"
	"log/slog"

	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
)

type FinalizeQueue interface {
	Pending(ctx context.Context) ([]string, error)
	Ack(ctx context.Context, userID string) error
}

type ClaimFinalizer interface {
	Finalize(ctx context.Context, userID string) error
}

// ClaimSweeper retries claim finalizations that failed during webhook
// processing. Finalize is idempotent, so a crash between Finalize and Ack
// only causes a harmless repeat.
type ClaimSweeper struct {
	queue  FinalizeQueue
	claims ClaimFinalizer
	logger *slog.Logger
}

func NewClaimSweeper(queue FinalizeQueue, claims ClaimFinalizer, logger *slog.Logger) *ClaimSweeper {
	return &ClaimSweeper{queue: queue, claims: claims, logger: logger}
}

type SweepResult struct {
	Finalized int
	Dropped   int
	Failed    int
}

func (s *ClaimSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	ids, err := s.queue.Pending(ctx)
	if err != nil {
		return res, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		err := s.claims.Finalize(ctx, id)
		switch {
		case err == nil:
			res.Finalized++
		case errors.Is(err, pdomain.ErrProfileNotFound):
			// profile deleted since; nothing left to claim
			res.Dropped++
		default:
			res.Failed++
			s.logger.WarnContext(ctx, "claim finalize retry failed", slog.String("user_id", id), slog.Any("error", err))
			continue
		}

		if err := s.queue.Ack(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to ack finalize", slog.String("user_id", id), slog.Any("error", err))
		}
	}

	if len(ids) > 0 {
		s.logger.InfoContext(ctx, "claim sweep finished",
			slog.Int("finalized", res.Finalized),
			slog.Int("dropped", res.Dropped),
			slog.Int("failed", res.Failed),
		)
	}
	return res, nil
}

// Run adapts Sweep to Scheduler.Add.
func (s *ClaimSweeper) Run(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.ErrorContext(ctx, "claim sweep failed", slog.Any("error", err))
	}
}
