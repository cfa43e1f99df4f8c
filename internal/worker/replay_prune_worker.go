package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
)

// ReplayPruneWorker removes spent signatures once they are older than the
// retention window, along with reservations abandoned by crashed requests.
type ReplayPruneWorker struct {
	pruner     application.ReplayPruner
	retention  time.Duration
	pendingTTL time.Duration
	interval   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewReplayPruneWorker(
	pruner application.ReplayPruner,
	retention time.Duration,
	pendingTTL time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *ReplayPruneWorker {
	return &ReplayPruneWorker{
		pruner:     pruner,
		retention:  retention,
		pendingTTL: pendingTTL,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

func (w *ReplayPruneWorker) Start(ctx context.Context) {
	w.logger.Info("replay prune worker started",
		"interval", w.interval,
		"retention", w.retention,
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("replay prune worker stopping")
			return
		case <-ticker.C:
			if _, err := w.PruneOnce(ctx); err != nil {
				w.logger.Error("replay pruning failed", "error", err)
			}
		}
	}
}

// PruneOnce runs a single pruning pass and returns how many entries went.
func (w *ReplayPruneWorker) PruneOnce(ctx context.Context) (int64, error) {
	now := w.now()
	removed, err := w.pruner.Prune(ctx, now.Add(-w.retention), now.Add(-w.pendingTTL))
	if err != nil {
		return removed, err
	}

	if removed > 0 {
		w.logger.Info("pruned replay entries", "removed", removed)
	}
	return removed, nil
}
