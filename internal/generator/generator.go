// Package generator is the workload driver: it mutates the store at a
// steady rate so the change feed carries both tracked updates and
// background churn. It is not part of the consuming core and communicates
// with it only through the store.
package generator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/pkg/models"
)

// Workload performs, per cycle: one update to a random tracked symbol, one
// update to a random synthetic key, and one delete+reinsert of a random
// synthetic key. Cycles are paced by a rate limiter at one per interval
// (four writes per cycle at the default 250ms interval, ~16 ops/s).
type Workload struct {
	logger  *zap.Logger
	gw      store.Gateway
	watch   *models.WatchList
	rand    Rand
	limiter *rate.Limiter
}

func NewWorkload(logger *zap.Logger, gw store.Gateway, watch *models.WatchList, rnd Rand, interval time.Duration) *Workload {
	return &Workload{
		logger:  logger,
		gw:      gw,
		watch:   watch,
		rand:    rnd,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run loops until ctx is cancelled. Store errors are logged and the loop
// moves on; retry policy belongs to the store, not here.
func (w *Workload) Run(ctx context.Context) error {
	w.logger.Info("workload started", zap.Int("tracked_symbols", w.watch.Len()))

	for {
		if err := w.limiter.Wait(ctx); err != nil {
			// Wait fails once ctx is cancelled or its deadline can no
			// longer be met.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if err := w.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("workload cycle error", zap.Error(err))
		}
	}
}

func (w *Workload) cycle(ctx context.Context) error {
	symbols := w.watch.Symbols()
	sym := symbols[w.rand.Intn(len(symbols))]
	if err := w.gw.Write(ctx, sym, models.RandomPrice(w.rand, sym)); err != nil {
		return err
	}
	w.logger.Debug("tracked update", zap.String("symbol", sym))

	noise := models.RandomSyntheticKey(w.rand)
	if err := w.gw.Write(ctx, noise, models.RandomPrice(w.rand, noise)); err != nil {
		return err
	}

	// Delete+reinsert churn on a synthetic key, invisible to the consumer.
	churn := models.RandomSyntheticKey(w.rand)
	if err := w.gw.Delete(ctx, churn); err != nil {
		return err
	}
	if err := w.gw.Insert(ctx, churn, models.RandomPrice(w.rand, churn)); err != nil {
		return err
	}

	return nil
}
