package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/pkg/models"
)

// Bootstrap establishes the consistent starting point for a consumer: a
// resume position on the change feed plus a value snapshot of every tracked
// symbol.
//
// Order matters. A raw (unfiltered) subscription is opened at "now" and
// blocked on until a single event arrives; that event's position becomes
// the anchor. Only then is the snapshot read, so the snapshot reflects at
// least as much state as the anchor and nothing after the anchor can be
// lost. One update per symbol may be observed twice across the
// snapshot/resume boundary; re-applying it is idempotent for a last-value
// map, which is the intended mitigation rather than a stronger guarantee.
//
// Precondition: live traffic must exist on the store. With none, Bootstrap
// blocks indefinitely on the first event (or until ctx is cancelled).
func Bootstrap(ctx context.Context, gw store.Gateway, watch *models.WatchList, logger *zap.Logger) (map[string]float64, models.Position, error) {
	sub, err := gw.SubscribeFrom(ctx, models.PositionNow, nil)
	if err != nil {
		return nil, "", fmt.Errorf("bootstrap subscribe: %w", err)
	}
	defer sub.Close()

	logger.Debug("waiting for anchor event")
	ev, err := sub.Next(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("bootstrap anchor: %w", err)
	}
	anchor := ev.Position

	snapshot, err := gw.SnapshotRead(ctx, watch.Symbols())
	if err != nil {
		return nil, "", fmt.Errorf("bootstrap snapshot: %w", err)
	}
	for _, sym := range watch.Symbols() {
		if _, ok := snapshot[sym]; !ok {
			return nil, "", fmt.Errorf("bootstrap snapshot missing symbol %q (dataset not initialized?)", sym)
		}
	}

	logger.Debug("bootstrap complete",
		zap.String("anchor", string(anchor)),
		zap.Int("symbols", len(snapshot)))
	return snapshot, anchor, nil
}
