package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/internal/tracker"
	"github.com/pkdone/stockticker/pkg/models"
)

// Renderer consumes tracker state changes. Start is called once with the
// bootstrap snapshot before any event; OnEvent is called after each applied
// event with a state copy, so implementations never touch tracker locks.
type Renderer interface {
	Start(snapshot map[string]float64) error
	OnEvent(ev models.ChangeEvent, state tracker.State) error
	Close() error
}

// Consumer is the single sequential consuming path: bootstrap, then pull
// the next filtered event, apply it to the tracker, and render, one event
// at a time. The blocking pull is the only suspension point; cancelling ctx
// there is the shutdown path.
type Consumer struct {
	gw     store.Gateway
	watch  *models.WatchList
	trk    *tracker.Tracker
	render Renderer
	logger *zap.Logger
}

func NewConsumer(gw store.Gateway, watch *models.WatchList, trk *tracker.Tracker, render Renderer, logger *zap.Logger) *Consumer {
	return &Consumer{
		gw:     gw,
		watch:  watch,
		trk:    trk,
		render: render,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled or the store fails. A cancelled context
// surfaces as ctx.Err() so callers can distinguish interrupt from fault.
func (c *Consumer) Run(ctx context.Context) error {
	snapshot, anchor, err := Bootstrap(ctx, c.gw, c.watch, c.logger)
	if err != nil {
		return err
	}
	c.trk.Load(snapshot)

	if err := c.render.Start(snapshot); err != nil {
		return fmt.Errorf("renderer start: %w", err)
	}
	defer c.render.Close()

	sub, err := c.gw.SubscribeFrom(ctx, anchor, TrackedUpdates(c.watch))
	if err != nil {
		return fmt.Errorf("subscribe from %s: %w", anchor, err)
	}
	defer sub.Close()

	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		// The filter guarantees the price field on delivered events; its
		// absence here means the feed contract is broken.
		if !ev.HasPrice {
			return fmt.Errorf("%w: update for %s without price after filtering", store.ErrMalformedEvent, ev.Symbol)
		}

		if !c.trk.Apply(ev) {
			c.logger.Warn("ignoring event outside watch list", zap.String("symbol", ev.Symbol))
			continue
		}

		if err := c.render.OnEvent(ev, c.trk.Snapshot()); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
}
