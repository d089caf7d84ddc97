package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/pkdone/stockticker/pkg/models"
)

const readBatchSize = 100

// streamSub pulls the change feed via blocking XREAD, resuming from the
// last delivered entry ID. Close marks the subscription dead for the next
// Next call; a Next already blocked on the feed is released by cancelling
// its context, which is how every consuming loop here shuts down.
type streamSub struct {
	client  *redis.Client
	stream  string
	lastID  string
	filter  FilterFunc
	pending []redis.XMessage
	closed  atomic.Bool
}

func (s *streamSub) Next(ctx context.Context) (models.ChangeEvent, error) {
	for {
		if s.closed.Load() {
			return models.ChangeEvent{}, ErrSubscriptionClosed
		}

		for len(s.pending) > 0 {
			msg := s.pending[0]
			s.pending = s.pending[1:]
			s.lastID = msg.ID

			ev, err := decodeEvent(msg)
			if err != nil {
				return models.ChangeEvent{}, err
			}
			if s.filter == nil || s.filter(ev) {
				return ev, nil
			}
		}

		streams, err := s.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{s.stream, s.lastID},
			Count:   readBatchSize,
			Block:   0, // block until the next entry arrives
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return models.ChangeEvent{}, ctx.Err()
			}
			return models.ChangeEvent{}, fmt.Errorf("change feed read: %w", err)
		}

		for _, st := range streams {
			s.pending = append(s.pending, st.Messages...)
		}
	}
}

func (s *streamSub) Close() error {
	s.closed.Store(true)
	return nil
}

// decodeEvent maps one stream entry onto a ChangeEvent. Entries are written
// exclusively by this gateway, so a missing symbol or kind means the feed
// contract is broken, not that the entry should be skipped.
func decodeEvent(msg redis.XMessage) (models.ChangeEvent, error) {
	symbol, ok := stringField(msg, fieldSymbol)
	if !ok {
		return models.ChangeEvent{}, fmt.Errorf("%w: entry %s has no symbol", ErrMalformedEvent, msg.ID)
	}
	kind, ok := stringField(msg, fieldKind)
	if !ok {
		return models.ChangeEvent{}, fmt.Errorf("%w: entry %s has no kind", ErrMalformedEvent, msg.ID)
	}

	ev := models.ChangeEvent{
		Symbol:   symbol,
		Kind:     models.EventKind(kind),
		Position: models.Position(msg.ID),
	}

	if raw, ok := stringField(msg, fieldPrice); ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.ChangeEvent{}, fmt.Errorf("%w: entry %s has bad price %q", ErrMalformedEvent, msg.ID, raw)
		}
		ev.Price = price
		ev.HasPrice = true
	}

	return ev, nil
}

func stringField(msg redis.XMessage, field string) (string, bool) {
	v, ok := msg.Values[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
