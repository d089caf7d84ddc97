package store

import (
	"context"
	"errors"

	"github.com/pkdone/stockticker/pkg/models"
)

// ErrMalformedEvent indicates a change-feed entry that is missing a field
// the feed contract guarantees. Consumers treat this as fatal rather than
// skipping the entry.
var ErrMalformedEvent = errors.New("malformed change-feed event")

// ErrSubscriptionClosed is returned by Next after Close has been called.
var ErrSubscriptionClosed = errors.New("subscription closed")

// FilterFunc narrows a subscription to matching events. It is handed to
// SubscribeFrom so the gateway applies it before delivery, the same way a
// store-side predicate would. A nil filter delivers every event.
type FilterFunc func(models.ChangeEvent) bool

// Record is one keyed price entry in the store.
type Record struct {
	Symbol string
	Price  float64
}

// Subscription is a blocking pull over the change feed. The sequence is
// infinite; Next only returns an error on store failure, context
// cancellation, or after Close.
type Subscription interface {
	Next(ctx context.Context) (models.ChangeEvent, error)
	Close() error
}

// Gateway abstracts the persistent keyed-record store and its change feed.
type Gateway interface {
	// Read returns the current price for symbol; ok is false if absent.
	Read(ctx context.Context, symbol string) (price float64, ok bool, err error)

	// SnapshotRead returns the current prices for the given symbols.
	// Absent symbols are simply missing from the result.
	SnapshotRead(ctx context.Context, symbols []string) (map[string]float64, error)

	// Write sets a price and emits an update event on the change feed.
	Write(ctx context.Context, symbol string, price float64) error

	// Insert sets a price and emits an insert event on the change feed.
	Insert(ctx context.Context, symbol string, price float64) error

	// Delete removes a record and emits a delete event on the change feed.
	Delete(ctx context.Context, symbol string) error

	// SubscribeFrom opens a subscription starting strictly after pos.
	// models.PositionNow starts at the present moment.
	SubscribeFrom(ctx context.Context, pos models.Position, filter FilterFunc) (Subscription, error)

	// Initialized reports whether the dataset namespace is non-empty.
	Initialized(ctx context.Context) (bool, error)

	Close() error
}
