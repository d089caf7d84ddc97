// Package seed owns one-time dataset initialization: ~20k synthetic
// records plus the tracked symbols, all at random starting prices.
package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/pkg/models"
)

// ErrAlreadyInitialized means the namespace is populated; the operator must
// run clean first.
var ErrAlreadyInitialized = errors.New("dataset already initialized")

// BulkStore is the slice of the store used for seeding.
type BulkStore interface {
	Initialized(ctx context.Context) (bool, error)
	SeedRecords(ctx context.Context, records []store.Record) error
}

// Dataset builds the full initial record set: every synthetic key at a low
// seed price, then the watch list at its normal price ranges.
func Dataset(watch *models.WatchList, rnd models.Rand) []store.Record {
	synthetic := models.SyntheticKeys()
	records := make([]store.Record, 0, len(synthetic)+watch.Len())

	for _, key := range synthetic {
		records = append(records, store.Record{Symbol: key, Price: models.RandomSeedPrice(rnd)})
	}
	for _, sym := range watch.Symbols() {
		records = append(records, store.Record{Symbol: sym, Price: models.RandomPrice(rnd, sym)})
	}
	return records
}

// Run seeds the dataset unless the namespace is already populated.
func Run(ctx context.Context, bs BulkStore, watch *models.WatchList, rnd models.Rand, logger *zap.Logger) error {
	initialized, err := bs.Initialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	records := Dataset(watch, rnd)
	logger.Info("seeding dataset", zap.Int("records", len(records)))

	if err := bs.SeedRecords(ctx, records); err != nil {
		return err
	}

	logger.Info("dataset seeded")
	return nil
}
