// Package feed turns the store's raw change feed into tracker updates: it
// filters events, bootstraps a consistent resume point, and runs the single
// sequential consumer loop.
package feed

import (
	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/pkg/models"
)

// TrackedUpdates builds the filter handed to the subscription: update
// events that touched the price field, restricted to the watch list.
// Stateless and order-preserving.
func TrackedUpdates(watch *models.WatchList) store.FilterFunc {
	return func(ev models.ChangeEvent) bool {
		return ev.Kind == models.KindUpdate && ev.HasPrice && watch.Contains(ev.Symbol)
	}
}
