// Package tracker maintains the in-memory last-value view of the tracked
// symbols, fed by filtered change events.
package tracker

import (
	"sync"
	"time"

	"github.com/pkdone/stockticker/pkg/models"
)

// Clock abstracts wall-clock time for deterministic testing.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Value is the last observed price for a symbol and when it was observed.
type Value struct {
	Price     float64
	UpdatedAt time.Time
}

// State is a point-in-time copy of the tracker, safe to read without locks.
type State map[string]Value

// Tracker reduces update events into per-symbol state. Apply is called from
// the single consumer loop; Snapshot may be called concurrently by a
// renderer, hence the read-write lock.
type Tracker struct {
	watch *models.WatchList
	clock Clock

	mu     sync.RWMutex
	values map[string]Value
}

func New(watch *models.WatchList, clock Clock) *Tracker {
	return &Tracker{
		watch:  watch,
		clock:  clock,
		values: make(map[string]Value, watch.Len()),
	}
}

// Load installs the bootstrap snapshot. Every tracked symbol gets an entry;
// UpdatedAt stays zero so nothing starts out highlighted. After Load the
// key set never changes.
func (t *Tracker) Load(snapshot map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, sym := range t.watch.Symbols() {
		t.values[sym] = Value{Price: snapshot[sym]}
	}
}

// Apply folds one update event into the state and reports whether anything
// changed. Non-update kinds and untracked symbols are ignored; the filter
// should already have excluded them. Re-applying the same event is
// harmless: the price overwrite is idempotent and the timestamp refresh
// only extends a highlight.
func (t *Tracker) Apply(ev models.ChangeEvent) bool {
	if ev.Kind != models.KindUpdate || !t.watch.Contains(ev.Symbol) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[ev.Symbol] = Value{Price: ev.Price, UpdatedAt: t.clock.Now()}
	return true
}

// Snapshot returns a copy of the current state so a render pass never holds
// the lock.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state := make(State, len(t.values))
	for sym, v := range t.values {
		state[sym] = v
	}
	return state
}
