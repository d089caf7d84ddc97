package tracker_test

import (
	"testing"
	"time"

	"github.com/pkdone/stockticker/internal/testutil"
	"github.com/pkdone/stockticker/internal/tracker"
	"github.com/pkdone/stockticker/pkg/models"
)

func update(symbol string, price float64) models.ChangeEvent {
	return models.ChangeEvent{
		Symbol:   symbol,
		Price:    price,
		HasPrice: true,
		Kind:     models.KindUpdate,
	}
}

func TestTracker_LastValueWins(t *testing.T) {
	watch := models.NewWatchList("MDB", "IBM")
	clock := testutil.NewMockClock(time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC))
	trk := tracker.New(watch, clock)
	trk.Load(map[string]float64{"MDB": 95, "IBM": 50})

	clock.Advance(time.Second)
	trk.Apply(update("MDB", 97))
	t1 := clock.Now()

	clock.Advance(time.Second)
	trk.Apply(update("IBM", 51))
	t2 := clock.Now()

	clock.Advance(time.Second)
	trk.Apply(update("MDB", 98))
	t3 := clock.Now()

	state := trk.Snapshot()
	if got := state["MDB"]; got.Price != 98 || !got.UpdatedAt.Equal(t3) {
		t.Errorf("MDB = %+v, want price 98 at %v", got, t3)
	}
	if got := state["IBM"]; got.Price != 51 || !got.UpdatedAt.Equal(t2) {
		t.Errorf("IBM = %+v, want price 51 at %v", got, t2)
	}
	if state["MDB"].UpdatedAt.Before(t1) {
		t.Error("MDB lastUpdated went backwards")
	}
}

func TestTracker_ApplyIsIdempotent(t *testing.T) {
	watch := models.NewWatchList("MDB")
	clock := testutil.NewMockClock(time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC))
	trk := tracker.New(watch, clock)
	trk.Load(map[string]float64{"MDB": 95})

	ev := update("MDB", 97)
	trk.Apply(ev)
	first := trk.Snapshot()

	trk.Apply(ev)
	second := trk.Snapshot()

	if first["MDB"] != second["MDB"] {
		t.Errorf("re-applied event changed state: %+v vs %+v", first["MDB"], second["MDB"])
	}
}

func TestTracker_IgnoresUntrackedAndNonUpdates(t *testing.T) {
	watch := models.NewWatchList("MDB")
	clock := testutil.NewMockClock(time.Now())
	trk := tracker.New(watch, clock)
	trk.Load(map[string]float64{"MDB": 95})
	before := trk.Snapshot()

	if trk.Apply(update("ZZZZZ", 1)) {
		t.Error("Apply accepted an untracked symbol")
	}
	if trk.Apply(models.ChangeEvent{Symbol: "MDB", Kind: models.KindDelete}) {
		t.Error("Apply accepted a delete event")
	}
	if trk.Apply(models.ChangeEvent{Symbol: "MDB", Price: 99, HasPrice: true, Kind: models.KindInsert}) {
		t.Error("Apply accepted an insert event")
	}

	after := trk.Snapshot()
	if len(after) != len(before) || after["MDB"] != before["MDB"] {
		t.Errorf("state changed: before %+v after %+v", before, after)
	}
}

func TestTracker_LoadCoversEveryTrackedSymbol(t *testing.T) {
	watch := models.DefaultWatchList()
	trk := tracker.New(watch, testutil.NewMockClock(time.Now()))

	// Partial snapshot still yields an entry per tracked symbol.
	trk.Load(map[string]float64{"MDB": 95})

	state := trk.Snapshot()
	if len(state) != watch.Len() {
		t.Fatalf("state has %d entries, want %d", len(state), watch.Len())
	}
	for _, sym := range watch.Symbols() {
		if _, ok := state[sym]; !ok {
			t.Errorf("missing tracked symbol %s", sym)
		}
	}
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	watch := models.NewWatchList("MDB")
	trk := tracker.New(watch, testutil.NewMockClock(time.Now()))
	trk.Load(map[string]float64{"MDB": 95})

	state := trk.Snapshot()
	state["MDB"] = tracker.Value{Price: 1}

	if got := trk.Snapshot()["MDB"].Price; got != 95 {
		t.Errorf("mutating a snapshot leaked into the tracker: price %v", got)
	}
}
