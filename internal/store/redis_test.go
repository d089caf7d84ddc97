package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pkdone/stockticker/internal/feed"
	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/pkg/config"
	"github.com/pkdone/stockticker/pkg/models"
)

const testStream = "stocks:changes"

func newTestStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.NewRedisStore(rdb, config.FeedConfig{Stream: testStream, MaxLen: 1000})
	t.Cleanup(func() { st.Close() })
	return st, mr
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRedisStore_WriteReadSnapshot(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := testCtx(t)

	if err := st.Write(ctx, "MDB", 95); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := st.Write(ctx, "IBM", 50.5); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	price, ok, err := st.Read(ctx, "MDB")
	if err != nil || !ok || price != 95 {
		t.Errorf("Read MDB = (%v, %v, %v), want (95, true, nil)", price, ok, err)
	}

	_, ok, err = st.Read(ctx, "NOPE")
	if err != nil || ok {
		t.Errorf("Read absent = (ok=%v, err=%v), want absent without error", ok, err)
	}

	snapshot, err := st.SnapshotRead(ctx, []string{"MDB", "IBM", "NOPE"})
	if err != nil {
		t.Fatalf("SnapshotRead failed: %v", err)
	}
	if len(snapshot) != 2 || snapshot["MDB"] != 95 || snapshot["IBM"] != 50.5 {
		t.Errorf("snapshot = %v", snapshot)
	}
}

func TestRedisStore_FeedCarriesEveryMutationInOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := testCtx(t)

	if err := st.Write(ctx, "MDB", 95); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, "K10001"); err != nil {
		t.Fatal(err)
	}
	if err := st.Insert(ctx, "K10001", 14); err != nil {
		t.Fatal(err)
	}

	sub, err := st.SubscribeFrom(ctx, models.Position("0"), nil)
	if err != nil {
		t.Fatalf("SubscribeFrom failed: %v", err)
	}
	defer sub.Close()

	wantKinds := []models.EventKind{models.KindUpdate, models.KindDelete, models.KindInsert}
	var lastPos models.Position
	for i, want := range wantKinds {
		ev, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		if ev.Kind != want {
			t.Errorf("event %d kind = %s, want %s", i, ev.Kind, want)
		}
		if ev.Position <= lastPos {
			t.Errorf("positions not ascending: %s after %s", ev.Position, lastPos)
		}
		lastPos = ev.Position

		if want == models.KindDelete && ev.HasPrice {
			t.Error("delete event carries a price")
		}
		if want != models.KindDelete && !ev.HasPrice {
			t.Error("write event missing its price")
		}
	}
}

func TestRedisStore_SubscriptionAppliesFilterBeforeDelivery(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := testCtx(t)
	watch := models.NewWatchList("MDB")

	if err := st.Write(ctx, "A12345", 12); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, "K10001"); err != nil {
		t.Fatal(err)
	}
	if err := st.Write(ctx, "MDB", 97); err != nil {
		t.Fatal(err)
	}

	sub, err := st.SubscribeFrom(ctx, models.Position("0"), feed.TrackedUpdates(watch))
	if err != nil {
		t.Fatalf("SubscribeFrom failed: %v", err)
	}
	defer sub.Close()

	ev, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Symbol != "MDB" || ev.Price != 97 {
		t.Errorf("filtered event = %+v, want MDB@97", ev)
	}
}

func TestRedisStore_ResumeSkipsConsumedEvents(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := testCtx(t)

	if err := st.Write(ctx, "MDB", 95); err != nil {
		t.Fatal(err)
	}
	if err := st.Write(ctx, "MDB", 96); err != nil {
		t.Fatal(err)
	}

	sub, err := st.SubscribeFrom(ctx, models.Position("0"), nil)
	if err != nil {
		t.Fatal(err)
	}
	first, err := sub.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sub.Close()

	resumed, err := st.SubscribeFrom(ctx, first.Position, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resumed.Close()

	ev, err := resumed.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Price != 96 {
		t.Errorf("resumed event price = %v, want 96 (strictly after the token)", ev.Price)
	}
}

func TestRedisStore_MalformedEntryIsFatal(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := testCtx(t)

	// An entry no gateway would write: no symbol field.
	if _, err := mr.XAdd(testStream, "*", []string{"kind", "update"}); err != nil {
		t.Fatalf("XAdd failed: %v", err)
	}

	sub, err := st.SubscribeFrom(ctx, models.Position("0"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	_, err = sub.Next(ctx)
	if !errors.Is(err, store.ErrMalformedEvent) {
		t.Errorf("Next = %v, want ErrMalformedEvent", err)
	}
}

func TestRedisStore_ClosedSubscription(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := testCtx(t)

	sub, err := st.SubscribeFrom(ctx, models.Position("0"), nil)
	if err != nil {
		t.Fatal(err)
	}
	sub.Close()

	if _, err := sub.Next(ctx); !errors.Is(err, store.ErrSubscriptionClosed) {
		t.Errorf("Next after Close = %v, want ErrSubscriptionClosed", err)
	}
}

func TestRedisStore_InitializedSeedWipe(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := testCtx(t)

	ok, err := st.Initialized(ctx)
	if err != nil || ok {
		t.Fatalf("Initialized on empty store = (%v, %v), want (false, nil)", ok, err)
	}

	records := []store.Record{
		{Symbol: "MDB", Price: 95},
		{Symbol: "A10000", Price: 12},
		{Symbol: "K10000", Price: 13},
	}
	if err := st.SeedRecords(ctx, records); err != nil {
		t.Fatalf("SeedRecords failed: %v", err)
	}

	ok, err = st.Initialized(ctx)
	if err != nil || !ok {
		t.Fatalf("Initialized after seed = (%v, %v), want (true, nil)", ok, err)
	}

	price, found, err := st.Read(ctx, "A10000")
	if err != nil || !found || price != 12 {
		t.Errorf("Read seeded record = (%v, %v, %v)", price, found, err)
	}

	removed, err := st.Wipe(ctx)
	if err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}
	if removed != int64(len(records)) {
		t.Errorf("Wipe removed %d records, want %d", removed, len(records))
	}

	ok, err = st.Initialized(ctx)
	if err != nil || ok {
		t.Errorf("Initialized after wipe = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestRedisStore_SeedDoesNotFeedTheStream(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := testCtx(t)

	if err := st.SeedRecords(ctx, []store.Record{{Symbol: "MDB", Price: 95}}); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(testStream) {
		t.Error("seeding created change-feed entries")
	}

	if err := st.Write(ctx, "MDB", 96); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(testStream) {
		t.Error("live write did not create a change-feed entry")
	}
}
