package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/internal/tracker"
	"github.com/pkdone/stockticker/pkg/models"
)

// MockClock is a manually advanced clock.
type MockClock struct {
	Mu      sync.Mutex
	Current time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{Current: start}
}

func (c *MockClock) Now() time.Time {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	return c.Current
}

func (c *MockClock) Advance(d time.Duration) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Current = c.Current.Add(d)
}

// MockRand cycles through a fixed list of values.
type MockRand struct {
	Ints []int
	pos  int
}

func (r *MockRand) Intn(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[r.pos%len(r.Ints)]
	r.pos++
	return v % n
}

func (r *MockRand) Float64() float64 { return 0.5 }

// Op records one mutation issued against the MockGateway.
type Op struct {
	Kind   models.EventKind
	Symbol string
	Price  float64
}

// SubscribeCall records one SubscribeFrom invocation.
type SubscribeCall struct {
	Pos      models.Position
	Filtered bool
}

// MockGateway scripts the store for consumer and generator tests. Feed is
// the sequence of raw events that occur after the process starts; both the
// "now" anchor subscription and resumed subscriptions are served from it.
type MockGateway struct {
	Mu             sync.Mutex
	Snapshot       map[string]float64
	Feed           []models.ChangeEvent
	Ops            []Op
	SubscribeCalls []SubscribeCall

	// BlockWhenDrained makes subscriptions block on ctx after the scripted
	// feed runs out, instead of ending the loop.
	BlockWhenDrained bool

	// IgnoreFilter delivers every feed event regardless of the filter, to
	// exercise defensive paths downstream of the filter contract.
	IgnoreFilter bool

	InitializedVal bool
}

var _ store.Gateway = (*MockGateway)(nil)

func (m *MockGateway) Read(ctx context.Context, symbol string) (float64, bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	price, ok := m.Snapshot[symbol]
	return price, ok, nil
}

func (m *MockGateway) SnapshotRead(ctx context.Context, symbols []string) (map[string]float64, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		if price, ok := m.Snapshot[sym]; ok {
			out[sym] = price
		}
	}
	return out, nil
}

func (m *MockGateway) Write(ctx context.Context, symbol string, price float64) error {
	m.record(Op{Kind: models.KindUpdate, Symbol: symbol, Price: price})
	return nil
}

func (m *MockGateway) Insert(ctx context.Context, symbol string, price float64) error {
	m.record(Op{Kind: models.KindInsert, Symbol: symbol, Price: price})
	return nil
}

func (m *MockGateway) Delete(ctx context.Context, symbol string) error {
	m.record(Op{Kind: models.KindDelete, Symbol: symbol})
	return nil
}

func (m *MockGateway) record(op Op) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Ops = append(m.Ops, op)
}

func (m *MockGateway) SubscribeFrom(ctx context.Context, pos models.Position, filter store.FilterFunc) (store.Subscription, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	m.SubscribeCalls = append(m.SubscribeCalls, SubscribeCall{Pos: pos, Filtered: filter != nil})

	start := 0
	if pos != models.PositionNow {
		for i, ev := range m.Feed {
			if ev.Position == pos {
				start = i + 1
				break
			}
		}
	}

	if m.IgnoreFilter {
		filter = nil
	}
	return &MockSubscription{
		Events:           m.Feed[start:],
		Filter:           filter,
		BlockWhenDrained: m.BlockWhenDrained,
	}, nil
}

func (m *MockGateway) Initialized(ctx context.Context) (bool, error) {
	return m.InitializedVal, nil
}

func (m *MockGateway) Close() error { return nil }

// MockSubscription replays scripted events. Once drained it either blocks
// on ctx (live-feed shape) or returns context.DeadlineExceeded, which is a
// clean way to stop a consuming loop in tests.
type MockSubscription struct {
	Events           []models.ChangeEvent
	Filter           store.FilterFunc
	BlockWhenDrained bool

	Mu     sync.Mutex
	Index  int
	Closed bool
}

func (s *MockSubscription) Next(ctx context.Context) (models.ChangeEvent, error) {
	for {
		s.Mu.Lock()
		if s.Closed {
			s.Mu.Unlock()
			return models.ChangeEvent{}, store.ErrSubscriptionClosed
		}
		if s.Index >= len(s.Events) {
			s.Mu.Unlock()
			if s.BlockWhenDrained {
				<-ctx.Done()
				return models.ChangeEvent{}, ctx.Err()
			}
			return models.ChangeEvent{}, context.DeadlineExceeded
		}
		ev := s.Events[s.Index]
		s.Index++
		s.Mu.Unlock()

		if s.Filter == nil || s.Filter(ev) {
			return ev, nil
		}
	}
}

func (s *MockSubscription) Close() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Closed = true
	return nil
}

// SpyRenderer records renderer calls.
type SpyRenderer struct {
	Mu            sync.Mutex
	StartSnapshot map[string]float64
	Events        []models.ChangeEvent
	States        []tracker.State
	Closed        bool
}

func (r *SpyRenderer) Start(snapshot map[string]float64) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.StartSnapshot = snapshot
	return nil
}

func (r *SpyRenderer) OnEvent(ev models.ChangeEvent, state tracker.State) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Events = append(r.Events, ev)
	r.States = append(r.States, state)
	return nil
}

func (r *SpyRenderer) Close() error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Closed = true
	return nil
}
