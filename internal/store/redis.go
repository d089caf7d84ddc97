package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/pkdone/stockticker/pkg/config"
	"github.com/pkdone/stockticker/pkg/models"
)

const (
	keyPrefix = "stock:"

	fieldSymbol = "sym"
	fieldPrice  = "price"
	fieldKind   = "kind"

	seedBatchSize = 500
)

// Compile-time check to ensure RedisStore implements Gateway
var _ Gateway = (*RedisStore)(nil)

// RedisStore keeps one record per symbol under "stock:<sym>" and appends
// every mutation to a single Redis Stream, whose entry IDs double as resume
// positions. The stream is MaxLen-trimmed, so resume tokens older than the
// retained window fail the subscription with a missed-update hole; callers
// resume promptly after anchoring.
type RedisStore struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStore(client *redis.Client, feed config.FeedConfig) *RedisStore {
	return &RedisStore{
		client: client,
		stream: feed.Stream,
		maxLen: feed.MaxLen,
	}
}

func (r *RedisStore) Read(ctx context.Context, symbol string) (float64, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+symbol).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("read %s: bad stored price %q: %w", symbol, val, err)
	}
	return price, true, nil
}

// SnapshotRead fetches all symbols in one MGET; absent keys are skipped so
// the caller can detect an incomplete dataset.
func (r *RedisStore) SnapshotRead(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = keyPrefix + sym
	}

	results, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}

	snapshot := make(map[string]float64, len(symbols))
	for i, val := range results {
		payload, ok := val.(string)
		if !ok || payload == "" {
			continue
		}
		price, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot read: bad stored price for %s: %w", symbols[i], err)
		}
		snapshot[symbols[i]] = price
	}
	return snapshot, nil
}

func (r *RedisStore) Write(ctx context.Context, symbol string, price float64) error {
	return r.emit(ctx, models.KindUpdate, symbol, price)
}

func (r *RedisStore) Insert(ctx context.Context, symbol string, price float64) error {
	return r.emit(ctx, models.KindInsert, symbol, price)
}

// emit applies the record write and appends the feed entry in one pipeline
// so a reader never observes a feed event without the matching record state.
func (r *RedisStore) emit(ctx context.Context, kind models.EventKind, symbol string, price float64) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, keyPrefix+symbol, strconv.FormatFloat(price, 'f', -1, 64), 0)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			fieldSymbol: symbol,
			fieldPrice:  strconv.FormatFloat(price, 'f', -1, 64),
			fieldKind:   string(kind),
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", kind, symbol, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, symbol string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, keyPrefix+symbol)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			fieldSymbol: symbol,
			fieldKind:   string(models.KindDelete),
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", symbol, err)
	}
	return nil
}

func (r *RedisStore) SubscribeFrom(ctx context.Context, pos models.Position, filter FilterFunc) (Subscription, error) {
	return &streamSub{
		client: r.client,
		stream: r.stream,
		lastID: string(pos),
		filter: filter,
	}, nil
}

// Initialized probes for any record under the namespace prefix, the
// equivalent of the original find-one existence check.
func (r *RedisStore) Initialized(ctx context.Context) (bool, error) {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return false, fmt.Errorf("initialized probe: %w", err)
		}
		if len(keys) > 0 {
			return true, nil
		}
		if next == 0 {
			return false, nil
		}
		cursor = next
	}
}

// SeedRecords bulk-loads the dataset in pipelined batches. Seeding does not
// emit feed events: nothing subscribes during initialization and ~20k
// entries would only push live traffic out of the trimmed stream.
func (r *RedisStore) SeedRecords(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += seedBatchSize {
		end := start + seedBatchSize
		if end > len(records) {
			end = len(records)
		}

		pipe := r.client.Pipeline()
		for _, rec := range records[start:end] {
			pipe.Set(ctx, keyPrefix+rec.Symbol, strconv.FormatFloat(rec.Price, 'f', -1, 64), 0)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("seed batch: %w", err)
		}
	}
	return nil
}

// Wipe removes every record in the namespace plus the change stream and
// returns how many keys were removed.
func (r *RedisStore) Wipe(ctx context.Context) (int64, error) {
	var removed int64
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 500).Result()
		if err != nil {
			return removed, fmt.Errorf("wipe scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := r.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("wipe unlink: %w", err)
			}
			removed += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	if _, err := r.client.Unlink(ctx, r.stream).Result(); err != nil {
		return removed, fmt.Errorf("wipe stream: %w", err)
	}
	return removed, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
