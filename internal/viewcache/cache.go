// Package viewcache caches rendered read views (invoice list, customer list,
// dashboard) and invalidates them after mutations.
package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// View names. A mutation invalidates every view that renders the data it touched.
const (
	ViewInvoices  = "invoices"
	ViewCustomers = "customers"
	ViewDashboard = "dashboard"
)

// Invalidator discards cached read views so the next read recomputes them.
type Invalidator interface {
	Invalidate(ctx context.Context, views ...string) error
}

// Cache stores JSON-encoded read views keyed by view name and a caller key.
//
// Every Invalidate advances the view's generation. A reader takes the
// generation before loading and passes it to Set, which drops the value if
// the view was invalidated in the meantime.
type Cache interface {
	Invalidator
	Get(ctx context.Context, view, key string, dst any) (bool, error)
	Generation(ctx context.Context, view string) (int64, error)
	Set(ctx context.Context, view, key string, gen int64, value any) error
}

// Nop is a Cache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (Nop) Generation(context.Context, string) (int64, error)      { return 0, nil }
func (Nop) Set(context.Context, string, string, int64, any) error  { return nil }
func (Nop) Invalidate(context.Context, ...string) error            { return nil }

var errStaleGeneration = errors.New("view invalidated during load")

// RedisCache keeps views in Redis. Each view has a set indexing its entries so
// invalidation removes every cached variant (query, page) at once.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache. Entries expire after ttl.
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "view"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// Get decodes the cached entry into dst. It reports false on a miss.
func (c *RedisCache) Get(ctx context.Context, view, key string, dst any) (bool, error) {
	b, err := c.client.Get(ctx, c.dataKey(view, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decoding cached %s view: %w", view, err)
	}
	return true, nil
}

// Generation returns the view's invalidation counter; zero before the first
// invalidation.
func (c *RedisCache) Generation(ctx context.Context, view string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(view)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores value under the view and key if the view is still at generation
// gen. The check and the write run in one WATCH transaction on the generation
// key, so an Invalidate landing in between aborts the write. A stale value is
// dropped without error.
func (c *RedisCache) Set(ctx context.Context, view, key string, gen int64, value any) error {
	if c.ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s view: %w", view, err)
	}

	genKey := c.genKey(view)
	dataKey := c.dataKey(view, key)
	indexKey := c.indexKey(view)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dataKey, b, c.ttl)
			pipe.SAdd(ctx, indexKey, dataKey)
			pipe.Expire(ctx, indexKey, c.ttl+time.Minute)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate advances the generation of each view, then removes every cached
// entry of it.
func (c *RedisCache) Invalidate(ctx context.Context, views ...string) error {
	for _, view := range views {
		if err := c.client.Incr(ctx, c.genKey(view)).Err(); err != nil {
			return fmt.Errorf("advancing %s view generation: %w", view, err)
		}

		indexKey := c.indexKey(view)
		keys, err := c.client.SMembers(ctx, indexKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("listing %s view entries: %w", view, err)
		}

		pipe := c.client.TxPipeline()
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, indexKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("invalidating %s view: %w", view, err)
		}
	}
	return nil
}

func (c *RedisCache) dataKey(view, key string) string {
	return fmt.Sprintf("%s:%s:data:%s", c.prefix, view, key)
}

func (c *RedisCache) genKey(view string) string {
	return fmt.Sprintf("%s:%s:gen", c.prefix, view)
}

func (c *RedisCache) indexKey(view string) string {
	return fmt.Sprintf("%s:%s:index", c.prefix, view)
}
