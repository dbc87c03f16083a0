package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Loader[K comparable, T any] interface {
	Load(context.Context, K) (T, error)
}

type LoaderFunc[K comparable, T any] func(context.Context, K) (T, error)

func (lf LoaderFunc[K, T]) Load(ctx context.Context, key K) (T, error) {
	return lf(ctx, key)
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache is a keyed read-through cache. Values expire after the configured
// TTL, concurrent loads of the same key are coalesced.
type Cache[K comparable, T any] struct {
	name   string
	ttl    time.Duration
	loader Loader[K, T]
	group  singleflight.Group

	l      sync.RWMutex
	values map[K]entry[T]

	startOnce sync.Once
	wg        sync.WaitGroup

	// now is replaced in tests
	now func() time.Time
}

func NewCache[K comparable, T any](name string, ttl time.Duration, loader Loader[K, T]) *Cache[K, T] {
	return &Cache[K, T]{
		name:   name,
		ttl:    ttl,
		loader: loader,
		values: make(map[K]entry[T]),
		now:    time.Now,
	}
}

// Get returns the cached value for key or loads it. A load is shared by
// all callers waiting for the same key and is not cancelled if one of them
// gives up; each caller only stops waiting when its own ctx is done.
func (c *Cache[K, T]) Get(ctx context.Context, key K) (T, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}

	ch := c.group.DoChan(fmt.Sprint(key), func() (any, error) {
		// another caller might have loaded the value while we were waiting
		if value, ok := c.lookup(key); ok {
			return value, nil
		}

		value, err := c.loader.Load(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}

		c.l.Lock()
		c.values[key] = entry[T]{value: value, fetchedAt: c.now()}
		c.l.Unlock()

		return value, nil
	})

	var zero T

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}

		return res.Val.(T), nil

	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[K, T]) lookup(key K) (T, bool) {
	c.l.RLock()
	defer c.l.RUnlock()

	e, ok := c.values[key]
	if !ok || c.isStale(e) {
		var zero T
		return zero, false
	}

	return e.value, true
}

func (c *Cache[K, T]) isStale(e entry[T]) bool {
	return c.now().Sub(e.fetchedAt) > c.ttl
}

// Invalidate drops the cached value for key.
func (c *Cache[K, T]) Invalidate(key K) {
	c.l.Lock()
	defer c.l.Unlock()

	delete(c.values, key)
}

func (c *Cache[K, T]) Len() int {
	c.l.RLock()
	defer c.l.RUnlock()

	return len(c.values)
}

func (c *Cache[K, T]) purge() int {
	c.l.Lock()
	defer c.l.Unlock()

	count := 0
	for key, e := range c.values {
		if c.isStale(e) {
			delete(c.values, key)
			count++
		}
	}

	return count
}

func (c *Cache[K, T]) Wait() {
	c.wg.Wait()
}

// Start periodically removes expired values until ctx is cancelled.
func (c *Cache[K, T]) Start(ctx context.Context) {
	if c.ttl <= 0 {
		return
	}

	c.startOnce.Do(func() {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()

			ticker := time.NewTicker(c.ttl)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return
				}

				if count := c.purge(); count > 0 {
					slog.Info("purged expired cache values", "cache", c.name, "count", count)
				}
			}
		}()
	})
}
