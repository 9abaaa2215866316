// Package memo caches the result of expensive accessors per owning instance.
//
// An owner embeds a Cache and routes each lazily computed property through Get
// under a stable key. The computation runs at most once per key for the
// lifetime of the Cache; concurrent first accesses share one in-flight call.
// Failed computations are not stored so the next access tries again.
package memo

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a per-instance store of computed values, the zero value is ready
// to use. A Cache must not be copied after first use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	group   singleflight.Group
}

// Get returns the value stored under key, computing it with fn on first use.
// fn receives the context of the caller that runs it. A caller that joined
// someone else's computation and only lost because that caller's context
// ended tries again under its own ctx.
func Get[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	for {
		if v, ok := c.load(key); ok {
			return cast[T](v), nil
		}

		led := false
		v, err, _ := c.group.Do(key, func() (interface{}, error) {
			led = true

			// another caller may have stored the value between load and Do
			if v, ok := c.load(key); ok {
				return v, nil
			}

			v, err := fn(ctx)
			if err != nil {
				return nil, err
			}

			c.store(key, v)
			return v, nil
		})
		if err != nil {
			if !led && ctx.Err() == nil && isContextError(err) {
				continue
			}

			var zero T
			return zero, err
		}

		return cast[T](v), nil
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// cast tolerates a stored nil when T is an interface type
func cast[T any](v interface{}) T {
	t, _ := v.(T)
	return t
}

// Computed reports whether a value is stored under key
func (c *Cache) Computed(key string) bool {
	_, ok := c.load(key)
	return ok
}

func (c *Cache) load(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) store(key string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.entries = make(map[string]interface{})
	}
	c.entries[key] = v
}
