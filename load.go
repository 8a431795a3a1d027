package pubcache

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

type contextKey struct{}

// NewContext returns a child context that carries c.
func NewContext(ctx context.Context, c *ExpiringCache) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext retrieves the ExpiringCache from ctx, or nil if none is present.
func FromContext(ctx context.Context) *ExpiringCache {
	c, _ := ctx.Value(contextKey{}).(*ExpiringCache)
	return c
}

// Load returns the value stored under any of lookups, calling fn at most once
// per cache for a given first lookup while no live value exists. Concurrent
// callers for the same lookup block and receive the same result.
//
// Lookups have OR semantics: the first live hit wins and is backfilled under
// the remaining lookups. A computed value is stored under all of them with
// the given ttl. Errors are not cached, and a panic in fn propagates to every
// waiting caller.
//
// If ctx carries no cache, fn is called directly.
func Load[T any](ctx context.Context, ttl time.Duration, fn func() (T, error), lookups ...Lookup[T]) (T, error) {
	var zero T
	if len(lookups) == 0 {
		return zero, fmt.Errorf("%w: Load requires at least one lookup", ErrInvalidArgument)
	}
	if ttl < 0 {
		return zero, fmt.Errorf("%w: negative ttl %s", ErrInvalidArgument, ttl)
	}

	c := FromContext(ctx)
	if c == nil {
		return fn()
	}

	// Fast path: any lookup already live.
	if v, ok := loadCached(c, lookups, ttl, true); ok {
		return v, nil
	}

	// Slow path: singleflight dedup on the primary lookup.
	primary := lookups[0].FullKey()
	// shared is also true for the caller that ran fn; ran tells them apart.
	ran := false
	val, err, shared := c.group.Do(primary, func() (any, error) {
		ran = true
		// Double-check: another goroutine may have stored it while we waited.
		if v, ok := loadCached(c, lookups, ttl, false); ok {
			return v, nil
		}

		c.emit(EventMiss, primary)
		result, err := fn()
		if err != nil {
			return result, err
		}

		for _, l := range lookups {
			// ttl was validated above.
			_ = c.Set(l.FullKey(), result, ttl)
		}
		return result, nil
	})
	if shared && !ran {
		c.emit(EventDedup, primary)
	}

	if err != nil || val == nil {
		return zero, err
	}
	return val.(T), nil
}

// loadCached walks lookups in order and returns the first live value of type
// T, backfilling the other lookups that are not live with it.
func loadCached[T any](c *ExpiringCache, lookups []Lookup[T], ttl time.Duration, notify bool) (T, bool) {
	var zero T
	for i, l := range lookups {
		key := l.FullKey()
		raw, ev := c.lookup(key)
		if notify && ev != EventMiss {
			c.emit(ev, key)
		}
		if ev != EventHit {
			continue
		}

		v := zero
		if raw != nil {
			typed, ok := raw.(T)
			if !ok {
				continue
			}
			v = typed
		} else if !nillable[T]() {
			continue
		}

		for j, other := range lookups {
			if j == i {
				continue
			}
			if _, oev := c.lookup(other.FullKey()); oev != EventHit {
				_ = c.Set(other.FullKey(), v, ttl)
			}
		}
		return v, true
	}
	return zero, false
}

// nillable reports whether nil is a valid value of T.
func nillable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
