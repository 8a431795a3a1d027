package pubcache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ExpiringCache stores values under string keys for a bounded lifetime.
//
// Expiry is lazy: nothing fires when an entry goes stale. The Get that
// discovers a stale entry deletes it and reports absence. There is no size
// bound and no background sweeper, so keys written once and never read again
// stay in memory until Delete or Clear.
//
// Construct one per process and pass it to whatever needs it, or attach it to
// a context with NewContext for use with Load.
type ExpiringCache struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // first-insertion order; overwrites keep their position

	group singleflight.Group

	clock      Clock
	defaultTTL time.Duration
	observer   Observer
	log        zerolog.Logger
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of the cache.
//
// It counts every stored entry, including ones that are logically expired but
// have not been evicted by a Get yet.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// NewExpiringCache constructs an empty cache.
func NewExpiringCache(opts ...Option) *ExpiringCache {
	o := applyOptions(opts)
	return &ExpiringCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		clock:      o.clock,
		defaultTTL: o.defaultTTL,
		observer:   o.observer,
		log:        o.logger.With().Str("component", "expiring_cache").Logger(),
	}
}

// DefaultTTL reports the TTL SetDefault applies.
func (c *ExpiringCache) DefaultTTL() time.Duration { return c.defaultTTL }

// Set stores value under key until ttl has elapsed, overwriting any existing
// entry. A zero ttl stores an entry that is already stale.
func (c *ExpiringCache) Set(key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("%w: negative ttl %s for key %q", ErrInvalidArgument, ttl, key)
	}

	c.mu.Lock()
	c.setLocked(key, value, c.clock.Now().Add(ttl))
	c.mu.Unlock()

	c.emit(EventSet, key)
	return nil
}

// SetDefault is Set with the cache's default TTL.
func (c *ExpiringCache) SetDefault(key string, value any) {
	// defaultTTL is never negative, so Set cannot fail here.
	_ = c.Set(key, value, c.defaultTTL)
}

func (c *ExpiringCache) setLocked(key string, value any, expiresAt time.Time) {
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		return
	}
	c.items[key] = c.order.PushBack(&entry{key: key, value: value, expiresAt: expiresAt})
}

// Get returns the value stored under key. It reports false when the key is
// missing or its entry has expired; an expired entry is removed by this call.
func (c *ExpiringCache) Get(key string) (any, bool) {
	v, ev := c.lookup(key)
	c.emit(ev, key)
	return v, ev == EventHit
}

// lookup performs Get without notifying the observer and reports which event
// the access amounts to.
func (c *ExpiringCache) lookup(key string) (any, Event) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, EventMiss
	}
	e := el.Value.(*entry)
	if !now.Before(e.expiresAt) {
		c.removeLocked(el)
		c.log.Debug().Str("key", key).Time("expired_at", e.expiresAt).Msg("evicted expired entry")
		return nil, EventExpire
	}
	return e.value, EventHit
}

// Delete removes key if present.
func (c *ExpiringCache) Delete(key string) {
	c.mu.Lock()
	el, ok := c.items[key]
	if ok {
		c.removeLocked(el)
	}
	c.mu.Unlock()

	if ok {
		c.emit(EventDelete, key)
	}
}

// Clear removes every entry unconditionally.
func (c *ExpiringCache) Clear() {
	c.mu.Lock()
	n := len(c.items)
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	c.log.Debug().Int("removed", n).Msg("cleared cache")
	c.emit(EventClear, "")
}

// Len returns the number of stored entries, expired or not.
func (c *ExpiringCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a raw snapshot of the stored keys in insertion order. It does
// not sweep expired entries.
func (c *ExpiringCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return Stats{Size: len(keys), Keys: keys}
}

func (c *ExpiringCache) removeLocked(el *list.Element) {
	delete(c.items, el.Value.(*entry).key)
	c.order.Remove(el)
}

func (c *ExpiringCache) emit(event Event, key string) {
	if c.observer == nil {
		return
	}
	c.observer.On(EventData{Event: event, Key: key})
}
