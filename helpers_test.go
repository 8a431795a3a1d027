package pubcache_test

import (
	"sync"
	"time"

	pubcache "github.com/probablyarth/pubcache-go"
)

// manualClock only moves when advanced.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingObserver stores every event it sees.
type recordingObserver struct {
	mu     sync.Mutex
	events []pubcache.EventData
}

func (o *recordingObserver) On(data pubcache.EventData) {
	o.mu.Lock()
	o.events = append(o.events, data)
	o.mu.Unlock()
}

func (o *recordingObserver) Count(e pubcache.Event) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, d := range o.events {
		if d.Event == e {
			n++
		}
	}
	return n
}
