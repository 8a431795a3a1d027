package pubcache

// Observer receives cache lifecycle events. Implementations must be safe
// for concurrent use when the cache is accessed from multiple goroutines.
// On is called after the cache has released its lock, so it may call back
// into the cache.
type Observer interface {
	On(eventData EventData)
}

// Event represents a cache event type.
type Event int

const (
	// EventHit is emitted when a Get finds a live entry.
	EventHit Event = iota
	// EventMiss is emitted when a Get finds no entry, or when Load invokes fn.
	EventMiss
	// EventDedup is emitted when a concurrent Load caller shares an in-flight
	// singleflight result instead of triggering a new call.
	EventDedup
	// EventSet is emitted for every successful Set.
	EventSet
	// EventExpire is emitted when a Get discovers and evicts a stale entry.
	EventExpire
	// EventDelete is emitted when Delete removes an entry.
	EventDelete
	// EventClear is emitted by Clear.
	EventClear
)

var eventNames = [...]string{
	EventHit:    "hit",
	EventMiss:   "miss",
	EventDedup:  "dedup",
	EventSet:    "set",
	EventExpire: "expire",
	EventDelete: "delete",
	EventClear:  "clear",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// EventData carries the details of a cache event. Key is empty for EventClear.
type EventData struct {
	Event Event
	Key   string
}
