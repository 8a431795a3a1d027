package pubcache

// CacheEventPrefix prefixes the event names NotifierObserver emits on.
const CacheEventPrefix = "cache."

// CacheEventName returns the Notifier event name cache events of kind e are
// republished under, for example "cache.expire".
func CacheEventName(e Event) string { return CacheEventPrefix + e.String() }

// NotifierObserver republishes cache events on a Notifier. Each EventData is
// emitted as the payload of CacheEventName(data.Event).
type NotifierObserver struct {
	n *Notifier
}

// NewNotifierObserver returns an Observer that emits on n.
func NewNotifierObserver(n *Notifier) *NotifierObserver {
	return &NotifierObserver{n: n}
}

func (o *NotifierObserver) On(data EventData) {
	// The event name is never empty, so Emit cannot fail.
	_ = o.n.Emit(CacheEventName(data.Event), data)
}

// MultiObserver fans an event out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) On(data EventData) {
	for _, o := range m {
		if o != nil {
			o.On(data)
		}
	}
}
