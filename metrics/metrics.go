// Package metrics exports ExpiringCache activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pubcache "github.com/probablyarth/pubcache-go"
)

// Sizer is satisfied by *pubcache.ExpiringCache.
type Sizer interface {
	Len() int
}

// CacheObserver counts cache events by kind. Attach it with
// pubcache.WithObserver and register it with a prometheus.Registerer.
type CacheObserver struct {
	events *prometheus.CounterVec
}

var _ pubcache.Observer = (*CacheObserver)(nil)

// NewCacheObserver builds the counters under the given namespace.
func NewCacheObserver(namespace string) *CacheObserver {
	return &CacheObserver{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "events_total",
				Help:      "Total number of cache events by kind",
			},
			[]string{"event"},
		),
	}
}

func (o *CacheObserver) On(data pubcache.EventData) {
	o.events.WithLabelValues(data.Event.String()).Inc()
}

func (o *CacheObserver) Describe(ch chan<- *prometheus.Desc) { o.events.Describe(ch) }

func (o *CacheObserver) Collect(ch chan<- prometheus.Metric) { o.events.Collect(ch) }

// Count returns the current counter value for an event kind.
func (o *CacheObserver) Count(e pubcache.Event) prometheus.Counter {
	return o.events.WithLabelValues(e.String())
}

// EntriesGauge reports the number of stored entries in c at scrape time,
// including expired entries not yet evicted.
func EntriesGauge(namespace string, c Sizer) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently stored in the cache",
		},
		func() float64 { return float64(c.Len()) },
	)
}

// NotifierEmits counts payloads published through the HTTP and CLI surfaces.
func NotifierEmits(namespace string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "emits_total",
			Help:      "Total number of emits by event name",
		},
		[]string{"event"},
	)
}
