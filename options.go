package pubcache

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL is the lifetime SetDefault gives an entry unless WithDefaultTTL
// overrides it.
const DefaultTTL = 60 * time.Second

type options struct {
	logger     zerolog.Logger
	clock      Clock
	defaultTTL time.Duration
	observer   Observer
}

func defaultOptions() options {
	return options{
		logger:     zerolog.Nop(),
		clock:      systemClock{},
		defaultTTL: DefaultTTL,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Notifier or an ExpiringCache. Options that only make
// sense for one of them are ignored by the other.
type Option func(*options)

// WithObserver attaches an Observer that receives hit, miss, set, expire,
// delete, clear and dedup events for the lifetime of the cache.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithLogger installs a structured logger. Components log at debug level only.
func WithLogger(l zerolog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithClock replaces the time source used for expiry.
func WithClock(c Clock) Option {
	return func(opts *options) {
		if c != nil {
			opts.clock = c
		}
	}
}

// WithDefaultTTL sets the TTL used by SetDefault. Negative values are ignored.
func WithDefaultTTL(d time.Duration) Option {
	return func(opts *options) {
		if d >= 0 {
			opts.defaultTTL = d
		}
	}
}
