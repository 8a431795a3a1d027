package pubcache

import "time"

// Clock supplies the current time to an ExpiringCache.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// systemClock reads the wall clock. time.Now carries a monotonic reading, so
// expiry comparisons are unaffected by wall-clock steps.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
