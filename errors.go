package pubcache

import "errors"

// ErrInvalidArgument is returned when an operation receives an argument it
// cannot accept: an empty event name, a nil or incomparable handler, or a
// negative TTL. Returned errors wrap it, so test with errors.Is.
var ErrInvalidArgument = errors.New("pubcache: invalid argument")
