package pubcache

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Handler receives payloads emitted on the events it is subscribed to.
// Handlers passed to SubscribeHandler must be comparable, typically a
// pointer, so that Unsubscribe can find them again. A struct handler whose
// interface fields hold slices, maps or funcs is rejected.
type Handler interface {
	Notify(payload any)
}

// funcHandler gives each Subscribe call a distinct identity even when the
// same function value is subscribed more than once.
type funcHandler struct {
	fn func(payload any)
}

func (h *funcHandler) Notify(payload any) { h.fn(payload) }

type registration struct {
	handler Handler
	active  atomic.Bool
}

// Notifier is a registry of named events. Emit invokes subscribers
// synchronously, in subscription order, on the caller's goroutine.
//
// A Notifier is safe for concurrent use. No lock is held while handlers run,
// so a handler may subscribe, unsubscribe or emit without deadlocking.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[string][]*registration
	log         zerolog.Logger
}

// NewNotifier constructs an empty Notifier.
func NewNotifier(opts ...Option) *Notifier {
	o := applyOptions(opts)
	return &Notifier{
		subscribers: make(map[string][]*registration),
		log:         o.logger.With().Str("component", "notifier").Logger(),
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	n     *Notifier
	event string
	reg   *registration
}

// Event returns the event name the subscription is registered on.
func (s *Subscription) Event() string { return s.event }

// Unsubscribe removes exactly the registration this handle was returned for.
// Subsequent calls are no-ops.
func (s *Subscription) Unsubscribe() {
	if !s.reg.active.Load() {
		return
	}
	s.n.remove(s.event, func(r *registration) bool { return r == s.reg })
}

// Subscribe appends fn to the subscribers of eventName. Subscribing the same
// function twice registers it twice; each returned handle removes only its
// own registration.
func (n *Notifier) Subscribe(eventName string, fn func(payload any)) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil callback for event %q", ErrInvalidArgument, eventName)
	}
	return n.subscribe(eventName, &funcHandler{fn: fn})
}

// SubscribeHandler appends h to the subscribers of eventName. Keep h to
// remove it later with Unsubscribe, or use the returned handle.
func (n *Notifier) SubscribeHandler(eventName string, h Handler) (*Subscription, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handler for event %q", ErrInvalidArgument, eventName)
	}
	if !reflect.ValueOf(h).Comparable() {
		return nil, fmt.Errorf("%w: handler %T is not comparable", ErrInvalidArgument, h)
	}
	return n.subscribe(eventName, h)
}

func (n *Notifier) subscribe(eventName string, h Handler) (*Subscription, error) {
	if err := validateEventName(eventName); err != nil {
		return nil, err
	}

	reg := &registration{handler: h}
	reg.active.Store(true)

	n.mu.Lock()
	n.subscribers[eventName] = append(n.subscribers[eventName], reg)
	count := len(n.subscribers[eventName])
	n.mu.Unlock()

	n.log.Debug().Str("event", eventName).Int("subscribers", count).Msg("subscribed")
	return &Subscription{n: n, event: eventName, reg: reg}, nil
}

// Unsubscribe removes every registration of h on eventName. Handlers that
// were subscribed more than once are removed entirely. Removing a handler
// that is not subscribed is a no-op.
func (n *Notifier) Unsubscribe(eventName string, h Handler) error {
	if err := validateEventName(eventName); err != nil {
		return err
	}
	if h == nil || !reflect.ValueOf(h).Comparable() {
		// Nothing registered through SubscribeHandler can match.
		return nil
	}
	n.remove(eventName, func(r *registration) bool { return r.handler == h })
	return nil
}

// remove rebuilds the list for eventName without the matching registrations.
// The list is copied rather than filtered in place because an Emit in
// progress may still be iterating the old one.
func (n *Notifier) remove(eventName string, match func(*registration) bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	regs, ok := n.subscribers[eventName]
	if !ok {
		return
	}
	kept := make([]*registration, 0, len(regs))
	removed := 0
	for _, r := range regs {
		if match(r) {
			r.active.Store(false)
			removed++
			continue
		}
		kept = append(kept, r)
	}
	// The entry itself stays, even when empty.
	n.subscribers[eventName] = kept

	if removed > 0 {
		n.log.Debug().Str("event", eventName).Int("removed", removed).Int("subscribers", len(kept)).Msg("unsubscribed")
	}
}

// Emit delivers payload to the current subscribers of eventName, in
// subscription order. Subscriptions added while Emit runs are not invoked by
// it; registrations removed while it runs are skipped if not yet reached.
//
// A panicking handler aborts the remaining notifications and the panic
// propagates to the caller. Emitting to an event nobody subscribed to is a
// no-op.
func (n *Notifier) Emit(eventName string, payload any) error {
	if err := validateEventName(eventName); err != nil {
		return err
	}

	n.mu.Lock()
	snapshot := n.subscribers[eventName]
	n.mu.Unlock()

	for _, r := range snapshot {
		if !r.active.Load() {
			continue
		}
		r.handler.Notify(payload)
	}
	return nil
}

// Len returns the number of registrations on eventName.
func (n *Notifier) Len(eventName string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers[eventName])
}

func validateEventName(eventName string) error {
	if eventName == "" {
		return fmt.Errorf("%w: empty event name", ErrInvalidArgument)
	}
	return nil
}
