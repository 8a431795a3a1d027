// Package pubcache provides two small in-process building blocks: a named
// publish/subscribe Notifier and an ExpiringCache with per-entry TTLs.
//
// A Notifier calls subscribers synchronously, in subscription order:
//
//	n := pubcache.NewNotifier()
//	sub, _ := n.Subscribe("msg", func(payload any) { fmt.Println(payload) })
//	_ = n.Emit("msg", "hello") // prints hello
//	sub.Unsubscribe()
//	_ = n.Emit("msg", "world") // prints nothing
//
// An ExpiringCache expires entries lazily. The Get that finds an entry stale
// evicts it, and nothing runs in the background:
//
//	c := pubcache.NewExpiringCache()
//	_ = c.Set("a", 42, 10*time.Millisecond)
//	v, ok := c.Get("a") // 42, true
//
// Neither component keeps global state. Construct them once and pass them to
// whatever needs them. Cache events can be observed with [WithObserver], and
// [NewNotifierObserver] republishes them on a Notifier.
//
// [Load] layers singleflight-style get-or-compute on top of a cache carried
// in a context:
//
//	var userKey = pubcache.NewKey[*User]("user")
//
//	ctx := pubcache.NewContext(r.Context(), cache)
//	user, err := pubcache.Load(ctx, time.Minute, fetchUser, pubcache.L(userKey, userID))
//
// Concurrent Load callers for the same key share a single in-flight call.
// Errors are not cached.
package pubcache
