package pubcache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pubcache "github.com/probablyarth/pubcache-go"
)

var benchKey = pubcache.NewKey[string]("bench")

// ---------------------------------------------------------------------------
// ExpiringCache: per-call latency.
// ---------------------------------------------------------------------------

func BenchmarkCacheGetHit(b *testing.B) {
	c := pubcache.NewExpiringCache()
	_ = c.Set("k", "v", time.Hour)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("k")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}
	c := pubcache.NewExpiringCache()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(keys[i%len(keys)], i, time.Hour)
	}
}

func BenchmarkParallel_CacheGetHit(b *testing.B) {
	c := pubcache.NewExpiringCache()
	_ = c.Set("k", "v", time.Hour)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Get("k")
		}
	})
}

// ---------------------------------------------------------------------------
// Notifier: fan-out cost per Emit.
// ---------------------------------------------------------------------------

func benchmarkEmit(b *testing.B, subscribers int) {
	n := pubcache.NewNotifier()
	for i := 0; i < subscribers; i++ {
		_, _ = n.Subscribe("ev", func(any) {})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.Emit("ev", i)
	}
}

func BenchmarkEmit_1(b *testing.B)    { benchmarkEmit(b, 1) }
func BenchmarkEmit_10(b *testing.B)   { benchmarkEmit(b, 10) }
func BenchmarkEmit_1000(b *testing.B) { benchmarkEmit(b, 1000) }

// ---------------------------------------------------------------------------
// Load: hit, miss and contention.
// ---------------------------------------------------------------------------

func BenchmarkLoadHit(b *testing.B) {
	ctx := pubcache.NewContext(context.Background(), pubcache.NewExpiringCache())
	pubcache.Load(ctx, time.Hour, func() (string, error) { return "v", nil }, pubcache.L(benchKey, "1"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pubcache.Load(ctx, time.Hour, func() (string, error) { return "v", nil }, pubcache.L(benchKey, "1"))
	}
}

func BenchmarkLoadMiss(b *testing.B) {
	ids := make([]string, b.N)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}

	ctx := pubcache.NewContext(context.Background(), pubcache.NewExpiringCache())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pubcache.Load(ctx, time.Hour, func() (string, error) { return "v", nil }, pubcache.L(benchKey, ids[i]))
	}
}

// Overhead when no cache is attached to the context.
func BenchmarkLoadNoCache(b *testing.B) {
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pubcache.Load(ctx, time.Hour, func() (string, error) { return "v", nil }, pubcache.L(benchKey, "1"))
	}
}

// Errors are not cached. Measure the retry path.
func BenchmarkLoadErrorNotCached(b *testing.B) {
	ctx := pubcache.NewContext(context.Background(), pubcache.NewExpiringCache())
	fail := errors.New("fail")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pubcache.Load(ctx, time.Hour, func() (string, error) { return "", fail }, pubcache.L(benchKey, "1"))
	}
}

// 1000 goroutines sharing 100 keys. Realistic mix of hits and dedup.
func BenchmarkConcurrent_LoadMixedKeys(b *testing.B) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ctx := pubcache.NewContext(context.Background(), pubcache.NewExpiringCache())
		var wg sync.WaitGroup
		wg.Add(1000)
		for j := 0; j < 1000; j++ {
			go func(j int) {
				defer wg.Done()
				pubcache.Load(ctx, time.Hour, func() (string, error) { return "v", nil }, pubcache.L(benchKey, ids[j%100]))
			}(j)
		}
		wg.Wait()
	}
}
