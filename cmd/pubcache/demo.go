package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pubcache "github.com/probablyarth/pubcache-go"
)

func newDemoCmd(appFn func() *app) *cobra.Command {
	var ttl, wait time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the notifier and cache walkthrough",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wait <= ttl {
				return fmt.Errorf("--wait (%s) must exceed --ttl (%s)", wait, ttl)
			}
			a := appFn()
			if err := runNotifierDemo(a); err != nil {
				return err
			}
			return runCacheDemo(a, ttl, wait)
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 10*time.Millisecond, "ttl of the demo cache entry")
	cmd.Flags().DurationVar(&wait, "wait", 15*time.Millisecond, "how long to wait before reading it again")
	return cmd
}

func runNotifierDemo(a *app) error {
	log := a.log.With().Str("demo", "notifier").Logger()

	delivered := 0
	sub, err := a.notifier.Subscribe("msg", func(payload any) {
		delivered++
		log.Info().Interface("payload", payload).Msg("received")
	})
	if err != nil {
		return err
	}

	if err := a.notifier.Emit("msg", "hello"); err != nil {
		return err
	}
	sub.Unsubscribe()
	if err := a.notifier.Emit("msg", "world"); err != nil {
		return err
	}

	log.Info().Int("delivered", delivered).Msg("emitted hello and world, unsubscribed in between")
	return nil
}

func runCacheDemo(a *app, ttl, wait time.Duration) error {
	log := a.log.With().Str("demo", "cache").Logger()

	sub, err := a.notifier.Subscribe(pubcache.CacheEventName(pubcache.EventExpire), func(payload any) {
		log.Info().Str("key", payload.(pubcache.EventData).Key).Msg("expired")
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	if err := a.cache.Set("a", 42, ttl); err != nil {
		return err
	}
	v, ok := a.cache.Get("a")
	log.Info().Interface("value", v).Bool("found", ok).Msg("immediate get")

	time.Sleep(wait)

	v, ok = a.cache.Get("a")
	stats := a.cache.Stats()
	log.Info().Interface("value", v).Bool("found", ok).Strs("keys", stats.Keys).Int("size", stats.Size).Msg("get after ttl")
	return nil
}
