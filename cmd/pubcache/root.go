package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pubcache "github.com/probablyarth/pubcache-go"
	"github.com/probablyarth/pubcache-go/internal/config"
	"github.com/probablyarth/pubcache-go/metrics"
)

// app holds the process-wide instances. They are built once, after flags
// are parsed, and handed to each command.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	notifier *pubcache.Notifier
	cache    *pubcache.ExpiringCache
	observer *metrics.CacheObserver
}

func newApp(cfg config.Config, out io.Writer) (*app, error) {
	ttl, err := cfg.TTL()
	if err != nil {
		return nil, err
	}
	log := cfg.Logger(out)

	n := pubcache.NewNotifier(pubcache.WithLogger(log))
	obs := metrics.NewCacheObserver(cfg.MetricsNamespace)
	c := pubcache.NewExpiringCache(
		pubcache.WithLogger(log),
		pubcache.WithDefaultTTL(ttl),
		pubcache.WithObserver(pubcache.MultiObserver{obs, pubcache.NewNotifierObserver(n)}),
	)
	return &app{cfg: cfg, log: log, notifier: n, cache: c, observer: obs}, nil
}

func buildRootCmd(out io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string
	var a *app

	root := &cobra.Command{
		Use:           "pubcache",
		Short:         "Named-event notifier and expiring cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(v, cfgFile)
			if err != nil {
				return err
			}
			a, err = newApp(cfg, out)
			return err
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (.yaml, .json or .toml; also PUBCACHE_CONFIG_FILE)")
	pf.String("log-level", "", "log level: debug|info|warn|error (default info)")
	pf.String("log-format", "", "log format: console|json (default console)")
	pf.String("default-ttl", "", "TTL for entries stored without one, e.g. 60s")
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))
	_ = v.BindPFlag("default_ttl", pf.Lookup("default-ttl"))

	appFn := func() *app { return a }
	root.AddCommand(newDemoCmd(appFn), newServeCmd(appFn, v))
	return root
}
