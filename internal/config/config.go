// Package config loads settings for the pubcache command.
//
// Sources, highest priority first:
//  1. Command-line flags bound into viper
//  2. PUBCACHE_* environment variables (PUBCACHE_DEFAULT_TTL, PUBCACHE_LOG_LEVEL, ...)
//  3. A .yaml/.yml, .json or .toml file given by --config or PUBCACHE_CONFIG_FILE
//  4. Defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables read by Resolve.
const EnvPrefix = "PUBCACHE"

// Config holds runtime parameters for the command.
// Zero values mean "unspecified" and are replaced by defaults.
type Config struct {
	Addr             string `json:"addr" yaml:"addr" toml:"addr"`
	DefaultTTL       string `json:"default_ttl" yaml:"default_ttl" toml:"default_ttl"`
	LogLevel         string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat        string `json:"log_format" yaml:"log_format" toml:"log_format"`
	MetricsNamespace string `json:"metrics_namespace" yaml:"metrics_namespace" toml:"metrics_namespace"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:             ":8080",
		DefaultTTL:       "60s",
		LogLevel:         "info",
		LogFormat:        "console",
		MetricsNamespace: "pubcache",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge returns base with every non-empty field of over applied on top.
func Merge(base, over Config) Config {
	if over.Addr != "" {
		base.Addr = over.Addr
	}
	if over.DefaultTTL != "" {
		base.DefaultTTL = over.DefaultTTL
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.LogFormat != "" {
		base.LogFormat = over.LogFormat
	}
	if over.MetricsNamespace != "" {
		base.MetricsNamespace = over.MetricsNamespace
	}
	return base
}

// Resolve builds the effective configuration: defaults, then the file named
// by path (or PUBCACHE_CONFIG_FILE), then environment variables and bound
// flags known to v.
func Resolve(v *viper.Viper, path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = Merge(cfg, fileCfg)
	}

	if v != nil {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
		v.AutomaticEnv()
		cfg = Merge(cfg, Config{
			Addr:             v.GetString("addr"),
			DefaultTTL:       v.GetString("default_ttl"),
			LogLevel:         v.GetString("log_level"),
			LogFormat:        v.GetString("log_format"),
			MetricsNamespace: v.GetString("metrics_namespace"),
		})
	}

	return cfg, cfg.Validate()
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	if _, err := c.TTL(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log_format %q: want console or json", c.LogFormat)
	}
	if c.MetricsNamespace == "" {
		return fmt.Errorf("metrics_namespace must not be empty")
	}
	return nil
}

// TTL parses DefaultTTL.
func (c Config) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.DefaultTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid default_ttl %q: %w", c.DefaultTTL, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid default_ttl %q: must not be negative", c.DefaultTTL)
	}
	return d, nil
}
