package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\ndefault_ttl: 10s\nlog_level: debug\nlog_format: json\nmetrics_namespace: x\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{Addr: ":9999", DefaultTTL: "10s", LogLevel: "debug", LogFormat: "json", MetricsNamespace: "x"}
	if cfg != want {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","default_ttl":"1m","log_level":"warn"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.DefaultTTL != "1m" || cfg.LogLevel != "warn" || cfg.LogFormat != "" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ndefault_ttl=\"500ms\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.DefaultTTL != "500ms" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	p = writeTempFile(t, d, "bad.json", "{")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	ttl, _ := Default().TTL()
	if ttl != time.Minute {
		t.Fatalf("default ttl = %s, want 1m", ttl)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]Config{
		"bad ttl":      Merge(Default(), Config{DefaultTTL: "soon"}),
		"negative ttl": Merge(Default(), Config{DefaultTTL: "-1s"}),
		"bad level":    Merge(Default(), Config{LogLevel: "loud"}),
		"bad format":   Merge(Default(), Config{LogFormat: "xml"}),
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error for %+v", name, cfg)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :1111\ndefault_ttl: 5s\n")

	t.Setenv("PUBCACHE_DEFAULT_TTL", "7s")
	v := viper.New()
	v.Set("addr", ":2222")

	cfg, err := Resolve(v, p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":2222" {
		t.Fatalf("addr = %q, want flag value :2222", cfg.Addr)
	}
	if cfg.DefaultTTL != "7s" {
		t.Fatalf("default_ttl = %q, want env value 7s", cfg.DefaultTTL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log_level = %q, want default info", cfg.LogLevel)
	}
}

func TestResolveConfigFileFromEnv(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "log_level=\"debug\"\n")
	t.Setenv("PUBCACHE_CONFIG_FILE", p)

	cfg, err := Resolve(nil, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q, want debug", cfg.LogLevel)
	}
}

func TestLoggerHonoursLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := Merge(Default(), Config{LogLevel: "warn", LogFormat: "json"})
	log := cfg.Logger(&buf)

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("unexpected json output: %s", out)
	}
}
