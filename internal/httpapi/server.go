// Package httpapi exposes a Notifier and an ExpiringCache over HTTP for the
// serve command.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	pubcache "github.com/probablyarth/pubcache-go"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes int64 = 1 << 20

// Options configures NewMux. Zero values are usable.
type Options struct {
	Logger zerolog.Logger
	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Emits, if set, counts POST /events/{name} by event name.
	Emits *prometheus.CounterVec
	// StreamBuffer is the per-connection queue length for /events websockets.
	StreamBuffer int
}

type server struct {
	notifier *pubcache.Notifier
	cache    *pubcache.ExpiringCache
	opts     Options
}

// CacheEntry is the JSON shape of a single cache value.
type CacheEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// NewMux builds the router. The notifier and cache are shared with the rest
// of the process; the HTTP layer owns neither.
func NewMux(n *pubcache.Notifier, c *pubcache.ExpiringCache, opts Options) http.Handler {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.StreamBuffer <= 0 {
		opts.StreamBuffer = 16
	}
	s := &server{notifier: n, cache: c, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Delete("/", s.handleClear)
		r.Get("/{key}", s.handleGet)
		r.Put("/{key}", s.handlePut)
		r.Delete("/{key}", s.handleDelete)
	})

	r.Route("/events/{name}", func(r chi.Router) {
		r.Post("/", s.handleEmit)
		r.Get("/", s.handleStream)
	})

	return r
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, ok := s.cache.Get(key)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "key not found: "+key)
		return
	}
	writeJSON(w, http.StatusOK, CacheEntry{Key: key, Value: v})
}

// handlePut stores the JSON body under key. ?ttl= takes a Go duration; when
// omitted the cache's default TTL applies.
func (s *server) handlePut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	ttl := s.cache.DefaultTTL()
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid ttl: "+raw)
			return
		}
		ttl = d
	}

	value, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if err := s.cache.Set(key, value, ttl); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.cache.Delete(chi.URLParam(r, "key"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleEmit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if err := s.notifier.Emit(name, payload); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	if s.opts.Emits != nil {
		s.opts.Emits.WithLabelValues(name).Inc()
	}
	w.WriteHeader(http.StatusAccepted)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var v any
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return v, true
}
