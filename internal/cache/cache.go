// Package cache implements the read-through cache in front of the backend.
//
// Entries are keyed by request signature (path plus canonically encoded
// query), expire by TTL evaluated lazily on access, and concurrent reads of
// the same key are coalesced into a single network call whose result (or
// error) is shared by every waiter.
package cache

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/metrics"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Fetcher performs the underlying network read for a cache miss.
type Fetcher interface {
	Fetch(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// Options tune a single Get call.
type Options struct {
	// TTL overrides the service default when positive.
	TTL time.Duration
	// Force always issues a fresh network fetch regardless of freshness,
	// still coalescing with any in-flight request for the same key.
	Force bool
}

// Service is an injectable read-through cache instance. Construct one per
// process and pass it by reference; tests instantiate isolated ones.
type Service struct {
	fetcher    Fetcher
	clock      clockwork.Clock
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	flight  singleflight.Group
}

type entry struct {
	value     []byte
	fetchedAt time.Time
	ttl       time.Duration
}

// New creates a cache service. defaultTTL applies to Get calls that do not
// override it.
func New(fetcher Fetcher, defaultTTL time.Duration, clock clockwork.Clock) *Service {
	return &Service{
		fetcher:    fetcher,
		clock:      clock,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry),
	}
}

// Key derives the cache key for a request. url.Values encoding sorts
// parameter names, so two logically identical requests always map to the
// identical key regardless of parameter order.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// Get returns the cached payload for (path, query) when an unexpired entry
// exists and Force is off; otherwise it performs exactly one network fetch
// for that key, sharing the in-flight call with every concurrent caller of
// the same key. A successful fetch is stored with a fresh timestamp; a
// failed fetch clears the entry entirely and the error propagates to all
// waiters, leaving the next call free to retry.
func (s *Service) Get(ctx context.Context, path string, query url.Values, opts Options) ([]byte, error) {
	key := Key(path, query)
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	if !opts.Force {
		if value, ok := s.lookup(key); ok {
			metrics.CacheHitsTotal.WithLabelValues(path).Inc()
			return value, nil
		}
	}

	value, err, shared := s.flight.Do(key, func() (any, error) {
		// A concurrent flight may have refreshed the entry between the
		// freshness check and this call; skip the network in that case.
		if !opts.Force {
			if value, ok := s.lookup(key); ok {
				return value, nil
			}
		}

		// A miss is one actual network fetch; coalesced waiters count in
		// CacheCoalescedTotal instead.
		metrics.CacheMissesTotal.WithLabelValues(path).Inc()
		payload, err := s.fetcher.Fetch(ctx, path, query)
		if err != nil {
			s.remove(key)
			metrics.CacheFetchFailuresTotal.WithLabelValues(path).Inc()
			return nil, err
		}

		s.store(key, payload, ttl)
		return payload, nil
	})
	if shared {
		metrics.CacheCoalescedTotal.WithLabelValues(path).Inc()
	}
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

// Invalidate removes every entry for the given path, regardless of query,
// and returns how many were dropped. Writes that affect a resource call
// this explicitly instead of broadcasting refresh events.
func (s *Service) Invalidate(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	prefix := path + "?"
	for key := range s.entries {
		if key == path || strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		metrics.CacheInvalidationsTotal.WithLabelValues(path).Add(float64(dropped))
	}
	return dropped
}

// InvalidateAll drops every entry.
func (s *Service) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// Size returns the number of stored entries, expired ones included.
func (s *Service) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// lookup returns the entry's value when present and still fresh. An entry
// is never fresh once now - fetchedAt exceeds its TTL; at exactly the TTL
// boundary it still is.
func (s *Service) lookup(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.clock.Since(e.fetchedAt) > e.ttl {
		// Lazy expiry: no background eviction thread.
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

func (s *Service) store(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{value: value, fetchedAt: s.clock.Now(), ttl: ttl}
}

func (s *Service) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
