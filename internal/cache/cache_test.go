package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/metrics"
)

// stubFetcher counts calls and can fail or block on demand.
type stubFetcher struct {
	mu      sync.Mutex
	calls   int
	payload []byte
	err     error

	entered chan struct{} // closed-once signal that a fetch started
	release chan struct{} // fetch blocks until closed, when set
	once    sync.Once
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, _ url.Values) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	payload, err := f.payload, f.err
	f.mu.Unlock()

	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
	}
	if f.release != nil {
		<-f.release
	}
	return payload, err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *stubFetcher) set(payload []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payload, f.err = payload, err
}

func newService(fetcher Fetcher, ttl time.Duration) (*Service, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return New(fetcher, ttl, clock), clock
}

func TestGet_ReadThrough(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte(`{"items":[]}`)}
	svc, _ := newService(fetcher, time.Minute)

	value, err := svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"items":[]}`), value)
	assert.Equal(t, 1, fetcher.callCount())

	// Second call within the TTL is served from the entry.
	_, err = svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount(), "fresh entry must not refetch")
}

func TestGet_TTLBoundary(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte("v")}
	svc, clock := newService(fetcher, time.Minute)

	_, err := svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)

	clock.Advance(time.Minute - time.Millisecond)
	_, err = svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount(), "ttl-1ms must still be fresh")

	clock.Advance(2 * time.Millisecond)
	_, err = svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount(), "ttl+1ms must refetch")
}

func TestGet_CoalescesConcurrentCallers(t *testing.T) {
	fetcher := &stubFetcher{
		payload: []byte("shared"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newService(fetcher, time.Minute)

	const callers = 8
	results := make(chan []byte, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := svc.Get(context.Background(), "/reputation/items", url.Values{"geo": {"ES"}}, Options{})
			results <- v
			errs <- err
		}()
	}

	<-fetcher.entered
	close(fetcher.release)
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for v := range results {
		assert.Equal(t, []byte("shared"), v, "all callers must receive the one resolved value")
	}
	assert.Equal(t, 1, fetcher.callCount(), "N concurrent callers, exactly 1 network call")
}

func TestGet_MissCountsFetchesNotWaiters(t *testing.T) {
	fetcher := &stubFetcher{
		payload: []byte("v"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newService(fetcher, time.Minute)

	path := "/reputation/markets/insights"
	missesBefore := testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues(path))

	const callers = 4
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Get(context.Background(), path, nil, Options{})
		}()
	}

	<-fetcher.entered
	close(fetcher.release)
	wg.Wait()

	misses := testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues(path)) - missesBefore
	assert.Equal(t, 1.0, misses, "one network fetch, one miss; waiters are coalesced, not missed")

	// A fresh read afterwards counts as a hit, not another miss.
	hitsBefore := testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues(path))
	_, err := svc.Get(context.Background(), path, nil, Options{})
	require.NoError(t, err)
	hits := testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues(path)) - hitsBefore
	assert.Equal(t, 1.0, hits)
}

func TestGet_FailureClearsEntryAndSelfHeals(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	svc, _ := newService(fetcher, time.Minute)

	_, err := svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.Error(t, err)
	assert.Equal(t, 0, svc.Size(), "failed fetch must not leave a poisoned entry")

	fetcher.set([]byte("recovered"), nil)

	value, err := svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), value)
	assert.Equal(t, 2, fetcher.callCount(), "exactly 2 network calls total")
}

func TestGet_ForceBypassesFreshness(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte("v1")}
	svc, _ := newService(fetcher, time.Minute)

	_, err := svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)

	fetcher.set([]byte("v2"), nil)

	value, err := svc.Get(context.Background(), "/reputation/items", nil, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, fetcher.callCount())

	// The forced result replaced the entry with a fresh timestamp.
	value, err = svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestGet_ForceCoalescesWithInFlight(t *testing.T) {
	fetcher := &stubFetcher{
		payload: []byte("forced"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newService(fetcher, time.Minute)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = svc.Get(context.Background(), "/reputation/items", nil, Options{Force: true})
	}()
	<-fetcher.entered
	go func() {
		defer wg.Done()
		_, _ = svc.Get(context.Background(), "/reputation/items", nil, Options{Force: true})
	}()

	// Give the second caller time to join the flight before releasing.
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	assert.LessOrEqual(t, fetcher.callCount(), 2)
	assert.GreaterOrEqual(t, fetcher.callCount(), 1)
}

func TestKey_ParameterOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("from_date", "2025-01-01")
	a.Set("sources", "news,appstore")
	a.Set("geo", "ES")

	b := url.Values{}
	b.Set("geo", "ES")
	b.Set("sources", "news,appstore")
	b.Set("from_date", "2025-01-01")

	assert.Equal(t, Key("/reputation/items", a), Key("/reputation/items", b))
	assert.Equal(t, "/reputation/items", Key("/reputation/items", nil))
}

func TestGet_DistinctKeysDistinctFetches(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte("v")}
	svc, _ := newService(fetcher, time.Minute)

	_, err := svc.Get(context.Background(), "/reputation/items", url.Values{"geo": {"ES"}}, Options{})
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "/reputation/items", url.Values{"geo": {"FR"}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.callCount())
	assert.Equal(t, 2, svc.Size())
}

func TestInvalidate_DropsAllQueriesOfPath(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte("v")}
	svc, _ := newService(fetcher, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := svc.Get(context.Background(), "/reputation/items", url.Values{"geo": {fmt.Sprint(i)}}, Options{})
		require.NoError(t, err)
	}
	_, err := svc.Get(context.Background(), "/reputation/meta", nil, Options{})
	require.NoError(t, err)

	dropped := svc.Invalidate("/reputation/items")
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 1, svc.Size(), "other paths survive invalidation")

	_, err = svc.Get(context.Background(), "/reputation/items", url.Values{"geo": {"0"}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, fetcher.callCount(), "invalidated entry refetches")
}

func TestInvalidateAll(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte("v")}
	svc, _ := newService(fetcher, time.Minute)

	_, err := svc.Get(context.Background(), "/reputation/items", nil, Options{})
	require.NoError(t, err)
	svc.InvalidateAll()
	assert.Zero(t, svc.Size())
}

func TestGet_PerCallTTLOverride(t *testing.T) {
	fetcher := &stubFetcher{payload: []byte("v")}
	svc, clock := newService(fetcher, time.Hour)

	_, err := svc.Get(context.Background(), "/reputation/responses/summary", nil, Options{TTL: time.Second})
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = svc.Get(context.Background(), "/reputation/responses/summary", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount(), "short per-call TTL must win over the default")
}
