// Package backend is the HTTP client of the reputation backend.
//
// It implements the cache.Fetcher contract for reads and carries the two
// write operations (manual override, compare) that bypass the cache. All
// failures surface as structured upstream errors; retry and timeout policy
// lives here, not in the engines.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/errors"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/metrics"
)

// Upstream resource paths. Cache invalidation after writes is keyed by
// these same constants.
const (
	ItemsPath    = "/reputation/items"
	MetaPath     = "/reputation/meta"
	InsightsPath = "/reputation/markets/insights"
	SummaryPath  = "/reputation/responses/summary"
	OverridePath = "/reputation/items/override"
	ComparePath  = "/reputation/items/compare"
)

// Client talks to the reputation backend with a client-side rate limit and
// a circuit breaker. Safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	breaker circuitbreaker.CircuitBreaker[any]
}

// NewClient creates a backend client.
// rps/burst bound the sustained request rate toward the backend.
func NewClient(baseURL string, timeout time.Duration, rps float64, burst int) *Client {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "backend",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("backend", e.NewState.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues("backend").Set(stateToFloat(e.NewState))
		}).
		Build()

	return &Client{
		http:    resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: cb,
	}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	default:
		return 2
	}
}

// Fetch performs an HTTP GET and returns the raw JSON payload.
// It satisfies the read-through cache's Fetcher contract.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var payload []byte
	err := c.do(ctx, path, func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(path)
		if resp != nil {
			payload = resp.Body()
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Override applies a manual correction to the listed raw item ids. The
// backend guarantees a subsequent items read reflects it (eventual
// consistency); the caller is responsible for invalidating cached reads.
func (c *Client) Override(ctx context.Context, req OverrideBody) (int, error) {
	var result struct {
		Updated int `json:"updated"`
	}
	err := c.do(ctx, OverridePath, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&result).
			Post(OverridePath)
	})
	if err != nil {
		return 0, err
	}
	return result.Updated, nil
}

// Compare submits a list of filter objects and returns the per-filter item
// sets plus the combined set, as raw JSON for the caller to decode.
func (c *Client) Compare(ctx context.Context, filters []map[string]string) (json.RawMessage, error) {
	var payload []byte
	err := c.do(ctx, ComparePath, func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(filters).
			Post(ComparePath)
		if resp != nil {
			payload = resp.Body()
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// OverrideBody is the wire shape of a manual correction.
type OverrideBody struct {
	IDs       []string `json:"ids"`
	Geo       string   `json:"geo,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// do wraps one backend call with rate limiting, the circuit breaker,
// metrics, and error mapping.
func (c *Client) do(ctx context.Context, endpoint string, call func() (*resty.Response, error)) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.UpstreamError("rate limiter interrupted", err).WithField("endpoint", endpoint)
	}
	if !c.breaker.TryAcquirePermit() {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "breaker_open").Inc()
		return apperrors.UpstreamError("backend circuit open", nil).WithField("endpoint", endpoint)
	}

	start := time.Now()
	resp, err := call()
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.breaker.RecordError(err)
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return apperrors.UpstreamError("backend request failed", err).WithField("endpoint", endpoint)
	}
	if resp.IsError() {
		c.breaker.RecordError(fmt.Errorf("status %d", resp.StatusCode()))
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, fmt.Sprint(resp.StatusCode())).Inc()
		return apperrors.UpstreamError("backend returned error status", nil).
			WithField("endpoint", endpoint).
			WithField("status", resp.StatusCode())
	}

	c.breaker.RecordSuccess()
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, fmt.Sprint(resp.StatusCode())).Inc()
	return nil
}
