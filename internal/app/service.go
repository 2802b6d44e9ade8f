package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/actors"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/answered"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/backend"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/cache"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	apperrors "github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/errors"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/mentions"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/metrics"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/timeseries"
)

// Reader is the cached read side of the backend (satisfied by cache.Service).
type Reader interface {
	Get(ctx context.Context, path string, query url.Values, opts cache.Options) ([]byte, error)
	Invalidate(path string) int
}

// Writer is the uncached write side of the backend (satisfied by backend.Client).
type Writer interface {
	Override(ctx context.Context, body backend.OverrideBody) (int, error)
	Compare(ctx context.Context, filters []map[string]string) (json.RawMessage, error)
}

// Settings carry the per-resource TTLs and the configured principal
// fallback used until backend metadata arrives.
type Settings struct {
	ItemsTTL    time.Duration
	MetaTTL     time.Duration
	InsightsTTL time.Duration
	SummaryTTL  time.Duration

	PrincipalName    string
	PrincipalAliases []string
}

// Filter selects a window of raw mention items.
type Filter struct {
	FromDate  string
	ToDate    string
	Sentiment string
	Entity    string
	Geo       string
	Sources   []string
}

// Query encodes the filter as backend query parameters. Encoding is
// order-independent, so equal filters always share a cache key.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.FromDate != "" {
		q.Set("from_date", f.FromDate)
	}
	if f.ToDate != "" {
		q.Set("to_date", f.ToDate)
	}
	if f.Sentiment != "" {
		q.Set("sentiment", f.Sentiment)
	}
	if f.Entity != "" {
		q.Set("entity", f.Entity)
	}
	if f.Geo != "" {
		q.Set("geo", f.Geo)
	}
	if len(f.Sources) > 0 {
		q.Set("sources", strings.Join(f.Sources, ","))
	}
	return q
}

func (f Filter) asMap() map[string]string {
	m := map[string]string{}
	for k, v := range f.Query() {
		m[k] = v[0]
	}
	return m
}

// MentionView is the clustered result for one filter window, scoped to the
// principal entity.
type MentionView struct {
	Groups      []domain.MentionGroup `json:"groups"`
	Totals      domain.AnsweredTotals `json:"totals"`
	GeneratedAt string                `json:"generated_at,omitempty"`
}

// AnsweredView pairs principal and comparison coverage for side-by-side
// display.
type AnsweredView struct {
	Principal  domain.AnsweredTotals `json:"principal"`
	Comparison domain.AnsweredTotals `json:"comparison"`
}

// Service wires the cache, the backend writer, and the pure engines.
type Service struct {
	reader   Reader
	writer   Writer
	settings Settings

	// generation is bumped by every write-triggered invalidation; an
	// aggregation that observes a bump mid-run discards its result instead
	// of committing a stale snapshot.
	generation atomic.Int64

	metaMu   sync.RWMutex
	meta     *domain.Meta
	resolver *actors.Resolver
}

// NewService creates the application layer service.
func NewService(reader Reader, writer Writer, settings Settings) *Service {
	s := &Service{
		reader:   reader,
		writer:   writer,
		settings: settings,
	}
	s.resolver = actors.NewResolver(settings.PrincipalName, settings.PrincipalAliases)
	return s
}

// Meta returns the backend actor/geo/source metadata, cached. The resolver
// is rebuilt whenever fresh metadata arrives so alias sets follow the
// backend's configuration.
func (s *Service) Meta(ctx context.Context, force bool) (*domain.Meta, error) {
	payload, err := s.reader.Get(ctx, backend.MetaPath, nil, cache.Options{TTL: s.settings.MetaTTL, Force: force})
	if err != nil {
		return nil, err
	}

	var meta domain.Meta
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, apperrors.UpstreamError("malformed meta payload", err)
	}

	name := meta.Principal.Name
	aliases := append([]string{}, meta.Principal.Aliases...)
	if name == "" {
		name = s.settings.PrincipalName
	}
	aliases = append(aliases, s.settings.PrincipalAliases...)
	if name == "" {
		return nil, apperrors.InternalError("no principal entity configured", domain.ErrNoPrincipal)
	}

	s.metaMu.Lock()
	s.meta = &meta
	s.resolver = actors.NewResolver(name, aliases)
	s.metaMu.Unlock()

	return &meta, nil
}

// ComparisonOptions lists the actors eligible for side-by-side comparison
// under the given geo filter.
func (s *Service) ComparisonOptions(ctx context.Context, geo string) ([]string, error) {
	meta, err := s.Meta(ctx, false)
	if err != nil {
		return nil, err
	}
	return s.currentResolver().ComparisonCandidates(meta.Actors, geo), nil
}

// Mentions fetches the filter window (through the cache), clusters it, and
// returns the principal-scoped groups with their coverage totals.
func (s *Service) Mentions(ctx context.Context, f Filter, force bool) (*MentionView, error) {
	view, err := withSnapshot(s, func() (*MentionView, error) {
		result, err := s.fetchItems(ctx, f, force)
		if err != nil {
			return nil, err
		}
		resolver := s.currentResolver()

		groups := mentions.Cluster(result.Items)
		metrics.ClusterRunsTotal.Inc()
		metrics.MentionGroupsLast.Set(float64(len(groups)))

		principal := make([]domain.MentionGroup, 0, len(groups))
		for _, g := range groups {
			if resolver.IsPrincipalGroup(g) {
				principal = append(principal, g)
			}
		}

		return &MentionView{
			Groups:      principal,
			Totals:      answered.Summarize(principal),
			GeneratedAt: result.GeneratedAt,
		}, nil
	})
	return view, err
}

// Timeseries builds the comparative cumulative trajectory for the filter
// window. comparison may be empty for a principal-only series.
func (s *Service) Timeseries(ctx context.Context, f Filter, comparison string) ([]domain.TimeSeriesPoint, error) {
	return withSnapshot(s, func() ([]domain.TimeSeriesPoint, error) {
		result, err := s.fetchItems(ctx, f, false)
		if err != nil {
			return nil, err
		}
		resolver := s.currentResolver()

		return timeseries.Build(result.Items,
			resolver.IsPrincipalMention,
			func(m domain.RawMention) bool { return resolver.IsComparisonMention(m, comparison) },
			f.FromDate, f.ToDate)
	})
}

// Answered computes side-by-side coverage for the principal and the
// selected comparison actor over one filter window.
func (s *Service) Answered(ctx context.Context, f Filter, comparison string) (*AnsweredView, error) {
	return withSnapshot(s, func() (*AnsweredView, error) {
		result, err := s.fetchItems(ctx, f, false)
		if err != nil {
			return nil, err
		}
		resolver := s.currentResolver()

		groups := mentions.Cluster(result.Items)
		var principal, comp []domain.MentionGroup
		for _, g := range groups {
			switch {
			case resolver.IsPrincipalGroup(g):
				principal = append(principal, g)
			case resolver.IsComparisonGroup(g, comparison):
				comp = append(comp, g)
			}
		}

		return &AnsweredView{
			Principal:  answered.Summarize(principal),
			Comparison: answered.Summarize(comp),
		}, nil
	})
}

// ResponsesSummary relays the backend's own coverage summary, cached.
func (s *Service) ResponsesSummary(ctx context.Context) (*domain.AnsweredTotals, error) {
	payload, err := s.reader.Get(ctx, backend.SummaryPath, nil, cache.Options{TTL: s.settings.SummaryTTL})
	if err != nil {
		return nil, err
	}
	var totals domain.AnsweredTotals
	if err := json.Unmarshal(payload, &totals); err != nil {
		return nil, apperrors.UpstreamError("malformed responses summary", err)
	}
	return &totals, nil
}

// Insights relays the market-insights document (KPIs, friction, alerts,
// recurring authors, penalized features, newsletter editions) without
// re-deriving it. The contract here is caching plus shape preservation.
func (s *Service) Insights(ctx context.Context, f Filter) (json.RawMessage, error) {
	full := f.Query()
	q := url.Values{}
	for _, key := range []string{"from_date", "to_date", "geo", "sources"} {
		if v := full.Get(key); v != "" {
			q.Set(key, v)
		}
	}
	payload, err := s.reader.Get(ctx, backend.InsightsPath, q, cache.Options{TTL: s.settings.InsightsTTL})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

// Override relays a manual correction upstream, then explicitly invalidates
// every cached read the write can affect. No broadcast events: the write
// itself triggers the invalidation.
func (s *Service) Override(ctx context.Context, req domain.OverrideRequest) (int, error) {
	if len(req.IDs) == 0 {
		return 0, apperrors.ValidationError("override requires at least one item id")
	}

	updated, err := s.writer.Override(ctx, backend.OverrideBody{
		IDs:       req.IDs,
		Geo:       req.Geo,
		Sentiment: string(req.Sentiment),
		Note:      req.Note,
	})
	if err != nil {
		return 0, err
	}

	dropped := s.reader.Invalidate(backend.ItemsPath)
	dropped += s.reader.Invalidate(backend.SummaryPath)
	dropped += s.reader.Invalidate(backend.InsightsPath)
	s.generation.Add(1)

	slog.Info("Manual override applied",
		"ids", len(req.IDs),
		"updated", updated,
		"cache_entries_dropped", dropped,
	)
	return updated, nil
}

// Compare relays a multi-filter comparison read. Writes nothing; bypasses
// the cache because filter combinations are too sparse to be worth caching.
func (s *Service) Compare(ctx context.Context, filters []Filter) (json.RawMessage, error) {
	if len(filters) == 0 {
		return nil, apperrors.ValidationError("compare requires at least one filter")
	}
	body := make([]map[string]string, 0, len(filters))
	for _, f := range filters {
		body = append(body, f.asMap())
	}
	return s.writer.Compare(ctx, body)
}

func (s *Service) fetchItems(ctx context.Context, f Filter, force bool) (*domain.ItemsResult, error) {
	payload, err := s.reader.Get(ctx, backend.ItemsPath, f.Query(), cache.Options{TTL: s.settings.ItemsTTL, Force: force})
	if err != nil {
		return nil, err
	}
	var result domain.ItemsResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, apperrors.UpstreamError("malformed items payload", err)
	}
	return &result, nil
}

func (s *Service) currentResolver() *actors.Resolver {
	s.metaMu.RLock()
	defer s.metaMu.RUnlock()
	return s.resolver
}

// withSnapshot runs an aggregation under the generation counter: if a write
// invalidates the inputs mid-run the result is discarded and the
// aggregation retried once against the fresh snapshot.
func withSnapshot[T any](s *Service, compute func() (T, error)) (T, error) {
	for attempt := 0; attempt < 2; attempt++ {
		gen := s.generation.Load()
		result, err := compute()
		if err != nil {
			var zero T
			return zero, err
		}
		if s.generation.Load() == gen {
			return result, nil
		}
		metrics.StaleSnapshotsTotal.Inc()
	}
	var zero T
	return zero, apperrors.InternalError("snapshot kept invalidating", domain.ErrStaleSnapshot)
}
