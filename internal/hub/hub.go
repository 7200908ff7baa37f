// Package hub is the aggregate service over every configured adapter:
// cached merged listings, routed detail loads, search and analytics.
package hub

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/ai-session-hub/internal/analytics"
	"github.com/Zuo-Peng/ai-session-hub/internal/cache"
	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/model"
	"github.com/Zuo-Peng/ai-session-hub/internal/parse"
	"github.com/Zuo-Peng/ai-session-hub/internal/search"
	"github.com/Zuo-Peng/ai-session-hub/internal/source"
)

// Cache keys of the aggregate operations.
const (
	KeySessions  = "sessions"
	KeyAnalytics = "analytics"
)

const detailWorkers = 4

type Hub struct {
	adapters []source.Adapter // membership priority order
	cache    *cache.Cache
	index    *search.Index
	ttl      time.Duration
	topN     int

	mu      sync.Mutex
	skipped []model.Skip
}

var _ search.Loader = (*Hub)(nil)

type Option func(*Hub)

// WithTTL sets how long listings and analytics stay cached.
func WithTTL(ttl time.Duration) Option {
	return func(h *Hub) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithCache replaces the result cache, e.g. one with a fake clock.
func WithCache(c *cache.Cache) Option {
	return func(h *Hub) { h.cache = c }
}

// WithTopN bounds the ranked lists of analytics reports.
func WithTopN(n int) Option {
	return func(h *Hub) { h.topN = n }
}

// New builds a hub. Adapters are consulted in the fixed source priority
// order whatever order they are passed in; nil adapters are ignored.
func New(adapters []source.Adapter, opts ...Option) *Hub {
	h := &Hub{
		cache: cache.New(0),
		ttl:   cache.DefaultTTL,
		topN:  analytics.DefaultTopN,
	}
	for _, a := range adapters {
		if a != nil {
			h.adapters = append(h.adapters, a)
		}
	}
	sort.SliceStable(h.adapters, func(i, j int) bool {
		return priority(h.adapters[i].Source()) < priority(h.adapters[j].Source())
	})
	for _, opt := range opts {
		opt(h)
	}
	h.index = search.New(h)
	return h
}

func priority(s model.Source) int {
	for i, src := range model.Sources {
		if src == s {
			return i
		}
	}
	return len(model.Sources)
}

// Adapters returns the configured adapters in priority order.
func (h *Hub) Adapters() []source.Adapter {
	return append([]source.Adapter(nil), h.adapters...)
}

func (h *Hub) adapter(s model.Source) source.Adapter {
	for _, a := range h.adapters {
		if a.Source() == s {
			return a
		}
	}
	return nil
}

// ListSessions returns every session across sources, newest first. The
// merged list is cached for the hub's TTL.
func (h *Hub) ListSessions(ctx context.Context) ([]model.SessionMeta, error) {
	sessions, err := cache.Call(h.cache, KeySessions, h.ttl, func() ([]model.SessionMeta, error) {
		return h.listAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]model.SessionMeta(nil), sessions...), nil
}

func (h *Hub) listAll(ctx context.Context) ([]model.SessionMeta, error) {
	results := make([]source.ListResult, len(h.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range h.adapters {
		i, a := i, a
		g.Go(func() error {
			results[i] = a.ListMetadata(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []model.SessionMeta
	var skipped []model.Skip
	for i, r := range results {
		logging.Logger.Debug("Listed sessions", "source", h.adapters[i].Source(),
			"sessions", len(r.Sessions), "skipped", len(r.Skipped))
		sessions = append(sessions, r.Sessions...)
		skipped = append(skipped, r.Skipped...)
	}
	SortSessions(sessions)

	h.mu.Lock()
	h.skipped = skipped
	h.mu.Unlock()
	return sessions, nil
}

// SortSessions orders by createdAt descending; ties go by source priority,
// then id, so the order never depends on which adapter finished first.
func SortSessions(sessions []model.SessionMeta) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		ta, tb := parse.TimestampMillis(a.CreatedAt), parse.TimestampMillis(b.CreatedAt)
		if ta != tb {
			return ta > tb
		}
		if pa, pb := priority(a.Source), priority(b.Source); pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	})
}

// GetSession loads one session. ref is either a composite "source:id",
// routed straight to that source, or a bare id, routed to the first
// adapter in priority order that holds it.
func (h *Hub) GetSession(ctx context.Context, ref string) (*model.SessionDetail, error) {
	if src, id, ok := model.ParseRef(ref); ok {
		a := h.adapter(src)
		if a == nil {
			return nil, fmt.Errorf("%s: source not configured: %w", ref, model.ErrSessionNotFound)
		}
		return a.LoadDetail(ctx, id)
	}

	for _, a := range h.adapters {
		if a.IsMember(ref) {
			return a.LoadDetail(ctx, ref)
		}
	}
	return nil, fmt.Errorf("%s: %w", ref, model.ErrSessionNotFound)
}

// LoadSession loads the detail behind a listed session.
func (h *Hub) LoadSession(ctx context.Context, meta model.SessionMeta) (*model.SessionDetail, error) {
	return h.GetSession(ctx, meta.Key())
}

// Search builds the index from the current listing on first use, then
// queries it.
func (h *Hub) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	sessions, err := h.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.index.Build(ctx, sessions); err != nil {
		return nil, err
	}
	return h.index.Search(ctx, query, opts)
}

// Analytics aggregates over every session's detail; the report is cached
// like the listing.
func (h *Hub) Analytics(ctx context.Context) (*analytics.Report, error) {
	return cache.Call(h.cache, KeyAnalytics, h.ttl, func() (*analytics.Report, error) {
		sessions, err := h.ListSessions(ctx)
		if err != nil {
			return nil, err
		}
		details, err := h.loadAll(ctx, sessions)
		if err != nil {
			return nil, err
		}
		return analytics.Compute(sessions, details, h.topN), nil
	})
}

// loadAll loads every session's detail; failures leave a nil slot.
func (h *Hub) loadAll(ctx context.Context, sessions []model.SessionMeta) ([]*model.SessionDetail, error) {
	details := make([]*model.SessionDetail, len(sessions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailWorkers)
	for i, s := range sessions {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := h.LoadSession(gctx, s)
			if err != nil {
				logging.Logger.Debug("Failed to load session", "session", s.Key(), "error", err)
				return nil
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// Refresh drops cached results and the search index together.
func (h *Hub) Refresh() {
	h.cache.Clear()
	h.index.Clear()
}

// Skipped returns the sessions left out of the most recent listing.
func (h *Hub) Skipped(ctx context.Context) ([]model.Skip, error) {
	if _, err := h.ListSessions(ctx); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.Skip(nil), h.skipped...), nil
}
