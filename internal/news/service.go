// Package news assembles the searchable pool from the source adapters and
// answers the search and "latest" queries.
package news

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/metrics"
	"github.com/deusflow/okolica/internal/query"
	"github.com/deusflow/okolica/internal/search"
)

// ErrUnavailable is returned when every source of a search failed.
var ErrUnavailable = errors.New("news sources unavailable")

// Source is one adapter that yields records. ok is false when it produced nothing usable.
type Source interface {
	Fetch(ctx context.Context) ([]article.Record, bool)
}

// Headlines reads the new site: its front page and its own search.
type Headlines interface {
	Fetch(ctx context.Context, limit int) ([]article.Record, error)
	Search(ctx context.Context, q string, limit int) ([]article.Record, error)
}

// Limits are the default result counts used when a caller passes limit <= 0.
type Limits struct {
	Search  int
	Archive int
	Latest  int
}

// Config wires a Service. Any source may be nil and then counts as failed.
type Config struct {
	Feed        Source
	Listing     Source
	Archive     Source // shallow crawl used by the combined search
	DeepArchive Source // longer crawl used by the archive-only search
	Headlines   Headlines

	Normalizer *query.Normalizer
	Matcher    *search.Matcher

	Limits  Limits
	Timeout time.Duration // bounds a whole search; 0 disables
}

type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.Limits.Search <= 0 {
		cfg.Limits.Search = 10
	}
	if cfg.Limits.Archive <= 0 {
		cfg.Limits.Archive = 15
	}
	if cfg.Limits.Latest <= 0 {
		cfg.Limits.Latest = 5
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = query.NewNormalizer(nil)
	}
	if cfg.Matcher == nil {
		cfg.Matcher = search.NewMatcher(nil)
	}
	return &Service{cfg: cfg}
}

// SearchNews searches the feed and the section listings, without the newspaper archive.
func (s *Service) SearchNews(ctx context.Context, q string, limit int) ([]article.Result, error) {
	return s.run(ctx, "news", q, pick(limit, s.cfg.Limits.Search), func(p pools) []article.Record {
		return Merge(p.feed, p.listing, nil)
	}, s.cfg.Feed, s.cfg.Listing, nil)
}

// SearchArchive searches the newspaper archive only, crawling deeper than the combined search.
func (s *Service) SearchArchive(ctx context.Context, q string, limit int) ([]article.Result, error) {
	return s.run(ctx, "archive", q, pick(limit, s.cfg.Limits.Archive), func(p pools) []article.Record {
		return p.archive
	}, nil, nil, s.cfg.DeepArchive)
}

// Search searches news and archive together. When nothing matches, the new
// site's own search is tried.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]article.Result, error) {
	limit = pick(limit, s.cfg.Limits.Search)
	results, err := s.run(ctx, "combined", q, limit, func(p pools) []article.Record {
		return Merge(p.feed, p.listing, p.archive)
	}, s.cfg.Feed, s.cfg.Listing, s.cfg.Archive)
	if len(results) > 0 || s.cfg.Headlines == nil {
		return results, err
	}

	records, ferr := s.cfg.Headlines.Search(ctx, q, limit)
	if ferr != nil {
		slog.Warn("site search fallback failed", "error", ferr)
		return results, err
	}
	if len(records) > 0 {
		return article.Results(records), nil
	}
	return results, err
}

// Latest returns the newest stories from the new site's front page.
func (s *Service) Latest(ctx context.Context, limit int) ([]article.Result, error) {
	if s.cfg.Headlines == nil {
		return nil, ErrUnavailable
	}
	records, err := s.cfg.Headlines.Fetch(ctx, pick(limit, s.cfg.Limits.Latest))
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return article.Results(records), nil
}

// LatestRecords is Latest without the conversion, for the notify job.
func (s *Service) LatestRecords(ctx context.Context, limit int) ([]article.Record, error) {
	if s.cfg.Headlines == nil {
		return nil, ErrUnavailable
	}
	return s.cfg.Headlines.Fetch(ctx, pick(limit, s.cfg.Limits.Latest))
}

type pools struct {
	feed, listing, archive []article.Record
}

func (s *Service) run(ctx context.Context, kind, q string, limit int, merge func(pools) []article.Record, feed, listing, archive Source) ([]article.Result, error) {
	start := time.Now()

	terms := s.cfg.Normalizer.Normalize(q)
	if len(terms) == 0 {
		metrics.Global.RecordSearch(kind, time.Since(start), 0)
		return []article.Result{}, nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	p, ok := gather(ctx, feed, listing, archive)
	if !ok {
		metrics.Global.RecordSearch(kind, time.Since(start), 0)
		return []article.Result{}, ErrUnavailable
	}

	pool := merge(p)
	results := s.cfg.Matcher.Match(pool, terms, limit)

	slog.Info("search done", "kind", kind, "terms", terms, "pool", len(pool), "results", len(results), "took", time.Since(start))
	metrics.Global.RecordSearch(kind, time.Since(start), len(results))
	return results, nil
}

// gather runs the non-nil sources concurrently. ok reports whether at least one succeeded.
func gather(ctx context.Context, feed, listing, archive Source) (pools, bool) {
	var (
		p       pools
		results [3]bool
	)
	g, gctx := errgroup.WithContext(ctx)

	spawn := func(name string, src Source, dst *[]article.Record, okFlag *bool) {
		if src == nil {
			return
		}
		g.Go(func() error {
			recs, ok := src.Fetch(gctx)
			metrics.Global.RecordSource(name, ok)
			*dst, *okFlag = recs, ok
			return nil
		})
	}
	spawn("rss", feed, &p.feed, &results[0])
	spawn("listing", listing, &p.listing, &results[1])
	spawn("archive", archive, &p.archive, &results[2])
	_ = g.Wait()

	return p, results[0] || results[1] || results[2]
}

func pick(limit, def int) int {
	if limit > 0 {
		return limit
	}
	return def
}
