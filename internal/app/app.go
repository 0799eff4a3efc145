// Package app wires configuration into the search service, the notify job and the HTTP API.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/okolica/internal/cache"
	"github.com/deusflow/okolica/internal/config"
	"github.com/deusflow/okolica/internal/fetcher"
	"github.com/deusflow/okolica/internal/lemma"
	"github.com/deusflow/okolica/internal/news"
	"github.com/deusflow/okolica/internal/query"
	"github.com/deusflow/okolica/internal/ratelimit"
	"github.com/deusflow/okolica/internal/rss"
	"github.com/deusflow/okolica/internal/scraper"
	"github.com/deusflow/okolica/internal/search"
	"github.com/deusflow/okolica/internal/storage"
	"github.com/deusflow/okolica/internal/weather"
)

// App holds the long-lived components built from one configuration.
type App struct {
	Config  *config.Config
	News    *news.Service
	Weather *weather.Client

	LemmaCache *cache.Bounded
	Limiter    *ratelimit.HostLimiter // nil when REQUESTS_PER_SECOND is 0
}

// Build assembles the search graph. It performs no I/O.
func Build(cfg *config.Config) *App {
	limiter := ratelimit.NewHostLimiter(cfg.RequestsPerSecond, 1)
	client := fetcher.New(fetcher.Options{
		Timeout: cfg.RequestTimeout,
		Retries: cfg.RetryAttempts,
		Limiter: limiter,
	})
	a := BuildWithGetter(cfg, client)
	a.Limiter = limiter
	return a
}

// BuildWithGetter is Build with an explicit fetch capability.
func BuildWithGetter(cfg *config.Config, g fetcher.Getter) *App {
	lemmaCache := cache.New(cfg.LemmaCacheSize)
	lemmas := lemma.NewCached(lemma.New(cfg.Lemmatizer), lemmaCache)

	sections := make([]scraper.Section, 0, len(cfg.Sections))
	for _, s := range cfg.Sections {
		sections = append(sections, scraper.Section{Name: s.Name, Pages: s.Pages})
	}

	svc := news.NewService(news.Config{
		Feed:        &rss.Adapter{Getter: g, SiteURL: cfg.ArchiveSiteURL, Path: cfg.RSSPath},
		Listing:     &scraper.Listing{Getter: g, SiteURL: cfg.ArchiveSiteURL, Sections: sections},
		Archive:     &scraper.Archive{Getter: g, SiteURL: cfg.ArchiveSiteURL, Pages: cfg.ArchivePages},
		DeepArchive: &scraper.Archive{Getter: g, SiteURL: cfg.ArchiveSiteURL, Pages: cfg.ArchivePagesDeep},
		Headlines:   &scraper.FrontPage{Getter: g, SiteURL: cfg.SiteURL},
		Normalizer:  query.NewNormalizer(lemmas),
		Matcher:     search.NewMatcher(lemmas),
		Limits: news.Limits{
			Search:  cfg.LimitSearch,
			Archive: cfg.LimitArchive,
			Latest:  cfg.LimitLatest,
		},
		Timeout: cfg.SearchTimeout,
	})

	wc := weather.New(weather.Config{
		City:     cfg.WeatherCity,
		Lat:      cfg.WeatherLat,
		Lon:      cfg.WeatherLon,
		Timezone: cfg.WeatherTimezone,
		URL:      cfg.WeatherURL,
		Timeout:  cfg.RequestTimeout,
	})

	slog.Debug("app built", "lemmatizer", cfg.Lemmatizer, "sections", len(sections), "site", cfg.SiteURL, "archive_site", cfg.ArchiveSiteURL)
	return &App{Config: cfg, News: svc, Weather: wc, LemmaCache: lemmaCache}
}

// StatsFunc reports one section of /api/stats.
type StatsFunc func(ctx context.Context) map[string]interface{}

// Stats returns the /api/stats sections for the lemma cache and the request limiter.
func (a *App) Stats() map[string]StatsFunc {
	return map[string]StatsFunc{
		"lemma_cache": func(context.Context) map[string]interface{} {
			return a.LemmaCache.GetStats()
		},
		"rate_limiter": func(context.Context) map[string]interface{} {
			return a.Limiter.GetStats()
		},
	}
}

// StoreStats reports the number of announced articles held by store.
func StoreStats(store storage.ArticleStore) StatsFunc {
	return func(ctx context.Context) map[string]interface{} {
		n, err := store.Count(ctx)
		if err != nil {
			slog.Warn("failed to count stored articles", "error", err)
			return map[string]interface{}{"error": msgUnavailable}
		}
		return map[string]interface{}{"articles": n}
	}
}

// OpenStore picks PostgreSQL when DATABASE_URL is set and the JSON file otherwise.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.ArticleStore, error) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewFileStore(cfg.ArticlesFile)
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	slog.Info("using file article store", "path", cfg.ArticlesFile)
	return store, nil
}
