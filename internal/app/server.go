package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/metrics"
	"github.com/deusflow/okolica/internal/news"
)

const (
	msgUnavailable = "сервис временно недоступен"
	maxLimit       = 50
)

// Searcher is the query side of news.Service.
type Searcher interface {
	Search(ctx context.Context, q string, limit int) ([]article.Result, error)
	SearchNews(ctx context.Context, q string, limit int) ([]article.Result, error)
	SearchArchive(ctx context.Context, q string, limit int) ([]article.Result, error)
	Latest(ctx context.Context, limit int) ([]article.Result, error)
}

// WeatherReporter renders the current weather line.
type WeatherReporter interface {
	Current(ctx context.Context) string
}

// Server exposes the service over HTTP.
type Server struct {
	news       Searcher
	weather    WeatherReporter
	notifier   *Notifier // nil when notifications are not configured
	cronSecret string
	stats      map[string]StatsFunc
}

func NewServer(svc Searcher, weather WeatherReporter, notifier *Notifier, cronSecret string) *Server {
	return &Server{news: svc, weather: weather, notifier: notifier, cronSecret: cronSecret, stats: map[string]StatsFunc{}}
}

// AddStats adds a named section to /api/stats. Call it before Router.
func (s *Server) AddStats(name string, fn StatsFunc) {
	s.stats[name] = fn
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/health", healthHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.searchHandler(s.news.Search))
		r.Get("/news", s.searchHandler(s.news.SearchNews))
		r.Get("/archive", s.searchHandler(s.news.SearchArchive))
		r.Get("/latest", s.latestHandler)
		r.Get("/weather", s.weatherHandler)
		r.Get("/stats", s.statsHandler)
		r.Get("/cron", s.cronHandler)
	})
	return r
}

type searchResponse struct {
	Query   string           `json:"query,omitempty"`
	Results []article.Result `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) searchHandler(fn func(ctx context.Context, q string, limit int) ([]article.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter q is required"})
			return
		}
		limit, ok := parseLimit(w, r)
		if !ok {
			return
		}

		results, err := fn(r.Context(), q, limit)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Query: q, Results: results})
	}
}

func (s *Server) latestHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	results, err := s.news.Latest(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) weatherHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"text": s.weather.Current(r.Context())})
}

func (s *Server) cronHandler(w http.ResponseWriter, r *http.Request) {
	if s.cronSecret != "" && r.Header.Get("Authorization") != "Bearer "+s.cronSecret {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
		return
	}
	if s.notifier == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "TELEGRAM_TOKEN not set"})
		return
	}

	res, err := s.notifier.Run(r.Context())
	if err != nil {
		slog.Error("cron run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgUnavailable})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		NotifyResult
	}{OK: true, NotifyResult: res})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()
	for name, fn := range s.stats {
		stats[name] = fn(r.Context())
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, news.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("search unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msgUnavailable})
		return
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgUnavailable})
}

// parseLimit reads ?limit=; absent means the service default (0).
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 50"})
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
