package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okolica",
			Name:      "fetch_requests_total",
			Help:      "Outgoing HTTP fetch attempts by result",
		},
		[]string{"status"}, // HTTP status code or "error"
	)

	SourceResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okolica",
			Name:      "source_results_total",
			Help:      "Source adapter invocations by source and outcome",
		},
		[]string{"source", "outcome"}, // outcome: ok / failed
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "okolica",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"kind"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okolica",
			Name:      "http_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(FetchRequestsTotal)
	prometheus.MustRegister(SourceResultsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Metrics is the in-process health snapshot served on /health.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	SearchesTotal   int64
	EmptySearches   int64
	SourceFailures  int64
	ArticlesStored  int64
	MessagesSent    int64
	NotifyRunsTotal int64

	// Timings
	LastSearchTime    time.Duration
	AverageSearchTime time.Duration
	TotalSearchTime   time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

// RecordSearch stores the outcome of one search invocation.
func (m *Metrics) RecordSearch(kind string, duration time.Duration, results int) {
	SearchDuration.WithLabelValues(kind).Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.SearchesTotal++
	if results == 0 {
		m.EmptySearches++
	}
	m.LastSearchTime = duration
	m.TotalSearchTime += duration
	m.AverageSearchTime = m.TotalSearchTime / time.Duration(m.SearchesTotal)
}

// RecordSource counts one adapter run.
func (m *Metrics) RecordSource(source string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	SourceResultsTotal.WithLabelValues(source, outcome).Inc()

	if ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures++
}

func (m *Metrics) IncrementArticlesStored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesStored++
}

func (m *Metrics) IncrementMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyRunsTotal++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"searches_total":         m.SearchesTotal,
		"empty_searches":         m.EmptySearches,
		"source_failures":        m.SourceFailures,
		"articles_stored":        m.ArticlesStored,
		"messages_sent":          m.MessagesSent,
		"notify_runs_total":      m.NotifyRunsTotal,
		"last_search_time_ms":    m.LastSearchTime.Milliseconds(),
		"average_search_time_ms": m.AverageSearchTime.Milliseconds(),
		"last_run_time":          m.LastRunTime.Format(time.RFC3339),
		"last_error_time":        m.LastErrorTime.Format(time.RFC3339),
		"last_error":             m.LastError,
		"is_healthy":             m.IsHealthy,
	}
}
