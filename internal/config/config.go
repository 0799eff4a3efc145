package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Section is one paginated news listing on the archive site.
type Section struct {
	Name  string `yaml:"name"`
	Pages int    `yaml:"pages"`
}

type Config struct {
	// Sites
	SiteURL        string // current site, front page for "latest"
	ArchiveSiteURL string // old site with the feed, listings and newspaper archive
	RSSPath        string
	Sections       []Section

	// Crawl depth
	ArchivePages     int // archive index pages for combined search
	ArchivePagesDeep int // archive index pages for archive-only search

	// Result limits
	LimitLatest  int
	LimitSearch  int
	LimitArchive int
	NotifyLimit  int // front-page stories checked by the notify job

	// HTTP fetching
	RequestTimeout    time.Duration
	RetryAttempts     int // additional attempts after the first
	RequestsPerSecond float64
	SearchTimeout     time.Duration

	// Matching
	Lemmatizer     string // "stem" or "none"
	LemmaCacheSize int

	// Weather
	WeatherCity     string
	WeatherLat      float64
	WeatherLon      float64
	WeatherTimezone string
	WeatherURL      string

	// Notifications
	TelegramToken  string
	TelegramChatID string
	CronSecret     string

	// Storage
	DatabaseURL  string
	ArticlesFile string

	// App settings
	ListenAddr        string
	SourcesConfigPath string
	Debug             bool
}

// sourcesFile is the optional YAML overlay for site layout.
//
//	site_url: https://sibokolica.ru
//	archive_site_url: https://okolica.net
//	sections:
//	  - name: ""
//	    pages: 12
type sourcesFile struct {
	SiteURL          string    `yaml:"site_url"`
	ArchiveSiteURL   string    `yaml:"archive_site_url"`
	RSSPath          string    `yaml:"rss_path"`
	Sections         []Section `yaml:"sections"`
	ArchivePages     int       `yaml:"archive_pages"`
	ArchivePagesDeep int       `yaml:"archive_pages_deep"`
}

// DefaultSections are the listings crawled for news search: the main feed and four rubrics.
func DefaultSections() []Section {
	return []Section{
		{Name: "", Pages: 12},
		{Name: "rayon", Pages: 5},
		{Name: "busines", Pages: 5},
		{Name: "gorod", Pages: 5},
		{Name: "foto", Pages: 5},
	}
}

func Default() *Config {
	return &Config{
		SiteURL:           "https://sibokolica.ru",
		ArchiveSiteURL:    "https://okolica.net",
		RSSPath:           "/news/rss.xml",
		Sections:          DefaultSections(),
		ArchivePages:      8,
		ArchivePagesDeep:  20,
		LimitLatest:       5,
		LimitSearch:       10,
		LimitArchive:      15,
		NotifyLimit:       10,
		RequestTimeout:    10 * time.Second,
		RetryAttempts:     2,
		RequestsPerSecond: 0,
		SearchTimeout:     60 * time.Second,
		Lemmatizer:        "stem",
		LemmaCacheSize:    5000,
		WeatherCity:       "Татарск",
		WeatherLat:        55.2213,
		WeatherLon:        75.9815,
		WeatherTimezone:   "Asia/Novosibirsk",
		WeatherURL:        "https://api.open-meteo.com/v1/forecast",
		ArticlesFile:      "articles.json",
		ListenAddr:        ":8080",
		SourcesConfigPath: "configs/sources.yaml",
	}
}

// Load builds the configuration from defaults, the sources file and the environment.
func Load() (*Config, error) {
	cfg := Default()

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG", cfg.SourcesConfigPath)
	if err := cfg.loadSources(cfg.SourcesConfigPath); err != nil {
		return nil, err
	}

	cfg.SiteURL = getEnvOrDefault("SITE_URL", cfg.SiteURL)
	cfg.ArchiveSiteURL = getEnvOrDefault("ARCHIVE_SITE_URL", cfg.ArchiveSiteURL)

	cfg.ArchivePages = getEnvIntOrDefault("ARCHIVE_PAGES", cfg.ArchivePages)
	cfg.ArchivePagesDeep = getEnvIntOrDefault("ARCHIVE_PAGES_DEEP", cfg.ArchivePagesDeep)
	cfg.LimitLatest = getEnvIntOrDefault("ARTICLES_LIMIT_LATEST", cfg.LimitLatest)
	cfg.LimitSearch = getEnvIntOrDefault("ARTICLES_LIMIT_SEARCH", cfg.LimitSearch)
	cfg.LimitArchive = getEnvIntOrDefault("ARTICLES_LIMIT_ARCHIVE", cfg.LimitArchive)
	cfg.NotifyLimit = getEnvIntOrDefault("NOTIFY_LIMIT", cfg.NotifyLimit)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SearchTimeout = d
		}
	}
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RequestsPerSecond = getEnvFloatOrDefault("REQUESTS_PER_SECOND", cfg.RequestsPerSecond)

	cfg.Lemmatizer = getEnvOrDefault("LEMMATIZER", cfg.Lemmatizer)
	cfg.LemmaCacheSize = getEnvIntOrDefault("LEMMA_CACHE_SIZE", cfg.LemmaCacheSize)

	cfg.WeatherCity = getEnvOrDefault("WEATHER_CITY", cfg.WeatherCity)
	cfg.WeatherLat = getEnvFloatOrDefault("WEATHER_LAT", cfg.WeatherLat)
	cfg.WeatherLon = getEnvFloatOrDefault("WEATHER_LON", cfg.WeatherLon)
	cfg.WeatherTimezone = getEnvOrDefault("WEATHER_TIMEZONE", cfg.WeatherTimezone)

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.CronSecret = os.Getenv("CRON_SECRET")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.ArticlesFile = getEnvOrDefault("ARTICLES_FILE", cfg.ArticlesFile)

	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", cfg.ListenAddr)
	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// loadSources overlays the YAML sources file. A missing file is not an error.
func (c *Config) loadSources(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var sf sourcesFile
	if err := yaml.NewDecoder(f).Decode(&sf); err != nil {
		return fmt.Errorf("decode sources config %s: %w", path, err)
	}

	if sf.SiteURL != "" {
		c.SiteURL = sf.SiteURL
	}
	if sf.ArchiveSiteURL != "" {
		c.ArchiveSiteURL = sf.ArchiveSiteURL
	}
	if sf.RSSPath != "" {
		c.RSSPath = sf.RSSPath
	}
	if len(sf.Sections) > 0 {
		c.Sections = sf.Sections
	}
	if sf.ArchivePages > 0 {
		c.ArchivePages = sf.ArchivePages
	}
	if sf.ArchivePagesDeep > 0 {
		c.ArchivePagesDeep = sf.ArchivePagesDeep
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SiteURL == "" || c.ArchiveSiteURL == "" {
		return fmt.Errorf("SITE_URL and ARCHIVE_SITE_URL are required")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be >= 0")
	}
	if c.LimitLatest <= 0 || c.LimitSearch <= 0 || c.LimitArchive <= 0 || c.NotifyLimit <= 0 {
		return fmt.Errorf("result limits must be positive")
	}
	for _, s := range c.Sections {
		if s.Pages < 1 {
			return fmt.Errorf("section %q: pages must be >= 1", s.Name)
		}
	}
	if c.ArchivePages < 1 || c.ArchivePagesDeep < 1 {
		return fmt.Errorf("archive page counts must be >= 1")
	}
	return nil
}

// ValidateNotify checks the settings needed to post new articles to Telegram.
func (c *Config) ValidateNotify() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	return nil
}
