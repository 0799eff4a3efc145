package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SOURCES_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://okolica.net", cfg.ArchiveSiteURL)
	assert.Equal(t, DefaultSections(), cfg.Sections)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.RetryAttempts)
	assert.Equal(t, 10, cfg.LimitSearch)
	assert.Equal(t, 15, cfg.LimitArchive)
	assert.Equal(t, "stem", cfg.Lemmatizer)
}

func TestLoad_SourcesFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
archive_site_url: https://mirror.example
sections:
  - name: rayon
    pages: 2
archive_pages_deep: 3
`), 0o644))

	t.Setenv("SOURCES_CONFIG", path)
	t.Setenv("SEARCH_TIMEOUT", "15s")
	t.Setenv("ARTICLES_LIMIT_SEARCH", "3")
	t.Setenv("WEATHER_LAT", "54.9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example", cfg.ArchiveSiteURL)
	assert.Equal(t, []Section{{Name: "rayon", Pages: 2}}, cfg.Sections)
	assert.Equal(t, 3, cfg.ArchivePagesDeep)
	assert.Equal(t, 8, cfg.ArchivePages)
	assert.Equal(t, 15*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 3, cfg.LimitSearch)
	assert.InDelta(t, 54.9, cfg.WeatherLat, 1e-9)
}

func TestLoad_BadSourcesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sections: [oops"), 0o644))
	t.Setenv("SOURCES_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Sections = []Section{{Name: "rayon", Pages: 0}}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	assert.Error(t, cfg.ValidateNotify())
	cfg.TelegramToken, cfg.TelegramChatID = "t", "c"
	assert.NoError(t, cfg.ValidateNotify())
}
