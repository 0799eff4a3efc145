package app

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/config"
	"github.com/deusflow/okolica/internal/storage"
)

// sitePages answers canned bodies keyed by "url?query" and 404 otherwise.
type sitePages map[string]string

func (p sitePages) Fetch(_ context.Context, rawURL string, params url.Values) ([]byte, int, error) {
	key := rawURL
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	if body, ok := p[key]; ok {
		return []byte(body), 200, nil
	}
	return nil, 404, nil
}

func cp1251(t *testing.T, s string) string {
	t.Helper()
	enc, err := charmap.Windows1251.NewEncoder().String(s)
	require.NoError(t, err)
	return enc
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sections = []config.Section{{Name: "", Pages: 2}}
	cfg.ArchivePages = 1
	cfg.ArchivePagesDeep = 2
	cfg.SearchTimeout = 5 * time.Second
	return cfg
}

func TestBuild_SearchEndToEnd(t *testing.T) {
	feed := `<?xml version="1.0" encoding="windows-1251"?>
<rss version="2.0"><channel><title>Околица</title>
<item><title>Победа в конкурсе</title><link>https://okolica.net/news/rayon/101.html</link>
<description>Наши школьники победили</description></item>
</channel></rss>`
	listing := `<html><body>
<a href="/news/rayon/101.html">Победа в конкурсе</a>
<a href="/news/gorod/102.html">Школьный праздник</a>
</body></html>`
	gazeta := `<html><body><p>• Стихи о победе • Рассказ о войне</p></body></html>`

	g := sitePages{
		"https://okolica.net/news/rss.xml": cp1251(t, feed),
		"https://okolica.net/news/":        cp1251(t, listing),
		"https://okolica.net/gazeta/":      cp1251(t, gazeta),
	}
	a := BuildWithGetter(testConfig(), g)

	results, err := a.News.SearchNews(context.Background(), "победа", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, article.Result{
		Title:   "Победа в конкурсе",
		URL:     "https://okolica.net/news/rayon/101.html",
		Summary: "Наши школьники победили",
	}, results[0])

	archive, err := a.News.SearchArchive(context.Background(), "война", 0)
	require.NoError(t, err)
	require.Len(t, archive, 1)
	assert.Equal(t, "Рассказ о войне", archive[0].Title)
	assert.Equal(t, "https://okolica.net/gazeta/", archive[0].URL)
}

func TestOpenStore_FileFallback(t *testing.T) {
	cfg := testConfig()
	cfg.ArticlesFile = filepath.Join(t.TempDir(), "articles.json")

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &storage.FileStore{}, store)
}

type fakeLatest struct {
	records []article.Record
	err     error
}

func (f fakeLatest) LatestRecords(context.Context, int) ([]article.Record, error) {
	return f.records, f.err
}

type recordingSender struct {
	sent []string
	fail map[string]bool
}

func (r *recordingSender) SendMessage(_ context.Context, _ string, text string) error {
	for marker := range r.fail {
		if strings.Contains(text, marker) {
			return errors.New("telegram down")
		}
	}
	r.sent = append(r.sent, text)
	return nil
}

func TestNotifier_AnnouncesOnlyNewArticles(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "articles.json"))
	require.NoError(t, err)
	_, _, err = store.Add(ctx, "Старая", "https://sibokolica.ru/news/1.html", "")
	require.NoError(t, err)

	sender := &recordingSender{}
	n := &Notifier{
		Latest: fakeLatest{records: []article.Record{
			{Title: "Старая", URL: "https://sibokolica.ru/news/1.html"},
			{Title: "Новая", URL: "https://sibokolica.ru/news/2.html", Summary: "анонс"},
		}},
		Store:  store,
		Sender: sender,
		ChatID: "-100",
		Limit:  10,
	}

	res, err := n.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotifyResult{NewArticles: 1, NotificationsSent: 1}, res)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "<b>Новая</b>")

	again, err := n.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotifyResult{}, again)
}

func TestNotifier_SendFailureKeepsGoing(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "articles.json"))
	require.NoError(t, err)

	sender := &recordingSender{fail: map[string]bool{"Первая": true}}
	n := &Notifier{
		Latest: fakeLatest{records: []article.Record{
			{Title: "Первая", URL: "https://x/1"},
			{Title: "Вторая", URL: "https://x/2"},
		}},
		Store:  store,
		Sender: sender,
	}

	res, err := n.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotifyResult{NewArticles: 2, NotificationsSent: 1}, res)
}

func TestNotifier_LatestError(t *testing.T) {
	n := &Notifier{Latest: fakeLatest{err: errors.New("front page down")}}
	_, err := n.Run(context.Background())
	assert.Error(t, err)
}

func TestPostResults(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{}

	require.NoError(t, PostResults(ctx, sender, "-100", "news", "школа", []article.Result{
		{Title: "Школьный праздник", URL: "https://okolica.net/news/gorod/1.html"},
	}))
	require.NoError(t, PostResults(ctx, sender, "-100", "search", "стихи", nil))

	require.Len(t, sender.sent, 2)
	assert.True(t, strings.HasPrefix(sender.sent[0], "📰 <b>Новости okolica.net по запросу «школа»:</b>\n\n1. <b>Школьный праздник</b>"))
	assert.Equal(t, "😔 По запросу «стихи» ничего не найдено.", sender.sent[1])

	failing := &recordingSender{fail: map[string]bool{"стихи": true}}
	assert.Error(t, PostResults(ctx, failing, "-100", "search", "стихи", nil))
}

func TestBuild_ExposesStats(t *testing.T) {
	a := BuildWithGetter(testConfig(), sitePages{})
	require.NotNil(t, a.LemmaCache)
	assert.Nil(t, a.Limiter)

	_, _ = a.News.SearchNews(context.Background(), "школа", 0)

	stats := a.Stats()
	require.Contains(t, stats, "lemma_cache")
	require.Contains(t, stats, "rate_limiter")
	assert.Greater(t, stats["lemma_cache"](context.Background())["total_items"], 0)
	assert.Equal(t, false, stats["rate_limiter"](context.Background())["enabled"])
}

func TestStoreStats(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "articles.json"))
	require.NoError(t, err)
	_, _, err = store.Add(ctx, "Первая", "https://x/1", "")
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"articles": 1}, StoreStats(store)(ctx))
}
