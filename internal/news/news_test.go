package news

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/okolica/internal/article"
)

type fakeSource struct {
	records []article.Record
	ok      bool
	calls   atomic.Int32
}

func (f *fakeSource) Fetch(context.Context) ([]article.Record, bool) {
	f.calls.Add(1)
	return f.records, f.ok
}

type fakeHeadlines struct {
	latest []article.Record
	found  []article.Record
	err    error
}

func (f *fakeHeadlines) Fetch(_ context.Context, limit int) ([]article.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.latest) {
		return f.latest[:limit], nil
	}
	return f.latest, nil
}

func (f *fakeHeadlines) Search(context.Context, string, int) ([]article.Record, error) {
	return f.found, f.err
}

func titles(results []article.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Title)
	}
	return out
}

func TestMerge_FeedWinsOnCanonicalURL(t *testing.T) {
	feed := []article.Record{
		{Title: "Победа в конкурсе", URL: "https://okolica.net/news/rayon/101.html", Summary: "анонс", Fulltext: "полный текст"},
	}
	listing := []article.Record{
		{Title: "Победа в конкурсе [...]", URL: "http://okolica.net/news/rayon/101.html/"},
		{Title: "Школьный праздник", URL: "https://okolica.net/news/gorod/102.html"},
		{Title: "Школьный праздник (дубль)", URL: "https://okolica.net/news/gorod/102.html"},
	}
	archive := []article.Record{
		{Title: "Выпуск 12", URL: "https://okolica.net/gazeta/"},
		{Title: "Интервью с мэром", URL: "https://okolica.net/gazeta/"},
	}

	merged := Merge(feed, listing, archive)
	require.Len(t, merged, 4)
	assert.Equal(t, "полный текст", merged[0].Fulltext)
	assert.Equal(t, "Победа в конкурсе", merged[0].Title)
	assert.Equal(t, "Школьный праздник", merged[1].Title)
	assert.Equal(t, "Выпуск 12", merged[2].Title)
	assert.Equal(t, "Интервью с мэром", merged[3].Title)
}

func TestMerge_RepeatedFeedURLTakesLastContent(t *testing.T) {
	feed := []article.Record{
		{Title: "Черновик", URL: "https://okolica.net/news/1.html", Summary: "старый анонс"},
		{Title: "Другая", URL: "https://okolica.net/news/2.html"},
		{Title: "Итоговый заголовок", URL: "http://okolica.net/news/1.html/", Summary: "новый анонс"},
	}
	listing := []article.Record{
		{Title: "Из списка", URL: "https://okolica.net/news/1.html"},
	}

	merged := Merge(feed, listing, nil)
	require.Len(t, merged, 2)
	assert.Equal(t, "Итоговый заголовок", merged[0].Title)
	assert.Equal(t, "новый анонс", merged[0].Summary)
	assert.Equal(t, "Другая", merged[1].Title)
}

func TestMerge_Idempotent(t *testing.T) {
	feed := []article.Record{{Title: "a", URL: "https://x/1"}, {Title: "b", URL: "https://x/2"}}
	listing := []article.Record{{Title: "c", URL: "http://x/2"}, {Title: "d", URL: "https://x/3"}}
	archive := []article.Record{{Title: "e", URL: "https://x/g/"}, {Title: "f", URL: "https://x/g/"}}

	assert.Equal(t, Merge(feed, listing, archive), Merge(feed, listing, archive))
	assert.Empty(t, Merge(nil, nil, nil))
}

func newTestService(feed, listing, archive, deep *fakeSource, head *fakeHeadlines) *Service {
	cfg := Config{Limits: Limits{Search: 10, Archive: 15, Latest: 5}}
	if feed != nil {
		cfg.Feed = feed
	}
	if listing != nil {
		cfg.Listing = listing
	}
	if archive != nil {
		cfg.Archive = archive
	}
	if deep != nil {
		cfg.DeepArchive = deep
	}
	if head != nil {
		cfg.Headlines = head
	}
	return NewService(cfg)
}

func TestSearchNews_RanksMergedPool(t *testing.T) {
	feed := &fakeSource{ok: true, records: []article.Record{
		{Title: "Школьный праздник", URL: "https://okolica.net/news/gorod/1.html", Summary: "праздник в школе"},
	}}
	listing := &fakeSource{ok: true, records: []article.Record{
		{Title: "Дождь в Татарске", URL: "https://okolica.net/news/gorod/2.html"},
		{Title: "Праздник урожая", URL: "https://okolica.net/news/rayon/3.html"},
	}}
	archive := &fakeSource{ok: true, records: []article.Record{{Title: "Праздник в архиве", URL: "https://okolica.net/gazeta/"}}}
	svc := newTestService(feed, listing, archive, nil, nil)

	results, err := svc.SearchNews(context.Background(), "праздник", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Праздник урожая", "Школьный праздник"}, titles(results))
	assert.Zero(t, archive.calls.Load())
}

func TestSearchNews_OneSourceFailing(t *testing.T) {
	feed := &fakeSource{ok: false}
	listing := &fakeSource{ok: true, records: []article.Record{{Title: "Дождь в Татарске", URL: "https://x/2"}}}
	svc := newTestService(feed, listing, nil, nil, nil)

	results, err := svc.SearchNews(context.Background(), "дождь", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Дождь в Татарске"}, titles(results))
}

func TestSearchNews_AllSourcesFailing(t *testing.T) {
	svc := newTestService(&fakeSource{}, &fakeSource{}, nil, nil, nil)

	results, err := svc.SearchNews(context.Background(), "дождь", 5)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, results)
}

func TestSearch_EmptyQuerySkipsFetching(t *testing.T) {
	feed := &fakeSource{ok: true}
	svc := newTestService(feed, nil, nil, nil, nil)

	results, err := svc.Search(context.Background(), "и в на", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, feed.calls.Load())
}

func TestSearchArchive_UsesDeepCrawl(t *testing.T) {
	shallow := &fakeSource{ok: true}
	deep := &fakeSource{ok: true, records: []article.Record{
		{Title: "Стихи о Сибири", URL: "https://okolica.net/gazeta/", Fulltext: "Стихи о Сибири"},
		{Title: "Рассказ о войне", URL: "https://okolica.net/gazeta/", Fulltext: "Рассказ о войне"},
	}}
	svc := newTestService(nil, nil, shallow, deep, nil)

	results, err := svc.SearchArchive(context.Background(), "стихи", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Стихи о Сибири"}, titles(results))
	assert.Zero(t, shallow.calls.Load())
	assert.Equal(t, int32(1), deep.calls.Load())
}

func TestSearch_FallsBackToSiteSearch(t *testing.T) {
	feed := &fakeSource{ok: true, records: []article.Record{{Title: "Дождь в Татарске", URL: "https://x/1"}}}
	head := &fakeHeadlines{found: []article.Record{{Title: "Стадион открыт", URL: "https://sibokolica.ru/news/5.html"}}}
	svc := newTestService(feed, &fakeSource{}, &fakeSource{}, nil, head)

	results, err := svc.Search(context.Background(), "стадион", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Стадион открыт"}, titles(results))
}

func TestLatest(t *testing.T) {
	head := &fakeHeadlines{latest: []article.Record{
		{Title: "Первая", URL: "https://sibokolica.ru/news/1.html", Fulltext: "скрыто"},
		{Title: "Вторая", URL: "https://sibokolica.ru/news/2.html"},
	}}
	svc := newTestService(nil, nil, nil, nil, head)

	results, err := svc.Latest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []article.Result{{Title: "Первая", URL: "https://sibokolica.ru/news/1.html"}}, results)

	svc = newTestService(nil, nil, nil, nil, &fakeHeadlines{err: errors.New("boom")})
	_, err = svc.Latest(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}
