package scraper

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/fetcher"
)

var articleHref = regexp.MustCompile(`/news/[^/]+/\d+\.html`)

// Section is one paginated news listing. An empty Name is the main feed at /news/.
type Section struct {
	Name  string `yaml:"name"`
	Pages int    `yaml:"pages"`
}

// Listing crawls the paginated news sections of the old site.
type Listing struct {
	Getter   fetcher.Getter
	SiteURL  string
	Sections []Section
}

// Fetch crawls every section in order. Links are deduplicated by href across the
// whole crawl, so a story listed in several sections is kept once. A failed page
// ends its own section only. ok is false when no page at all could be read.
func (l *Listing) Fetch(ctx context.Context) ([]article.Record, bool) {
	seen := make(map[string]struct{})
	var (
		records []article.Record
		anyOK   bool
	)
	for _, sec := range l.Sections {
		recs, ok := l.crawlSection(ctx, sec, seen)
		records = append(records, recs...)
		anyOK = anyOK || ok
	}
	return records, anyOK
}

func (l *Listing) sectionURL(name string) string {
	base := strings.TrimRight(l.SiteURL, "/") + "/news"
	if name != "" {
		base += "/" + strings.Trim(name, "/")
	}
	return base + "/"
}

func (l *Listing) crawlSection(ctx context.Context, sec Section, seen map[string]struct{}) ([]article.Record, bool) {
	var records []article.Record
	pageURL := l.sectionURL(sec.Name)
	ok := false

	for page := 1; page <= sec.Pages; page++ {
		doc, err := loadPage(ctx, l.Getter, pageURL, pageParams(page), fetcher.Decode)
		if err != nil {
			slog.Warn("listing page failed", "section", sectionLabel(sec.Name), "page", page, "error", err)
			break
		}
		ok = true
		records = append(records, l.extract(doc, seen)...)
	}
	slog.Debug("listing section done", "section", sectionLabel(sec.Name), "records", len(records))
	return records, ok
}

// extract collects article links from one listing page.
func (l *Listing) extract(doc *goquery.Document, seen map[string]struct{}) []article.Record {
	var records []article.Record
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !isArticleHref(href) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}

		title := cleanTitle(s.Text())
		if runeLen(title) < MinTitleRunes {
			return
		}

		seen[href] = struct{}{}
		records = append(records, article.Record{
			Title: title,
			URL:   article.SecureScheme(article.Resolve(l.SiteURL, href)),
		})
	})
	return records
}

func isArticleHref(href string) bool {
	if !strings.Contains(href, "/news/") || !strings.Contains(href, ".html") || strings.Contains(href, "rss") {
		return false
	}
	if strings.Contains(href, "/top.html") || strings.Contains(href, "/last.html") {
		return false
	}
	return articleHref.MatchString(href)
}

func sectionLabel(name string) string {
	if name == "" {
		return "news"
	}
	return name
}
