package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/fetcher"
)

const (
	summaryMaxRunes       = 200
	searchSummaryMaxRunes = 150
	summarySearchDepth    = 5
)

// FrontPage reads headlines from the new site: the home page for the newest
// stories and the site's own search page as a fallback for queries.
type FrontPage struct {
	Getter  fetcher.Getter
	SiteURL string
}

// Fetch returns up to limit stories from the home page.
func (f *FrontPage) Fetch(ctx context.Context, limit int) ([]article.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	doc, err := loadPage(ctx, f.Getter, strings.TrimRight(f.SiteURL, "/")+"/", nil, fetcher.DecodeUTF8)
	if err != nil {
		return nil, fmt.Errorf("front page: %w", err)
	}
	return f.extract(doc, limit, summaryMaxRunes), nil
}

// Search runs q through the site's built-in search and returns up to limit hits.
func (f *FrontPage) Search(ctx context.Context, q string, limit int) ([]article.Record, error) {
	if limit <= 0 || strings.TrimSpace(q) == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("do", "search")
	params.Set("subaction", "search")
	params.Set("story", q)

	doc, err := loadPage(ctx, f.Getter, strings.TrimRight(f.SiteURL, "/")+"/index.php", params, fetcher.DecodeUTF8)
	if err != nil {
		return nil, fmt.Errorf("site search: %w", err)
	}
	return f.extract(doc, limit, searchSummaryMaxRunes), nil
}

func (f *FrontPage) extract(doc *goquery.Document, limit, summaryMax int) []article.Record {
	var records []article.Record
	doc.Find("h2").EachWithBreak(func(i int, h2 *goquery.Selection) bool {
		link := h2.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" || !strings.Contains(href, ".html") {
			return true
		}

		title := collapseSpace(h2.Text())
		if title == "" {
			return true
		}

		records = append(records, article.Record{
			Title:   title,
			URL:     article.Resolve(f.SiteURL, href),
			Summary: nearbySummary(h2, title, summaryMax),
		})
		return len(records) < limit
	})
	return records
}

// nearbySummary looks for a teaser paragraph around a headline, walking up to
// summarySearchDepth ancestors, and caps it at maxRunes.
func nearbySummary(h2 *goquery.Selection, title string, maxRunes int) string {
	parent := h2.Parent()
	for depth := 0; depth < summarySearchDepth && parent.Length() > 0; depth++ {
		var found string
		parent.Find("p, div").EachWithBreak(func(i int, s *goquery.Selection) bool {
			text := collapseSpace(s.Text())
			n := runeLen(text)
			if text == "" || text == title || n <= 30 || n >= 300 || strings.HasPrefix(text, "http") {
				return true
			}
			found = text
			return false
		})
		if found != "" {
			if runeLen(found) > maxRunes {
				return article.Truncate(found, maxRunes) + "..."
			}
			return found
		}
		parent = parent.Parent()
	}
	return ""
}
