package rss

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/fetcher"
)

// SummaryMaxRunes caps the description shown to users.
const SummaryMaxRunes = 200

var xmlDecl = regexp.MustCompile(`^\s*<\?xml[^>]*\?>`)

// Adapter reads the site's news feed. The feed carries title, description and
// a non-standard <fulltext> element which is kept for matching.
type Adapter struct {
	Getter  fetcher.Getter
	SiteURL string // e.g. https://okolica.net
	Path    string // feed path, default /news/rss.xml
}

// Fetch downloads and parses the feed. ok is false when the feed could not be
// obtained or parsed; the pipeline then continues without it.
func (a *Adapter) Fetch(ctx context.Context) ([]article.Record, bool) {
	path := a.Path
	if path == "" {
		path = "/news/rss.xml"
	}
	feedURL := article.Resolve(a.SiteURL, path)

	body, err := fetcher.Body(ctx, a.Getter, feedURL, nil)
	if err != nil {
		slog.Warn("rss fetch failed", "url", feedURL, "error", err)
		return nil, false
	}

	records, err := a.Parse(body)
	if err != nil {
		slog.Warn("rss parse failed", "url", feedURL, "error", err)
		return nil, false
	}
	slog.Debug("rss loaded", "url", feedURL, "records", len(records))
	return records, true
}

// Parse turns raw feed bytes (Windows-1251 or UTF-8) into records.
func (a *Adapter) Parse(body []byte) ([]article.Record, error) {
	text := fetcher.Decode(body)
	// The body is already UTF-8; a leftover encoding declaration would make the
	// XML reader transcode it a second time.
	text = xmlDecl.ReplaceAllString(text, `<?xml version="1.0" encoding="UTF-8"?>`)

	feed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	records := make([]article.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		if rec, ok := a.record(item); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (a *Adapter) record(item *gofeed.Item) (article.Record, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" || !strings.Contains(link, "/news/") {
		return article.Record{}, false
	}
	if !strings.HasPrefix(link, "http") && strings.HasPrefix(link, "/") {
		link = article.Resolve(a.SiteURL, link)
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return article.Record{}, false
	}

	return article.Record{
		Title:    title,
		URL:      article.SecureScheme(link),
		Summary:  article.Truncate(strings.TrimSpace(item.Description), SummaryMaxRunes),
		Fulltext: fulltext(item),
	}, true
}

func fulltext(item *gofeed.Item) string {
	if v, ok := item.Custom["fulltext"]; ok {
		return strings.TrimSpace(v)
	}
	// Yandex-style feeds namespace the element as yandex:full-text.
	for _, ns := range item.Extensions {
		for _, el := range ns["full-text"] {
			if v := strings.TrimSpace(el.Value); v != "" {
				return v
			}
		}
	}
	return ""
}
