package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/fetcher"
)

// Bullet separates article headlines in the newspaper issue index.
const Bullet = "•"

// Archive crawls the newspaper issue index (/gazeta/), where every issue lists its
// headlines as "• Headline one • Headline two". Each headline becomes a record
// pointing at the archive root, so many records share one URL.
type Archive struct {
	Getter  fetcher.Getter
	SiteURL string
	Pages   int
}

func (a *Archive) rootURL() string {
	return strings.TrimRight(a.SiteURL, "/") + "/gazeta/"
}

// Fetch reads up to Pages index pages. The first failed page ends the crawl;
// headlines gathered before it are kept. ok is false when nothing could be read.
func (a *Archive) Fetch(ctx context.Context) ([]article.Record, bool) {
	root := a.rootURL()
	seen := make(map[string]struct{})
	var records []article.Record
	ok := false

	for page := 1; page <= a.Pages; page++ {
		doc, err := loadPage(ctx, a.Getter, root, pageParams(page), fetcher.Decode)
		if err != nil {
			slog.Warn("archive page failed", "page", page, "error", err)
			break
		}
		ok = true

		doc.Find("p, div, li, td").Each(func(i int, s *goquery.Selection) {
			text := joinedText(s)
			if !strings.Contains(text, Bullet) || runeLen(text) < 10 {
				return
			}
			for _, title := range SplitBullets(text, seen) {
				records = append(records, article.Record{
					Title:    title,
					URL:      root,
					Fulltext: title,
				})
			}
		})
	}
	slog.Debug("archive crawl done", "records", len(records))
	return records, ok
}

// SplitBullets splits a bulleted block into headlines. Fragments shorter than
// MinTitleRunes and headlines already present in seen are dropped; accepted ones
// are added to seen. Deduplication is by exact string.
func SplitBullets(text string, seen map[string]struct{}) []string {
	var titles []string
	for _, part := range strings.Split(text, Bullet) {
		title := collapseSpace(part)
		if runeLen(title) < MinTitleRunes {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}

// joinedText returns the element's text nodes, each trimmed, joined by single spaces.
func joinedText(s *goquery.Selection) string {
	var parts []string
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(c)
		})
	}
	walk(s)
	return strings.Join(parts, " ")
}
