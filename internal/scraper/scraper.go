// Package scraper extracts content records from the HTML pages of the news sites.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/okolica/internal/fetcher"
)

// MinTitleRunes is the shortest title accepted from markup.
const MinTitleRunes = 5

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	truncatedTail = regexp.MustCompile(`\s*\[\.\.\.\]\s*$`)
)

// pageParams returns the query for page n of a paginated listing; page 1 has none.
func pageParams(n int) url.Values {
	if n <= 1 {
		return nil
	}
	return url.Values{"page": {strconv.Itoa(n)}}
}

// loadPage fetches a listing page and parses it. decode selects the text decoding.
func loadPage(ctx context.Context, g fetcher.Getter, pageURL string, params url.Values, decode func([]byte) string) (*goquery.Document, error) {
	body, err := fetcher.Body(ctx, g, pageURL, params)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decode(body)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// cleanTitle trims whitespace and the trailing "[...]" marker the listings append to long titles.
func cleanTitle(s string) string {
	return truncatedTail.ReplaceAllString(collapseSpace(s), "")
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func runeLen(s string) int {
	return len([]rune(s))
}
