// Package article holds the content record shared by the source adapters, the merger and the ranker.
package article

import "strings"

// Record is one piece of content discovered on a source site.
// Fulltext is used for matching only and never leaves the engine.
type Record struct {
	Title    string
	URL      string
	Summary  string
	Fulltext string
}

// Result is the caller-facing view of a Record.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Result drops the search-only fields.
func (r Record) Result() Result {
	return Result{Title: r.Title, URL: r.URL, Summary: r.Summary}
}

// Results converts records to their external view, keeping order.
func Results(records []Record) []Result {
	out := make([]Result, 0, len(records))
	for _, r := range records {
		out = append(out, r.Result())
	}
	return out
}

// SecureScheme rewrites a leading http:// to https://.
func SecureScheme(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// CanonicalURL is the merge key: secure scheme, no trailing slash.
func CanonicalURL(u string) string {
	return strings.TrimRight(SecureScheme(strings.TrimSpace(u)), "/")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Resolve turns a site-relative href into an absolute URL on base.
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base = strings.TrimRight(base, "/")
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return base + "/" + href
}
