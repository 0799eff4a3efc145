package news

import "github.com/deusflow/okolica/internal/article"

// Merge combines the three source pools into one. Feed and listing records are
// keyed by canonical URL. A URL repeated in the feed keeps its first position
// and takes the content of its last occurrence. A listing record never replaces
// a feed record, and a URL repeated in the listing keeps its first record.
// Archive records share URLs by nature and are appended as they are. The
// result is feed order, then new listing records in listing order, then the archive.
func Merge(feed, listing, archive []article.Record) []article.Record {
	pos := make(map[string]int, len(feed)+len(listing))
	merged := make([]article.Record, 0, len(feed)+len(listing)+len(archive))

	for _, r := range feed {
		key := article.CanonicalURL(r.URL)
		if i, dup := pos[key]; dup {
			merged[i] = r
			continue
		}
		pos[key] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range listing {
		key := article.CanonicalURL(r.URL)
		if _, dup := pos[key]; dup {
			continue
		}
		pos[key] = len(merged)
		merged = append(merged, r)
	}

	return append(merged, archive...)
}
