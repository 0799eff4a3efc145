// Package search scores pooled records against a query term set and ranks them.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/lemma"
	"github.com/deusflow/okolica/internal/query"
)

const prefixRunes = 3

var wordPattern = regexp.MustCompile(`[а-яёa-z]{2,}`)

// Matcher ranks records by word overlap with the query terms.
type Matcher struct {
	lemmas lemma.Lemmatizer
}

// NewMatcher builds a Matcher. lemmas should be the cached lemmatizer shared with the normalizer.
func NewMatcher(lemmas lemma.Lemmatizer) *Matcher {
	if lemmas == nil {
		lemmas = lemma.Lowercase{}
	}
	return &Matcher{lemmas: lemmas}
}

type scored struct {
	count  int
	record article.Record
}

// Match returns at most limit results. Records matching every term are returned
// when there is at least one; only otherwise are records matching any term
// considered. Both phases order by match count descending, then title ascending.
// An empty term set matches nothing.
func (m *Matcher) Match(pool []article.Record, terms query.Terms, limit int) []article.Result {
	if len(terms) == 0 || limit <= 0 {
		return []article.Result{}
	}

	var full, partial []scored
	for _, rec := range pool {
		n := m.Count(rec, terms)
		switch {
		case n == len(terms):
			full = append(full, scored{n, rec})
		case n > 0:
			partial = append(partial, scored{n, rec})
		}
	}

	if len(full) > 0 {
		return top(full, limit)
	}
	return top(partial, limit)
}

// Count reports how many terms match the record.
func (m *Matcher) Count(rec article.Record, terms query.Terms) int {
	t := newText(rec, m.lemmas)
	n := 0
	for _, term := range terms {
		if t.matches(term) {
			n++
		}
	}
	return n
}

func top(list []scored, limit int) []article.Result {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].record.Title < list[j].record.Title
	})
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]article.Result, 0, len(list))
	for _, s := range list {
		out = append(out, s.record.Result())
	}
	return out
}

// text is the searchable form of one record. Word lemmas are computed on first use.
type text struct {
	lower  string
	lemmas lemma.Lemmatizer
	words  []string
	ready  bool
}

func newText(rec article.Record, l lemma.Lemmatizer) *text {
	return &text{
		lower:  strings.ToLower(rec.Title + " " + rec.Summary + " " + rec.Fulltext),
		lemmas: l,
	}
}

func (t *text) wordLemmas() []string {
	if t.ready {
		return t.words
	}
	seen := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(t.lower, -1) {
		l := t.lemmas.Lemma(w)
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		t.words = append(t.words, l)
	}
	t.ready = true
	return t.words
}

// matches applies, in order: literal substring, equal lemmas, lemma containment
// either way, and a shared three-letter lemma prefix.
func (t *text) matches(term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(t.lower, term) {
		return true
	}

	termLemma := t.lemmas.Lemma(term)
	for _, wl := range t.wordLemmas() {
		if wl == termLemma {
			return true
		}
		if strings.Contains(wl, term) || strings.Contains(term, wl) {
			return true
		}
		if sharePrefix(termLemma, wl) {
			return true
		}
	}
	return false
}

func sharePrefix(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < prefixRunes || len(rb) < prefixRunes {
		return false
	}
	return string(ra[:prefixRunes]) == string(rb[:prefixRunes])
}
