// Package query turns free-text user input into the ordered term set used for matching.
package query

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/okolica/internal/lemma"
)

// MinTermRunes is the shortest token or synonym kept in a term set.
const MinTermRunes = 2

var tokenPattern = regexp.MustCompile(`[а-яёa-z0-9]+`)

// Terms is an ordered, de-duplicated set of normalized query terms.
type Terms []string

// Normalizer tokenizes queries, drops stop-words, lemmatizes and expands with synonyms.
type Normalizer struct {
	lemmas lemma.Lemmatizer

	// Synonym table indexed by literal key, then by the lemma of each key / value; first entry wins.
	byKey   map[string]int
	byValue map[string][]int
}

// NewNormalizer builds a Normalizer. lemmas should be the same cached
// lemmatizer the matcher uses.
func NewNormalizer(lemmas lemma.Lemmatizer) *Normalizer {
	if lemmas == nil {
		lemmas = lemma.Lowercase{}
	}
	n := &Normalizer{
		lemmas:  lemmas,
		byKey:   make(map[string]int, len(synonyms)),
		byValue: make(map[string][]int),
	}
	// A literal key beats a key that only reduces to the same lemma, so the
	// stem "стих" resolves to the "стих" entry rather than to "стихи".
	for i, e := range synonyms {
		if _, ok := n.byKey[e.key]; !ok {
			n.byKey[e.key] = i
		}
	}
	for i, e := range synonyms {
		k := lemmas.Lemma(e.key)
		if _, ok := n.byKey[k]; !ok {
			n.byKey[k] = i
		}
		for _, v := range e.values {
			lv := lemmas.Lemma(v)
			n.byValue[lv] = append(n.byValue[lv], i)
		}
	}
	return n
}

// Tokenize lowercases q and returns its Cyrillic/Latin/digit tokens that are
// long enough and not stop-words.
func Tokenize(q string) []string {
	var out []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(q), -1) {
		if utf8.RuneCountInString(tok) < MinTermRunes || IsStopWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Normalize returns the term set for q. An empty result means "match nothing".
func (n *Normalizer) Normalize(q string) Terms {
	tokens := Tokenize(q)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	var terms Terms
	for _, tok := range tokens {
		l := n.lemmas.Lemma(tok)
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		terms = append(terms, l)
	}
	return n.expand(terms, seen)
}

// expand appends synonyms in a single pass over the lemmatized terms.
func (n *Normalizer) expand(terms Terms, seen map[string]struct{}) Terms {
	out := append(Terms(nil), terms...)
	add := func(w string) bool {
		if _, dup := seen[w]; dup {
			return false
		}
		seen[w] = struct{}{}
		out = append(out, w)
		return true
	}

	for _, w := range terms {
		if i, ok := n.byKey[w]; ok {
			for _, s := range synonyms[i].values {
				if utf8.RuneCountInString(s) >= MinTermRunes {
					add(s)
				}
			}
			continue
		}
		for _, i := range n.byValue[w] {
			if add(synonyms[i].key) {
				break
			}
		}
	}
	return out
}
