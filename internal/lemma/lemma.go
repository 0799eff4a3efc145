// Package lemma provides the word normalization capability used for matching
// across inflections.
package lemma

import (
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/russian"

	"github.com/deusflow/okolica/internal/cache"
)

// Lemmatizer maps a word to the base form used for comparison.
type Lemmatizer interface {
	Lemma(word string) string
}

// Lowercase is the fallback when no morphological normalizer is configured.
type Lowercase struct{}

func (Lowercase) Lemma(word string) string {
	return strings.ToLower(word)
}

// Stemmer reduces Cyrillic words with the Russian Snowball stemmer.
// Words without Cyrillic letters are only lowercased.
type Stemmer struct{}

func (Stemmer) Lemma(word string) string {
	w := strings.ToLower(word)
	if !hasCyrillic(w) {
		return w
	}
	env := snowballstem.NewEnv(w)
	russian.Stem(env)
	if stem := env.Current(); stem != "" {
		return stem
	}
	return w
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// New picks the implementation by name: "stem" (default) or "none".
func New(kind string) Lemmatizer {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "none", "off", "lowercase":
		return Lowercase{}
	default:
		return Stemmer{}
	}
}

// Cached memoizes another Lemmatizer in a bounded cache shared by the query
// normalizer and the matcher. Keys are lowercased words.
type Cached struct {
	inner Lemmatizer
	cache *cache.Bounded
}

func NewCached(inner Lemmatizer, c *cache.Bounded) *Cached {
	if inner == nil {
		inner = Lowercase{}
	}
	if c == nil {
		c = cache.New(cache.DefaultCapacity)
	}
	return &Cached{inner: inner, cache: c}
}

func (c *Cached) Lemma(word string) string {
	return c.cache.GetOrCompute(strings.ToLower(word), c.inner.Lemma)
}
