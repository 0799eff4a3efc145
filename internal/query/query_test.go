package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/okolica/internal/lemma"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"новости", "татарска", "2024"}, Tokenize("Новости и Татарска, 2024!"))
	assert.Equal(t, []string{"rock", "фест"}, Tokenize("rock-фест в"))
	assert.Empty(t, Tokenize("я и в на"))
	assert.Empty(t, Tokenize("  !!! ?? "))
}

func TestNormalize_EmptyWhenOnlyStopWords(t *testing.T) {
	n := NewNormalizer(lemma.Lowercase{})
	assert.Empty(t, n.Normalize("и в на с"))
	assert.Empty(t, n.Normalize(""))
	assert.Empty(t, n.Normalize("a б"))
}

func TestNormalize_SynonymExpansionKeepsQueryTermFirst(t *testing.T) {
	n := NewNormalizer(lemma.Lowercase{})
	assert.Equal(t, Terms{"стихи", "поэзия", "стих"}, n.Normalize("стихи"))
}

func TestNormalize_SynonymExpansionWithStemmer(t *testing.T) {
	n := NewNormalizer(lemma.Stemmer{})
	// "стихи" stems to "стих", which has its own entry listing "стихи".
	assert.Equal(t, Terms{"стих", "поэзия", "стихи"}, n.Normalize("стихи"))
	assert.Equal(t, Terms{"стих", "поэзия", "стихи"}, n.Normalize("стих"))
}

func TestNormalize_ReverseSynonymAddsKeyOnce(t *testing.T) {
	n := NewNormalizer(lemma.Lowercase{})
	// "фронт" is only a value of "война".
	assert.Equal(t, Terms{"фронт", "война"}, n.Normalize("фронт"))
	// "история" is a value of "рассказ"; expansion does not recurse into "рассказ".
	assert.Equal(t, Terms{"история", "рассказ"}, n.Normalize("история"))
}

func TestNormalize_DeduplicatesByLemma(t *testing.T) {
	n := NewNormalizer(lemma.Stemmer{})
	terms := n.Normalize("школа школы школе")
	assert.Equal(t, lemma.Stemmer{}.Lemma("школа"), terms[0])
	assert.Contains(t, terms, "школьник")
	assert.Contains(t, terms, "школьный")
	assert.Len(t, terms, 3)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := NewNormalizer(lemma.Lowercase{})
	first := n.Normalize("праздник школа дети")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, n.Normalize("праздник школа дети"))
	}
	assert.Equal(t, Terms{"праздник", "школа", "дети", "праздничный", "празднование", "школьник", "школьный", "ребенок", "ребята"}, first)
}
