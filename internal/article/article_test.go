package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalURL(t *testing.T) {
	cases := map[string]string{
		"http://okolica.net/news/rayon/123.html":   "https://okolica.net/news/rayon/123.html",
		"https://okolica.net/news/rayon/123.html/": "https://okolica.net/news/rayon/123.html",
		"https://okolica.net/gazeta/":              "https://okolica.net/gazeta",
		"  http://okolica.net/  ":                  "https://okolica.net",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalURL(in), in)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "При", Truncate("Привет", 3))
	assert.Equal(t, "Привет", Truncate("Привет", 10))
	assert.Equal(t, "", Truncate("Привет", 0))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "https://okolica.net/news/a/1.html", Resolve("https://okolica.net", "/news/a/1.html"))
	assert.Equal(t, "https://okolica.net/news/a/1.html", Resolve("https://okolica.net/", "news/a/1.html"))
	assert.Equal(t, "http://other.ru/x.html", Resolve("https://okolica.net", "http://other.ru/x.html"))
}

func TestResultsStripFulltext(t *testing.T) {
	out := Results([]Record{{Title: "t", URL: "u", Summary: "s", Fulltext: "secret"}})
	assert.Equal(t, []Result{{Title: "t", URL: "u", Summary: "s"}}, out)
}
