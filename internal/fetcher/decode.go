package fetcher

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode converts a body served in the legacy Windows-1251 code page to UTF-8.
// Bytes that have no mapping in the code page make the whole body fall back to
// permissive UTF-8, where invalid sequences become U+FFFD.
func Decode(body []byte) string {
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(body)
	if err == nil && !strings.ContainsRune(string(decoded), utf8.RuneError) {
		return string(decoded)
	}
	return DecodeUTF8(body)
}

// DecodeUTF8 interprets body as UTF-8, replacing invalid sequences.
func DecodeUTF8(body []byte) string {
	return strings.ToValidUTF8(string(body), string(utf8.RuneError))
}
