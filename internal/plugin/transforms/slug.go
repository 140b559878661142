package transforms

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugTransformer strips diacritics so "café" slugifies to "cafe".
var slugTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe slug from arbitrary text: diacritics removed,
// lowercased, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(s string) string {
	if folded, _, err := transform.String(slugTransformer, s); err == nil {
		s = folded
	}

	var b strings.Builder
	prevHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SlugifyPath slugifies each segment of a slash-separated path, preserving
// the separators.
func SlugifyPath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = Slugify(seg)
	}
	return strings.Join(segments, "/")
}
