// Package normalize canonicalizes free text into comparable keys.
//
// Every comparison in the pipeline (actor alias matching, source-name
// comparison, geo deduplication, publisher-label comparison, grouping keys)
// goes through Key so that casing, markup and punctuation differences
// between sources never produce distinct keys for the same content.
package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	schemeRe = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://`)
	wwwRe    = regexp.MustCompile(`^www\.`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Key produces the canonical comparison key for free text: lowercase, with
// any protocol and "www." prefix stripped, all non-letter/non-digit runs
// collapsed to single spaces, trimmed.
//
// Key is idempotent: Key(Key(x)) == Key(x). Unicode letters count as
// letters, so diacritics survive and cross-locale actor names normalize
// consistently.
func Key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = schemeRe.ReplaceAllString(s, "")
	s = wwwRe.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		} else {
			space = true
		}
	}
	return b.String()
}

// CleanText strips markup and collapses whitespace for display and for
// grouping-key computation, so markup differences between sources do not
// create spurious groups. It does not lowercase or remove punctuation;
// that is Key's job.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Equal reports whether two strings normalize to the same key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
