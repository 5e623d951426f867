// Package slug builds and validates URL-safe page identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug accepted
const MaxLength = 255

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Make turns a title into a slug: accents stripped, lowercased,
// whitespace and underscores become hyphens, everything else non-alphanumeric dropped.
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	out = strings.ToLower(out)
	out = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return '-'
		}
		return r
	}, out)
	out = invalidChars.ReplaceAllString(out, "")
	out = repeatedHyphens.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")

	if len(out) > MaxLength {
		out = strings.TrimRight(out[:MaxLength], "-")
	}
	return out
}

// Valid reports whether s is already a well-formed slug
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

// reserved slugs collide with static routes under /pages
var reserved = map[string]struct{}{
	"order":       {},
	"rejections":  {},
	"unpublished": {},
}

// Reserved reports whether s cannot be used as a page slug
func Reserved(s string) bool {
	_, ok := reserved[s]
	return ok
}
