package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Formatter rewrites a display name into canonical form.
type Formatter func(name string) string

var whitespaceRe = regexp.MustCompile(`\s+`)

// minorWords stay lower-case unless they start the name.
//
//nolint:gochecknoglobals // Static lookup table
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "in": true, "nor": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "vs": true, "via": true, "with": true,
}

// CollapseSpaces trims the name and squeezes internal whitespace runs to one space.
func CollapseSpaces(name string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
}

// TitleCase formats a name in English title case.
//
// Rules:
//  1. Trim and collapse whitespace
//  2. Words with an upper-case letter after the first rune are kept as-is ("DNA", "mRNA", "HbA1c")
//  3. Minor words ("of", "the", ...) are lower-cased unless first
//  4. Everything else is title-cased
//
// Examples:
//
//	"adrenal   glands"       → "Adrenal Glands"
//	"diseases OF the heart"  → "Diseases of the Heart"
//	"mRNA vaccines"          → "mRNA Vaccines"
func TitleCase(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}

	// Casers are stateful; build them per call.
	title := cases.Title(language.English)
	lower := cases.Lower(language.English)

	for i, w := range words {
		switch {
		case hasInnerUpper(w):
			// keep
		case i > 0 && minorWords[lower.String(w)]:
			words[i] = lower.String(w)
		default:
			words[i] = title.String(w)
		}
	}

	return strings.Join(words, " ")
}

// hasInnerUpper reports whether any rune after the first is upper-case.
func hasInnerUpper(w string) bool {
	_, size := utf8.DecodeRuneInString(w)
	for _, r := range w[size:] {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// LookupFormatter returns a formatter by name: "title" or "collapse".
func LookupFormatter(name string) (Formatter, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "title", "titlecase":
		return TitleCase, true
	case "collapse", "spaces":
		return CollapseSpaces, true
	default:
		return nil, false
	}
}
