package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// minTokenRunes drops one-rune fragments that would match almost everything.
const minTokenRunes = 2

// Fold maps s to its Unicode caseless form. All index and query text goes
// through Fold so matching is case-insensitive beyond ASCII.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Tokenize splits a display name or keyword into searchable tokens.
// Tokens are case-folded; anything that is not a letter or digit separates
// tokens; tokens shorter than 2 runes are dropped.
func Tokenize(s string) []string {
	folded := Fold(s)

	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	result := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utf8.RuneCountInString(t) >= minTokenRunes {
			result = append(result, t)
		}
	}

	return result
}
