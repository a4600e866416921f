// Package textutil splits typed translation prefixes into words.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var tokenizeRe = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s]`)

// Tokenize returns the word runs and single punctuation marks of text after
// NFC normalization, so composed and decomposed accents compare equal.
func Tokenize(text string) []string {
	return tokenizeRe.FindAllString(norm.NFC.String(text), -1)
}

// SplitPrefix tokenizes a typed prefix and reports whether its last word is
// complete: the text ends in whitespace or punctuation. A prefix without
// words counts as complete.
func SplitPrefix(text string) ([]string, bool) {
	words := Tokenize(text)
	if len(words) == 0 {
		return words, true
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	return words, !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

// Detokenize joins words with single spaces.
func Detokenize(words []string) string {
	return strings.Join(words, " ")
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and multiple whitespace with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}
