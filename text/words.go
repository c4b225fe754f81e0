package text

import (
	"strings"
	"unicode"
)

// SplitWords splits logical page text into lines and each line into
// whitespace-separated words. Empty words are dropped.
func SplitWords(s string) []string {
	var words []string
	for _, line := range SplitLines(s) {
		words = append(words, strings.FieldsFunc(line, unicode.IsSpace)...)
	}
	return words
}

// SplitLines splits s on line breaks, dropping empty lines.
func SplitLines(s string) []string {
	return strings.FieldsFunc(s, isLineBreak)
}

// isLineBreak reports whether r ends a line: LF, CR, and the Unicode line
// and paragraph separators.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return false
}
