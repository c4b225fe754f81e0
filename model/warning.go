package model

import (
	"fmt"
	"strings"
)

// WarningKind classifies a non-fatal issue.
type WarningKind int

const (
	// WarnUnmatchedChar means a character of the logical text had no glyph
	// left to match and was skipped.
	WarnUnmatchedChar WarningKind = iota
	// WarnTextExtraction means the page's text stream could not be read
	// and the page has no text layer.
	WarnTextExtraction
	// WarnBidiWord means a right-to-left word was matched with the forward
	// cursor, which assumes glyphs arrive in logical order.
	WarnBidiWord
	// WarnInvalidOption means an option was out of range and its default
	// was used instead.
	WarnInvalidOption
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnmatchedChar:
		return "unmatched-char"
	case WarnTextExtraction:
		return "text-extraction"
	case WarnBidiWord:
		return "bidi-word"
	case WarnInvalidOption:
		return "invalid-option"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue found while building a page. Page is
// 0-indexed, or -1 when the warning is not tied to a page.
type Warning struct {
	Page    int
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	if w.Page < 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("page %d: %s: %s", w.Page+1, w.Kind, w.Message)
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
