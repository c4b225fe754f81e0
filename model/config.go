package model

import (
	"fmt"
	"math"
)

// FontSizeMatchMode selects how two font sizes are compared when deciding
// whether adjacent characters belong to the same fragment.
type FontSizeMatchMode int

const (
	// MatchStrict requires equal sizes after rounding to whole points.
	MatchStrict FontSizeMatchMode = iota
	// MatchTolerant allows an absolute difference up to MaxDelta.
	MatchTolerant
	// MatchAny always matches.
	MatchAny
)

// String returns the mode name used in configuration files.
func (m FontSizeMatchMode) String() string {
	switch m {
	case MatchStrict:
		return "strict"
	case MatchTolerant:
		return "tolerant"
	case MatchAny:
		return "any"
	default:
		return "unknown"
	}
}

// ParseFontSizeMatchMode parses "strict", "tolerant" or "any".
func ParseFontSizeMatchMode(s string) (FontSizeMatchMode, error) {
	switch s {
	case "strict":
		return MatchStrict, nil
	case "tolerant":
		return MatchTolerant, nil
	case "any":
		return MatchAny, nil
	}
	return 0, fmt.Errorf("unknown font size match mode %q", s)
}

// FontSizeMatch is the font size grouping policy.
type FontSizeMatch struct {
	Mode     FontSizeMatchMode
	MaxDelta float64 // used by MatchTolerant only
}

// Strict returns a policy requiring rounded-integer equality.
func Strict() FontSizeMatch { return FontSizeMatch{Mode: MatchStrict} }

// Tolerant returns a policy allowing sizes within maxDelta of each other.
func Tolerant(maxDelta float64) FontSizeMatch {
	return FontSizeMatch{Mode: MatchTolerant, MaxDelta: maxDelta}
}

// AnySize returns a policy that never splits on font size.
func AnySize() FontSizeMatch { return FontSizeMatch{Mode: MatchAny} }

// Matches reports whether size b may join a fragment whose size is a.
func (p FontSizeMatch) Matches(a, b float64) bool {
	switch p.Mode {
	case MatchStrict:
		return math.Round(a) == math.Round(b)
	case MatchTolerant:
		return math.Abs(a-b) <= p.MaxDelta
	default:
		return true
	}
}

// TextLayerConfig controls how glyphs are grouped into fragments. A nil
// *TextLayerConfig means no text layer is produced.
type TextLayerConfig struct {
	// UsePreciseCharBounds selects the tight glyph box instead of the loose
	// ascent/descent box.
	UsePreciseCharBounds bool
	// UsePreciseFontSize selects the font size with the text matrix applied.
	UsePreciseFontSize bool
	// RequireSameFont splits fragments when the font family changes.
	RequireSameFont bool
	FontSizeMatch   FontSizeMatch
}

// DefaultTextLayerConfig returns loose glyph boxes, matrix-scaled font
// sizes, same-font grouping and a one point size tolerance.
func DefaultTextLayerConfig() TextLayerConfig {
	return TextLayerConfig{
		UsePreciseCharBounds: false,
		UsePreciseFontSize:   true,
		RequireSameFont:      true,
		FontSizeMatch:        Tolerant(1),
	}
}

// ViewerLayout is presentation configuration read at render time.
type ViewerLayout struct {
	Padding    float64 // pixels on each side of a page
	Gap        float64 // pixels between pages
	Background string  // CSS color behind pages
	Scale      float64 // zoom factor, 1 = 72 DPI
	FitWidth   bool    // derive the scale from the container width
}

// DefaultViewerLayout returns a 1:1 layout with a 20px page gap.
func DefaultViewerLayout() ViewerLayout {
	return ViewerLayout{
		Padding:    0,
		Gap:        20,
		Background: "#ffffff",
		Scale:      1,
		FitWidth:   false,
	}
}
