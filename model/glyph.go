package model

// Glyph is one rendered character on a page as reported by the engine.
//
// Engines report two boxes per character: Bounds is the tight box around
// the drawn outline, LooseBounds is the box derived from font ascent and
// descent. Likewise FontSize is the size set in the content stream while
// ScaledFontSize has the text matrix applied. Engines that only know one
// value fill both fields with it.
type Glyph struct {
	Char           rune
	Bounds         Rect
	LooseBounds    Rect
	FontFamily     string
	FontSize       float64
	ScaledFontSize float64
}

// PageText is the output of a glyph geometry source for a single page: the
// logical text stream plus every glyph in engine order.
type PageText struct {
	Text   string
	Glyphs []Glyph
}

// IsEmpty reports whether the page carries neither text nor glyphs.
func (p PageText) IsEmpty() bool {
	return p.Text == "" && len(p.Glyphs) == 0
}
