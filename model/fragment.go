package model

// Fragment is a reconstructed word, or a run of a word that shares one font.
//
// Bounds is the union of every glyph box folded into the fragment and Text
// is the concatenation of those glyphs in the order they were consumed.
// Scale is the factor Bounds and FontSize were multiplied by when the
// fragment was built; 1 means plain PDF points.
type Fragment struct {
	Text       string
	FontFamily string
	FontSize   float64
	Bounds     Rect
	Scale      float64
}

// ProjectedFragment is a fragment placed in raster pixel space, where the
// origin is the top-left corner and Y grows downward. A presentation layer
// places a span at (Left, Top) with FontSize and FontFamily and performs no
// geometry of its own.
type ProjectedFragment struct {
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}
