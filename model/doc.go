// Package model defines the data shared by every stage of the render and
// text layer pipeline.
//
// # Geometry
//
// [Rect] is a rectangle in PDF point space (origin bottom-left, Y up). The
// fragment builder grows fragment bounds with [Rect.Union]; the projector
// turns them into top-left pixel placements ([ProjectedFragment]).
//
// # Glyphs and fragments
//
// A glyph geometry source reports a [PageText]: the page's logical text and
// its [Glyph] records. The text package folds glyphs into [Fragment]
// values according to a [TextLayerConfig] and its [FontSizeMatch] policy.
//
// # Rasters
//
// [PageRaster] is an RGBA buffer produced at one effective scale. The same
// scale must be used to project that page's fragments.
//
// # Errors
//
// The error taxonomy separates document-fatal failures ([FetchError],
// [LoadingError]) from page-scoped ones ([RenderError],
// [TextExtractionError]). Lower-severity issues are reported as [Warning].
package model
