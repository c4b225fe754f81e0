// Package text reconstructs selectable text fragments from glyph geometry.
//
// # Fragment Reconstruction
//
// Engines report a page as a logical text string plus a flat list of glyph
// records with boxes and font data. The [Builder] uses the logical text as
// the source of word boundaries and matches each character to a glyph:
//
//	b := text.NewBuilder()
//	cfg := model.DefaultTextLayerConfig()
//	fragments, warnings := b.Build(pageText, &cfg, 1.5)
//
// Characters of one word are folded into a single fragment while the font
// family and size stay compatible under the configured policy; a font
// change inside a word yields several adjacent fragments.
//
// # Limitations
//
// Matching uses one forward cursor per page. Glyphs that the engine reports
// out of logical order, such as right-to-left runs, may be matched to a
// later occurrence of the same character. Such words are reported with a
// [model.WarnBidiWord] warning; [DetectDirection] classifies them.
package text
