package text

import (
	"fmt"
	"strings"

	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
)

// Builder reconstructs word fragments from a page's logical text and its
// glyph records. A Builder holds no state between calls and is safe for
// concurrent use.
type Builder struct{}

// NewBuilder creates a new fragment builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build folds the glyphs of pt into fragments, one or more per word of the
// logical text, in reading order. Bounds and font sizes are multiplied by
// scale. A nil cfg disables the text layer and yields no fragments.
//
// Words come from the logical text rather than from glyph adjacency. Each
// character of a word is matched against the first unconsumed glyph with
// the same rune, scanning forward from a cursor shared by the whole page.
// Characters without a match are skipped and reported as warnings; the
// rest of the word is still built. Warnings carry Page -1 and are stamped
// with a page index by the caller.
func (b *Builder) Build(pt model.PageText, cfg *model.TextLayerConfig, scale float64) ([]model.Fragment, []model.Warning) {
	if cfg == nil {
		return nil, nil
	}
	if scale <= 0 {
		scale = 1
	}

	var (
		fragments []model.Fragment
		warnings  []model.Warning
		cursor    = glyphCursor{glyphs: pt.Glyphs}
	)

	for _, word := range SplitWords(pt.Text) {
		if DetectDirection(word) == RTL {
			warnings = append(warnings, model.Warning{
				Page:    -1,
				Kind:    model.WarnBidiWord,
				Message: fmt.Sprintf("right-to-left word %q matched in logical order", word),
			})
		}

		var (
			current model.Fragment
			text    strings.Builder
			open    bool
		)
		flush := func() {
			if open {
				current.Text = text.String()
				fragments = append(fragments, current)
			}
		}

		for _, r := range word {
			g, ok := cursor.next(r)
			if !ok {
				logging.Logger().Debug("no glyph for character", "char", string(r), "word", word)
				warnings = append(warnings, model.Warning{
					Page:    -1,
					Kind:    model.WarnUnmatchedChar,
					Message: fmt.Sprintf("no glyph for %q in word %q", r, word),
				})
				continue
			}

			bounds, size := contribution(g, cfg, scale)
			if open && joins(current, g.FontFamily, size, cfg) {
				current.Bounds = current.Bounds.Union(bounds)
				text.WriteRune(r)
				continue
			}

			flush()
			current = model.Fragment{
				FontFamily: g.FontFamily,
				FontSize:   size,
				Bounds:     bounds,
				Scale:      scale,
			}
			text.Reset()
			text.WriteRune(r)
			open = true
		}
		flush()
	}

	return fragments, warnings
}

// contribution returns the glyph's box and font size at the given scale,
// honouring the precision switches of cfg.
func contribution(g model.Glyph, cfg *model.TextLayerConfig, scale float64) (model.Rect, float64) {
	bounds := g.LooseBounds
	if cfg.UsePreciseCharBounds {
		bounds = g.Bounds
	}
	size := g.FontSize
	if cfg.UsePreciseFontSize {
		size = g.ScaledFontSize
	}
	return bounds.Scale(scale), size * scale
}

// joins reports whether a glyph with the given family and size may extend
// the current fragment.
func joins(current model.Fragment, family string, size float64, cfg *model.TextLayerConfig) bool {
	if cfg.RequireSameFont && family != current.FontFamily {
		return false
	}
	return cfg.FontSizeMatch.Matches(current.FontSize, size)
}

// glyphCursor walks the glyph records of one page forward only.
type glyphCursor struct {
	glyphs []model.Glyph
	pos    int
}

// next returns the first glyph at or after the cursor whose rune is r and
// moves the cursor past it. The cursor does not move when nothing matches.
func (c *glyphCursor) next(r rune) (model.Glyph, bool) {
	for i := c.pos; i < len(c.glyphs); i++ {
		if c.glyphs[i].Char == r {
			c.pos = i + 1
			return c.glyphs[i], true
		}
	}
	return model.Glyph{}, false
}
