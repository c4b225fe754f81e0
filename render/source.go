package render

import (
	"context"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/model"
)

// TextSource supplies the logical text and glyph geometry of a page in PDF
// points. The raster of the same page is passed for sources that work from
// pixels rather than the text stream.
type TextSource interface {
	PageText(ctx context.Context, page engine.Page, raster *model.PageRaster) (model.PageText, error)
}

// TextSourceFunc adapts a function to TextSource.
type TextSourceFunc func(ctx context.Context, page engine.Page, raster *model.PageRaster) (model.PageText, error)

func (f TextSourceFunc) PageText(ctx context.Context, page engine.Page, raster *model.PageRaster) (model.PageText, error) {
	return f(ctx, page, raster)
}

// EngineText reads the page's own text stream.
var EngineText TextSource = TextSourceFunc(func(ctx context.Context, page engine.Page, _ *model.PageRaster) (model.PageText, error) {
	return page.Text(ctx)
})
