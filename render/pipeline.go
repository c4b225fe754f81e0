// Package render turns one engine page into a raster plus a text layer
// aligned to it.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/projection"
	"github.com/tsawler/pdflayer/text"
)

// Request describes how one page is rendered.
type Request struct {
	Layout         model.ViewerLayout
	ContainerWidth float64 // pixels; only read when Layout.FitWidth is set
	// TextLayer configures fragment grouping. Nil renders the raster only.
	TextLayer *model.TextLayerConfig
	// CaptureText keeps the page's plain text even when TextLayer is nil.
	CaptureText bool
}

// PageResult is a rendered page.
type PageResult struct {
	Index     int
	Width     float64 // page size in points
	Height    float64
	Scale     float64 // effective scale shared by Raster and Fragments
	Raster    *model.PageRaster
	Fragments []model.Fragment
	Projected []model.ProjectedFragment
	Text      string
	Warnings  []model.Warning
}

// Pipeline renders pages. The zero value reads the engine's text stream and
// uses a fresh fragment builder.
type Pipeline struct {
	Builder *text.Builder
	// Text is the primary text source, EngineText when nil.
	Text TextSource
	// Fallback is consulted when the primary source fails or the page has
	// no text, typically OCR for scanned pages.
	Fallback TextSource
}

// NewPipeline returns a pipeline reading the engine's text stream.
func NewPipeline() *Pipeline {
	return &Pipeline{Builder: text.NewBuilder(), Text: EngineText}
}

// RenderPage rasterizes page and builds its text layer at one effective
// scale.
//
// A raster failure is page-fatal and returned as *model.RenderError. A text
// failure is not: the page is returned without a text layer and the failure
// is recorded as a warning. model.ErrNotMeasurable is returned unwrapped
// when a fit-width layout has no container width yet.
func (p *Pipeline) RenderPage(ctx context.Context, page engine.Page, req Request) (*PageResult, error) {
	idx := page.Index()
	w, h := page.Size()

	result := &PageResult{Index: idx, Width: w, Height: h}
	if req.Layout.Scale <= 0 {
		result.Warnings = append(result.Warnings, model.Warning{
			Page:    idx,
			Kind:    model.WarnInvalidOption,
			Message: fmt.Sprintf("scale %v is not positive, using 1", req.Layout.Scale),
		})
	}

	scale, err := EffectiveScale(req.Layout, w, req.ContainerWidth)
	if err != nil {
		if errors.Is(err, model.ErrNotMeasurable) {
			return nil, err
		}
		return nil, &model.RenderError{Page: idx, Err: err}
	}
	result.Scale = scale

	pw, ph := RasterSize(w, h, scale)
	if pw <= 0 || ph <= 0 {
		return nil, &model.RenderError{Page: idx, Err: fmt.Errorf("raster size %dx%d at scale %v", pw, ph, scale)}
	}

	raster, err := page.Render(ctx, pw, ph)
	if err != nil {
		logging.Logger().Warn("page render failed", "page", idx+1, "error", err)
		return nil, &model.RenderError{Page: idx, Err: err}
	}
	raster.Scale = scale
	result.Raster = raster

	if req.TextLayer == nil && !req.CaptureText {
		return result, nil
	}

	pt, err := p.pageText(ctx, page, raster)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		textErr := &model.TextExtractionError{Page: idx, Err: err}
		logging.Logger().Warn("text extraction failed, page has no text layer", "page", idx+1, "error", err)
		result.Warnings = append(result.Warnings, model.Warning{
			Page:    idx,
			Kind:    model.WarnTextExtraction,
			Message: textErr.Error(),
		})
		return result, nil
	}
	result.Text = pt.Text

	if req.TextLayer != nil {
		b := p.Builder
		if b == nil {
			b = text.NewBuilder()
		}
		frags, warnings := b.Build(pt, req.TextLayer, scale)
		for _, wn := range warnings {
			wn.Page = idx
			result.Warnings = append(result.Warnings, wn)
		}
		result.Fragments = frags
		result.Projected = projection.ProjectAll(frags, scale, raster.Height)
	}

	return result, nil
}

// pageText reads the primary source and falls back when it fails or finds
// nothing. The primary error wins when both fail.
func (p *Pipeline) pageText(ctx context.Context, page engine.Page, raster *model.PageRaster) (model.PageText, error) {
	primary := p.Text
	if primary == nil {
		primary = EngineText
	}
	pt, err := primary.PageText(ctx, page, raster)
	if p.Fallback == nil || (err == nil && !pt.IsEmpty()) {
		return pt, err
	}

	fb, fbErr := p.Fallback.PageText(ctx, page, raster)
	if fbErr != nil {
		logging.Logger().Debug("fallback text source failed", "page", page.Index()+1, "error", fbErr)
		return pt, err
	}
	logging.Logger().Debug("using fallback text source", "page", page.Index()+1, "glyphs", len(fb.Glyphs))
	return fb, nil
}
