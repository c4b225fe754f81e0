package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/render"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// FontFamily is reported for every recognized glyph.
const FontFamily = "OCR"

// Symbol is one recognized character with its box in image pixels.
type Symbol struct {
	Char       rune
	Box        image.Rectangle
	Confidence float64
}

// Result is the output of one recognition pass. Lines holds the text line
// boxes; every symbol of a line takes the line height as its font size.
type Result struct {
	Text    string
	Symbols []Symbol
	Lines   []image.Rectangle
}

// Recognizer runs OCR on an encoded image. *Client implements it.
type Recognizer interface {
	Recognize(imageData []byte) (*Result, error)
	Close() error
}

// Source is a render.TextSource that recognizes text from the page raster.
// Rasters below MinDPI are upscaled first; glyph boxes are mapped back to
// PDF points so they flow through the builder like engine glyphs.
type Source struct {
	Language string
	// MinDPI is the resolution recognition runs at, 300 when zero.
	MinDPI float64
	// MinConfidence drops symbols Tesseract is less sure of (0-100).
	MinConfidence float64

	// NewRecognizer creates a recognizer, New when nil.
	NewRecognizer func() (Recognizer, error)

	mu sync.Mutex
}

var _ render.TextSource = (*Source)(nil)

// PageText implements render.TextSource.
func (s *Source) PageText(ctx context.Context, page engine.Page, raster *model.PageRaster) (model.PageText, error) {
	if raster == nil {
		return model.PageText{}, errors.New("no raster to recognize")
	}
	if err := ctx.Err(); err != nil {
		return model.PageText{}, err
	}

	scale := raster.Scale
	if scale <= 0 {
		scale = 1
	}
	img, up := upscale(raster.Image(), scale, s.minDPI())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return model.PageText{}, err
	}

	// Tesseract clients are not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recognizer()
	if err != nil {
		return model.PageText{}, err
	}
	defer rec.Close()

	res, err := rec.Recognize(buf.Bytes())
	if err != nil {
		return model.PageText{}, err
	}

	_, pageHeight := page.Size()
	pt := toPageText(res, scale*up, pageHeight, s.MinConfidence)
	logging.Logger().Debug("OCR recognized page", "page", page.Index()+1, "glyphs", len(pt.Glyphs), "upscale", up)
	return pt, nil
}

func (s *Source) minDPI() float64 {
	if s.MinDPI <= 0 {
		return 300
	}
	return s.MinDPI
}

func (s *Source) recognizer() (Recognizer, error) {
	if s.NewRecognizer != nil {
		return s.NewRecognizer()
	}
	c, err := New()
	if err != nil {
		return nil, err
	}
	if s.Language != "" {
		if err := c.SetLanguage(s.Language); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// upscale enlarges img so it reaches minDPI, given that it was rendered at
// scale (72 DPI per unit). It returns the image and the extra factor.
func upscale(img *image.RGBA, scale, minDPI float64) (image.Image, float64) {
	dpi := 72 * scale
	if dpi >= minDPI {
		return img, 1
	}
	factor := minDPI / dpi
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, factor
}

// toPageText converts pixel boxes at pxPerPt pixels per point into glyphs
// in PDF space, where Y grows upward from the page bottom.
func toPageText(res *Result, pxPerPt, pageHeight, minConfidence float64) model.PageText {
	glyphs := make([]model.Glyph, 0, len(res.Symbols))
	for _, sym := range res.Symbols {
		if sym.Confidence < minConfidence {
			continue
		}
		r := model.NewRect(
			float64(sym.Box.Min.X)/pxPerPt,
			pageHeight-float64(sym.Box.Max.Y)/pxPerPt,
			float64(sym.Box.Max.X)/pxPerPt,
			pageHeight-float64(sym.Box.Min.Y)/pxPerPt,
		)
		size := float64(lineHeight(res.Lines, sym.Box)) / pxPerPt
		glyphs = append(glyphs, model.Glyph{
			Char:           sym.Char,
			Bounds:         r,
			LooseBounds:    r,
			FontFamily:     FontFamily,
			FontSize:       size,
			ScaledFontSize: size,
		})
	}
	return model.PageText{Text: strings.TrimSpace(res.Text), Glyphs: glyphs}
}

// lineHeight returns the height of the line holding box, or the box's own
// height when no line contains its center. Letter boxes vary with x-height
// and ascenders, so they cannot stand in for the font size.
func lineHeight(lines []image.Rectangle, box image.Rectangle) int {
	center := image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
	for _, l := range lines {
		if center.In(l) {
			return l.Dy()
		}
	}
	return box.Dy()
}
