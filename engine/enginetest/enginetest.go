// Package enginetest provides a scripted in-memory engine for tests.
package enginetest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/model"
)

// PageSpec scripts one page of a fake document.
type PageSpec struct {
	Width, Height float64 // points; zero means US Letter
	Text          model.PageText
	RenderErr     error
	TextErr       error
	Fill          color.RGBA
}

// Engine is a fake engine returning the same scripted document for every
// Open call.
type Engine struct {
	Pages    []PageSpec
	Password string // required password, empty for none
	OpenErr  error  // returned wrapped in *model.LoadingError
	// OpenHook runs at the start of Open. Tests use it to block or fail.
	OpenHook func(ctx context.Context, data []byte) error
	// RenderHook runs when a page render starts, after its index is recorded.
	RenderHook func(index int)

	mu      sync.Mutex
	opens   int
	renders []int
	closed  int
}

var _ engine.Engine = (*Engine)(nil)

// Open implements engine.Engine.
func (e *Engine) Open(ctx context.Context, data []byte, password string) (engine.Document, error) {
	if e.OpenHook != nil {
		if err := e.OpenHook(ctx, data); err != nil {
			return nil, err
		}
	}
	if e.OpenErr != nil {
		return nil, &model.LoadingError{Err: e.OpenErr}
	}
	if e.Password != "" && password != e.Password {
		return nil, &model.LoadingError{Err: model.ErrPassword}
	}

	e.mu.Lock()
	e.opens++
	e.mu.Unlock()
	return &Document{engine: e}, nil
}

// Opens returns how many documents were opened successfully.
func (e *Engine) Opens() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opens
}

// Renders returns the page indices rendered so far, in call order.
func (e *Engine) Renders() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.renders...)
}

// Closed returns how many documents were closed.
func (e *Engine) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Document is an open fake document.
type Document struct {
	engine *Engine
	closed bool
}

func (d *Document) PageCount() int { return len(d.engine.Pages) }

func (d *Document) Page(i int) (engine.Page, error) {
	if d.closed {
		return nil, errors.New("document closed")
	}
	if i < 0 || i >= len(d.engine.Pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", i, len(d.engine.Pages))
	}
	return &Page{index: i, spec: d.engine.Pages[i], engine: d.engine}, nil
}

func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.engine.mu.Lock()
	d.engine.closed++
	d.engine.mu.Unlock()
	return nil
}

// Page is a page of a fake document.
type Page struct {
	index  int
	spec   PageSpec
	engine *Engine
}

func (p *Page) Index() int { return p.index }

func (p *Page) Size() (float64, float64) {
	if p.spec.Width == 0 || p.spec.Height == 0 {
		return 612, 792
	}
	return p.spec.Width, p.spec.Height
}

func (p *Page) Text(ctx context.Context) (model.PageText, error) {
	if err := ctx.Err(); err != nil {
		return model.PageText{}, err
	}
	if p.spec.TextErr != nil {
		return model.PageText{}, p.spec.TextErr
	}
	return p.spec.Text, nil
}

func (p *Page) Render(ctx context.Context, width, height int) (*model.PageRaster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.engine.mu.Lock()
	p.engine.renders = append(p.engine.renders, p.index)
	p.engine.mu.Unlock()
	if p.engine.RenderHook != nil {
		p.engine.RenderHook(p.index)
	}

	if p.spec.RenderErr != nil {
		return nil, p.spec.RenderErr
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := p.spec.Fill
	if fill == (color.RGBA{}) {
		fill = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	w, _ := p.Size()
	return model.NewPageRaster(img, float64(width)/w), nil
}

// LayoutText returns page text whose glyphs are laid out on lines starting
// at the top-left margin, advancing 0.6*size per character. Line breaks in
// text start a new line and also appear as glyphs, as real engines report
// them.
func LayoutText(text string, family string, size float64) model.PageText {
	const margin = 72.0
	var (
		glyphs []model.Glyph
		x      = margin
		top    = 792 - margin
	)
	advance := size * 0.6
	for _, r := range text {
		g := model.Glyph{
			Char:           r,
			Bounds:         model.NewRect(x, top-size*0.8, x+advance, top),
			LooseBounds:    model.NewRect(x, top-size, x+advance, top+size*0.2),
			FontFamily:     family,
			FontSize:       size,
			ScaledFontSize: size,
		}
		glyphs = append(glyphs, g)
		if r == '\n' {
			x = margin
			top -= size * 1.2
			continue
		}
		x += advance
	}
	return model.PageText{Text: text, Glyphs: glyphs}
}
