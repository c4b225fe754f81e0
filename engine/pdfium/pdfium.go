// Package pdfium adapts go-pdfium to the engine interfaces.
//
// The WebAssembly build of PDFium is used, so no native library or cgo is
// required. Each open document holds one PDFium instance from a shared
// pool; calls on a document are serialized because an instance is single
// threaded.
package pdfium

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gopdfium "github.com/klippa-app/go-pdfium"
	pdfiumerrors "github.com/klippa-app/go-pdfium/errors"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
)

// Config sizes the instance pool.
type Config struct {
	MinIdle  int
	MaxIdle  int
	MaxTotal int // maximum number of documents open at once
	// InstanceTimeout bounds the wait for a free instance.
	InstanceTimeout time.Duration
}

// DefaultConfig returns a pool of up to four instances.
func DefaultConfig() Config {
	return Config{
		MinIdle:         1,
		MaxIdle:         1,
		MaxTotal:        4,
		InstanceTimeout: 30 * time.Second,
	}
}

// Engine is a PDFium-backed engine.
type Engine struct {
	pool    gopdfium.Pool
	timeout time.Duration
}

var _ engine.Engine = (*Engine)(nil)

// New starts the WebAssembly runtime and creates the instance pool.
func New(cfg Config) (*Engine, error) {
	if cfg.MaxTotal <= 0 {
		cfg = DefaultConfig()
	}
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  cfg.MinIdle,
		MaxIdle:  cfg.MaxIdle,
		MaxTotal: cfg.MaxTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	timeout := cfg.InstanceTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{pool: pool, timeout: timeout}, nil
}

// Init returns an init function for engine.Cell.
func Init(cfg Config) engine.InitFunc {
	return func(ctx context.Context) (engine.Engine, error) {
		e, err := New(cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Close shuts down the instance pool.
func (e *Engine) Close() error {
	return e.pool.Close()
}

// Open implements engine.Engine.
func (e *Engine) Open(ctx context.Context, data []byte, password string) (engine.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instance, err := e.pool.GetInstance(e.timeout)
	if err != nil {
		return nil, fmt.Errorf("no pdfium instance available: %w", err)
	}

	req := &requests.OpenDocument{File: &data}
	if password != "" {
		req.Password = &password
	}
	resp, err := instance.OpenDocument(req)
	if err != nil {
		instance.Close()
		return nil, &model.LoadingError{Err: mapOpenError(err)}
	}

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: resp.Document})
	if err != nil {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: resp.Document})
		instance.Close()
		return nil, &model.LoadingError{Err: err}
	}

	logging.Logger().Debug("pdfium document opened", "pages", count.PageCount, "bytes", len(data))
	return &Document{instance: instance, handle: resp.Document, pageCount: count.PageCount}, nil
}

// mapOpenError translates PDFium open errors into the model sentinels.
func mapOpenError(err error) error {
	switch {
	case errors.Is(err, pdfiumerrors.ErrPassword), err.Error() == pdfiumerrors.ErrPassword.Error():
		return fmt.Errorf("%w: %v", model.ErrPassword, err)
	case errors.Is(err, pdfiumerrors.ErrFormat), err.Error() == pdfiumerrors.ErrFormat.Error():
		return fmt.Errorf("%w: %v", model.ErrNotPDF, err)
	}
	return err
}

// Document is an open PDFium document.
type Document struct {
	mu        sync.Mutex
	instance  gopdfium.Pdfium
	handle    references.FPDF_DOCUMENT
	pageCount int
	closed    bool
}

func (d *Document) PageCount() int { return d.pageCount }

// Page returns page i. The page size is read eagerly; text and raster are
// produced on demand.
func (d *Document) Page(i int) (engine.Page, error) {
	if i < 0 || i >= d.pageCount {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", i, d.pageCount)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("document closed")
	}
	size, err := d.instance.GetPageSize(&requests.GetPageSize{Page: d.pageRef(i)})
	if err != nil {
		return nil, fmt.Errorf("failed to read size of page %d: %w", i+1, err)
	}
	return &Page{doc: d, index: i, width: size.Width, height: size.Height}, nil
}

// Close releases the document and returns its instance to the pool.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	_, err := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: d.handle})
	if cerr := d.instance.Close(); err == nil {
		err = cerr
	}
	return err
}

func (d *Document) pageRef(i int) requests.Page {
	return requests.Page{ByIndex: &requests.PageByIndex{Document: d.handle, Index: i}}
}

// Page is a page of an open PDFium document.
type Page struct {
	doc           *Document
	index         int
	width, height float64
}

func (p *Page) Index() int { return p.index }

func (p *Page) Size() (float64, float64) { return p.width, p.height }

// Render implements engine.Page.
func (p *Page) Render(ctx context.Context, width, height int) (*model.PageRaster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return nil, errors.New("document closed")
	}

	resp, err := p.doc.instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Page:   p.doc.pageRef(p.index),
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Cleanup()

	// The image lives in WebAssembly memory until Cleanup, so copy it out.
	return model.NewPageRaster(resp.Result.Image, float64(width)/p.width), nil
}

// Text implements engine.Page.
func (p *Page) Text(ctx context.Context) (model.PageText, error) {
	if err := ctx.Err(); err != nil {
		return model.PageText{}, err
	}
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return model.PageText{}, errors.New("document closed")
	}
	return readPageText(ctx, p.doc.instance, p.doc.handle, p.index)
}
