// Package document orchestrates loading a PDF and rendering its pages.
//
// A load fetches the document bytes while the process-wide engine
// initialises, opens the document once both are available, then renders
// every page in order. Fetch and open failures are fatal for the document;
// a page that fails to render is recorded in its own slot and the other
// pages continue.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/fetch"
	"github.com/tsawler/pdflayer/inspect"
	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/render"
)

// Inspector checks bytes before the engine sees them.
type Inspector interface {
	Inspect(data []byte, password string) (*inspect.Info, error)
}

// Request describes one document load.
type Request struct {
	// Source is the location to fetch. Ignored when Data is set.
	Source string
	// Data supplies the document bytes directly.
	Data     []byte
	Password string
	Layout   model.ViewerLayout
	// ContainerWidth is the available width in pixels, used by fit-width
	// layouts. Pages are deferred until it is known.
	ContainerWidth float64
	// TextLayer configures fragment grouping. Nil skips the text layer.
	TextLayer *model.TextLayerConfig
	// CaptureText collects each page's plain text for the text sink.
	CaptureText bool
	// Pages limits the initial render to these 0-based indices. Nil renders
	// every page; an empty slice only opens the document. Pages left out are
	// Deferred until Rerender, and out-of-range indices are ignored.
	Pages []int
}

// Loader loads documents. It is safe for concurrent use.
type Loader struct {
	cell      *engine.Cell
	fetcher   fetch.Source
	pipeline  *render.Pipeline
	inspector Inspector
	textSink  func([]string)
	observer  func(State)
}

// Option configures a Loader.
type Option func(*Loader)

// WithEngine uses cell instead of engine.Default.
func WithEngine(cell *engine.Cell) Option {
	return func(l *Loader) { l.cell = cell }
}

// WithFetcher sets the byte source.
func WithFetcher(src fetch.Source) Option {
	return func(l *Loader) { l.fetcher = src }
}

// WithPipeline sets the page render pipeline.
func WithPipeline(p *render.Pipeline) Option {
	return func(l *Loader) { l.pipeline = p }
}

// WithInspector enables a pre-open check of the fetched bytes.
func WithInspector(i Inspector) Option {
	return func(l *Loader) { l.inspector = i }
}

// WithTextSink receives the captured per-page text, in document order, when
// a load with CaptureText reaches Ready.
func WithTextSink(fn func(pages []string)) Option {
	return func(l *Loader) { l.textSink = fn }
}

// WithStateObserver is called on every state transition, synchronously
// from the loading goroutine.
func WithStateObserver(fn func(State)) Option {
	return func(l *Loader) { l.observer = fn }
}

// NewLoader creates a loader. Without options it uses engine.Default, a
// fetch.Router and the default pipeline.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		cell:     engine.Default,
		pipeline: render.NewPipeline(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fetcher == nil {
		router, err := fetch.NewRouter(30*time.Second, "")
		if err != nil {
			logging.Logger().Warn("HTTP fetching unavailable", "error", err)
			l.fetcher = fetch.FileSource{}
		} else {
			l.fetcher = router
		}
	}
	return l
}

type engineResult struct {
	engine engine.Engine
	err    error
}

// Load fetches, opens and renders a document.
//
// A fetch failure is returned as *model.FetchError and an open failure as
// *model.LoadingError; in both cases no document is returned. Otherwise the
// document is Ready, with per-page results or errors, and must be closed.
func (l *Loader) Load(ctx context.Context, req Request) (*Document, error) {
	doc := &Document{
		ID:       uuid.New(),
		Source:   req.Source,
		pipeline: l.pipeline,
		req:      req,
		observer: l.observer,
	}
	doc.setState(FetchingAndInitializing)
	start := time.Now()

	engCh := make(chan engineResult, 1)
	go func() {
		e, err := l.cell.Get(ctx)
		engCh <- engineResult{engine: e, err: err}
	}()

	data, fetchErr := l.bytes(ctx, req)
	eng := <-engCh

	if fetchErr != nil {
		return nil, doc.fail(fetchErr)
	}
	if eng.err != nil {
		if ctx.Err() != nil {
			return nil, doc.fail(ctx.Err())
		}
		return nil, doc.fail(&model.LoadingError{Err: fmt.Errorf("engine initialisation: %w", eng.err)})
	}

	doc.setState(Opening)
	if l.inspector != nil {
		info, err := l.inspector.Inspect(data, req.Password)
		if err != nil {
			return nil, doc.fail(&model.LoadingError{Err: err})
		}
		doc.Info = info
	}

	edoc, err := eng.engine.Open(ctx, data, req.Password)
	if err != nil {
		if ctx.Err() != nil {
			return nil, doc.fail(ctx.Err())
		}
		var le *model.LoadingError
		if !errors.As(err, &le) {
			err = &model.LoadingError{Err: err}
		}
		return nil, doc.fail(err)
	}
	doc.doc = edoc
	doc.PageCount = edoc.PageCount()

	doc.setState(RenderingPages)
	doc.mu.Lock()
	doc.pages = make([]Page, doc.PageCount)
	doc.text = make([]string, doc.PageCount)
	selected := selection(req.Pages, doc.PageCount)
	for i := 0; i < doc.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			doc.mu.Unlock()
			doc.Close()
			return nil, doc.fail(err)
		}
		if !selected[i] {
			doc.pages[i] = Page{Index: i, Deferred: true}
			continue
		}
		doc.pages[i] = doc.renderPage(ctx, i, req.Layout, req.ContainerWidth)
		if r := doc.pages[i].Result; r != nil {
			doc.text[i] = r.Text
		}
	}
	text := append([]string(nil), doc.text...)
	doc.mu.Unlock()

	// A cancellation during the last page leaves no later check behind.
	if err := ctx.Err(); err != nil {
		doc.Close()
		return nil, doc.fail(err)
	}

	if req.CaptureText && l.textSink != nil {
		l.textSink(text)
	}
	doc.setState(Ready)

	logging.Logger().Info("document loaded",
		"id", doc.ID.String(),
		"pages", doc.PageCount,
		"failed_pages", len(doc.Errors()),
		"elapsed", time.Since(start))
	return doc, nil
}

// selection marks the pages to render. Nil selects every page.
func selection(pages []int, count int) []bool {
	selected := make([]bool, count)
	for i := range selected {
		selected[i] = pages == nil
	}
	for _, i := range pages {
		if i >= 0 && i < count {
			selected[i] = true
		}
	}
	return selected
}

// bytes returns the document bytes, fetched unless supplied in req.
func (l *Loader) bytes(ctx context.Context, req Request) ([]byte, error) {
	if req.Data != nil {
		return req.Data, nil
	}
	data, err := l.fetcher.Fetch(ctx, req.Source)
	if err != nil {
		var fe *model.FetchError
		if !errors.As(err, &fe) {
			err = &model.FetchError{Source: req.Source, Err: err}
		}
		return nil, err
	}
	return data, nil
}
