package document

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/inspect"
	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/render"
)

// ErrClosed is returned when rerendering a closed document.
var ErrClosed = errors.New("document closed")

// Page is one page slot of a document. Exactly one of Result and Err is
// set, unless Deferred is true: then the page has not been rendered, either
// because it waits for a container width or because the load did not
// request it. Rerender fills it in.
type Page struct {
	Index    int
	Result   *render.PageResult
	Err      error
	Deferred bool
}

// Document is a loaded document. The engine document stays open so pages
// can be rerendered at a new size; Close releases it.
type Document struct {
	ID        uuid.UUID
	Source    string
	PageCount int
	Info      *inspect.Info // nil without an inspector

	mu       sync.Mutex
	state    State
	pages    []Page
	text     []string
	doc      engine.Document
	pipeline *render.Pipeline
	req      Request
	observer func(State)
}

// State returns the current lifecycle state.
func (d *Document) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Pages returns a snapshot of every page slot in document order.
func (d *Document) Pages() []Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Page(nil), d.pages...)
}

// Page returns the slot of page i.
func (d *Document) Page(i int) (Page, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.pages) {
		return Page{}, false
	}
	return d.pages[i], true
}

// Text returns the captured plain text of every page in document order.
func (d *Document) Text() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.text...)
}

// Errors returns the page-fatal errors in page order.
func (d *Document) Errors() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for _, p := range d.pages {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errs
}

// Warnings returns the warnings of every rendered page in page order.
func (d *Document) Warnings() []model.Warning {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Warning
	for _, p := range d.pages {
		if p.Result != nil {
			out = append(out, p.Result.Warnings...)
		}
	}
	return out
}

// Rerender renders the visible pages again with a new layout and container
// width, typically after a resize. A nil visible list rerenders every page.
// Out-of-range indices are ignored. It returns the updated slots.
func (d *Document) Rerender(ctx context.Context, layout model.ViewerLayout, containerWidth float64, visible []int) ([]Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return nil, ErrClosed
	}
	d.req.Layout = layout
	d.req.ContainerWidth = containerWidth

	if visible == nil {
		visible = make([]int, len(d.pages))
		for i := range visible {
			visible[i] = i
		}
	}

	var updated []Page
	for _, i := range visible {
		if i < 0 || i >= len(d.pages) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		d.pages[i] = d.renderPage(ctx, i, layout, containerWidth)
		if r := d.pages[i].Result; r != nil {
			d.text[i] = r.Text
		}
		updated = append(updated, d.pages[i])
	}
	return updated, nil
}

// Close releases the engine document. It is safe to call more than once.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// renderPage renders page i into a slot. The caller holds d.mu.
func (d *Document) renderPage(ctx context.Context, i int, layout model.ViewerLayout, containerWidth float64) Page {
	slot := Page{Index: i}
	page, err := d.doc.Page(i)
	if err != nil {
		slot.Err = &model.RenderError{Page: i, Err: err}
		logging.Logger().Warn("page unavailable", "id", d.ID.String(), "page", i+1, "error", err)
		return slot
	}

	res, err := d.pipeline.RenderPage(ctx, page, render.Request{
		Layout:         layout,
		ContainerWidth: containerWidth,
		TextLayer:      d.req.TextLayer,
		CaptureText:    d.req.CaptureText,
	})
	switch {
	case errors.Is(err, model.ErrNotMeasurable):
		slot.Deferred = true
	case err != nil:
		slot.Err = err
	default:
		slot.Result = res
	}
	return slot
}

func (d *Document) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
	if d.observer != nil {
		d.observer(s)
	}
}

// fail moves the document to Error and returns err.
func (d *Document) fail(err error) error {
	d.setState(Error)
	logging.Logger().Warn("document load failed", "id", d.ID.String(), "source", d.Source, "error", err)
	return err
}
