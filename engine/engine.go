// Package engine defines the interfaces pdflayer consumes from a PDF
// engine and the process-wide cell that initialises one exactly once.
//
// The engine parses documents, rasterizes pages and reports glyph geometry.
// pdflayer never does any of that itself; see the pdfium subpackage for the
// adapter used by default.
package engine

import (
	"context"

	"github.com/tsawler/pdflayer/model"
)

// Engine opens documents. Implementations must be safe for concurrent use.
type Engine interface {
	// Open parses data. An empty password opens unencrypted documents.
	// Password and format problems are returned as *model.LoadingError.
	Open(ctx context.Context, data []byte, password string) (Document, error)
}

// Document is an open PDF. It must be closed to release engine resources.
type Document interface {
	PageCount() int
	// Page returns the page at the 0-based index i. Calling Page twice with
	// the same index yields an equivalent page.
	Page(i int) (Page, error)
	Close() error
}

// Page is a single page of an open document.
type Page interface {
	// Index is the 0-based position within the document.
	Index() int
	// Size returns the page width and height in PDF points.
	Size() (width, height float64)
	// Text returns the logical text stream and the glyph records in engine
	// order, in unscaled PDF points.
	Text(ctx context.Context) (model.PageText, error)
	// Render rasterizes the page to exactly width x height pixels.
	Render(ctx context.Context, width, height int) (*model.PageRaster, error)
}
