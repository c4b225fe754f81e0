// Package pdflayer renders PDF pages to raster images and reconstructs a
// selectable text layer aligned over them.
//
// Basic usage:
//
//	pages, warnings, err := pdflayer.Open("document.pdf").Render(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdflayer.FormatWarnings(warnings))
//	}
//
// With options:
//
//	pages, _, err := pdflayer.Open("https://example.com/report.pdf").
//	    Password("secret").
//	    FitWidth(1024).
//	    Pages(1, 2).
//	    Render(ctx)
//
// Each page carries its raster, the fragments grouped from the page's
// glyphs and those fragments projected into raster pixels. For finer
// control, the document package exposes the loader and its lifecycle.
package pdflayer

import (
	"log/slog"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/engine/pdfium"
	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
)

func init() {
	engine.Default.SetInit(pdfium.Init(pdfium.DefaultConfig()))
}

// Warning is a non-fatal issue found while building a page.
type Warning = model.Warning

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	return model.FormatWarnings(warnings)
}

// SetLogger routes the diagnostics of every pdflayer package to l.
// Nothing is logged until a logger is set.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Open returns a Viewer for the document at source. Sources may be http(s)
// URLs, file:// URLs or local paths. Nothing is fetched until a terminal
// method such as Render is called.
//
// Example:
//
//	text, warnings, err := pdflayer.Open("document.pdf").Text(ctx)
func Open(source string) *Viewer {
	return &Viewer{
		source:  source,
		options: defaultOptions(),
	}
}

// FromBytes returns a Viewer for a document already in memory.
func FromBytes(data []byte) *Viewer {
	return &Viewer{
		data:    data,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdflayer.Must(pdflayer.Open("document.pdf").PageCount(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() or Render() and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	text := pdflayer.MustText(pdflayer.Open("document.pdf").Text(ctx))
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
