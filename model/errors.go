package model

import (
	"errors"
	"fmt"
)

var (
	// ErrPassword is wrapped by LoadingError when the document is encrypted
	// and the password is missing or wrong.
	ErrPassword = errors.New("password required or incorrect")
	// ErrNotPDF is wrapped by LoadingError when the bytes are not a PDF.
	ErrNotPDF = errors.New("not a PDF document")
	// ErrNotMeasurable is returned when a fit-width render is requested
	// before the container width is known. Callers should retry once a
	// width is available; it is not a render failure.
	ErrNotMeasurable = errors.New("container width not yet measurable")
)

// FetchError reports that the document bytes could not be acquired.
// It is fatal for the document.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LoadingError reports that the engine could not open the document: a bad
// password, corrupt bytes or an unsupported format. It is fatal for the
// document.
type LoadingError struct {
	Err error
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("failed to load PDF: %v", e.Err)
}

func (e *LoadingError) Unwrap() error { return e.Err }

// RenderError reports that one page could not be rasterized. Other pages
// are unaffected.
type RenderError struct {
	Page int // 0-indexed
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render page %d: %v", e.Page+1, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// TextExtractionError reports that a page's text stream could not be read.
// The page is still shown, without a text layer.
type TextExtractionError struct {
	Page int // 0-indexed
	Err  error
}

func (e *TextExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from page %d: %v", e.Page+1, e.Err)
}

func (e *TextExtractionError) Unwrap() error { return e.Err }

// IsDocumentFatal reports whether err stops the whole document from
// rendering.
func IsDocumentFatal(err error) bool {
	var fe *FetchError
	var le *LoadingError
	return errors.As(err, &fe) || errors.As(err, &le)
}
