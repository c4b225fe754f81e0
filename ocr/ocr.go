//go:build ocr

// Package ocr recognizes glyphs on rasterized pages that carry no text
// stream, such as scanned documents.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// Recognize runs OCR on an encoded image and returns the page text and
// one box per recognized symbol and text line, in pixels of that image.
func (c *Client) Recognize(imageData []byte) (*Result, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol boxes: %w", err)
	}

	lines, err := c.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("failed to read line boxes: %w", err)
	}

	res := &Result{Text: strings.TrimSpace(text), Symbols: make([]Symbol, 0, len(boxes))}
	for _, l := range lines {
		res.Lines = append(res.Lines, l.Box)
	}
	for _, b := range boxes {
		for _, r := range b.Word {
			res.Symbols = append(res.Symbols, Symbol{Char: r, Box: b.Box, Confidence: b.Confidence})
			break
		}
	}
	return res, nil
}
