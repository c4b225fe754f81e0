// Package pdffixture generates small PDF documents for tests.
package pdffixture

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Options controls fixture generation.
type Options struct {
	// Password encrypts the document with this user password when set.
	Password string
	FontSize float64 // default 12
}

// Build returns a US Letter PDF with one page per entry of pages. Each
// entry is drawn in Helvetica starting one inch from the top-left corner;
// newlines start new lines.
func Build(pages []string, opts Options) ([]byte, error) {
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	if opts.Password != "" {
		pdf.SetProtection(fpdf.CnProtectPrint, opts.Password, opts.Password+"-owner")
	}
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(false, 72)
	pdf.SetFont("Helvetica", "", size)

	for _, text := range pages {
		pdf.AddPage()
		pdf.SetXY(72, 72)
		pdf.MultiCell(0, size*1.2, text, "", "L", false)
	}
	if len(pages) == 0 {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF fixture: %w", err)
	}
	return buf.Bytes(), nil
}

// MustBuild is Build for test setup; it panics on error.
func MustBuild(pages []string, opts Options) []byte {
	data, err := Build(pages, opts)
	if err != nil {
		panic(err)
	}
	return data
}
