package inspect

import (
	"bytes"
	"strings"
)

// Kind is a file type recognised from its leading bytes.
type Kind int

const (
	// Unknown indicates an unrecognized format.
	Unknown Kind = iota
	// PDF indicates a PDF document.
	PDF
	// ZIP indicates a ZIP container such as an office document.
	ZIP
	// HTML indicates an HTML document, typically a login or error page
	// served in place of the PDF.
	HTML
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case PDF:
		return "PDF"
	case ZIP:
		return "ZIP"
	case HTML:
		return "HTML"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	default:
		return "Unknown"
	}
}

// headerWindow is how far into the file a %PDF header may start. Readers
// accept leading garbage before the header.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// Sniff determines the kind of data from its magic bytes.
func Sniff(data []byte) Kind {
	if len(data) < 4 {
		return Unknown
	}

	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if bytes.Contains(window, pdfMagic) {
		return PDF
	}

	switch {
	case data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04:
		return ZIP
	case data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return PNG
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return JPEG
	case looksLikeHTML(data):
		return HTML
	}
	return Unknown
}

// headerOffset returns where the %PDF header starts, or -1.
func headerOffset(data []byte) int {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Index(window, pdfMagic)
}

// looksLikeHTML checks if the data looks like HTML content.
func looksLikeHTML(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) > 512 {
		data = data[:512]
	}
	upper := strings.ToUpper(string(data))
	return strings.HasPrefix(upper, "<!DOCTYPE HTML") ||
		strings.HasPrefix(upper, "<HTML") ||
		(strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML"))
}
