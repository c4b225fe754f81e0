// Package inspect checks document bytes before they reach the engine.
//
// Inspection sniffs the file type and reads the cross-reference structure
// with pdfcpu to report the page count, header version and encryption. It
// rejects bytes that are plainly not a PDF, such as an HTML error page
// returned by a server, with a clear error instead of an engine failure.
package inspect

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
)

// Info describes a document.
type Info struct {
	Kind      Kind
	Size      int
	PageCount int    // 0 when the structure could not be read
	Version   string // header version such as "1.7"
	Encrypted bool
	// HeaderOffset is the number of bytes before the %PDF header.
	HeaderOffset int
	// ParseErr is set when pdfcpu could not read the structure. The engine
	// may still open such files, so it is informational.
	ParseErr error
}

// Inspector is the pdfcpu-backed inspector.
type Inspector struct{}

// New creates an inspector.
func New() *Inspector {
	return &Inspector{}
}

// Inspect sniffs data and reads its structure. Only data that is not a PDF
// at all is an error, returned wrapping model.ErrNotPDF.
func (i *Inspector) Inspect(data []byte, password string) (*Info, error) {
	info := &Info{Kind: Sniff(data), Size: len(data)}
	if info.Kind != PDF {
		return info, fmt.Errorf("%w: content looks like %s", model.ErrNotPDF, info.Kind)
	}
	info.HeaderOffset = headerOffset(data)

	conf := pdfcpumodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfcpumodel.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		info.ParseErr = err
		if strings.Contains(strings.ToLower(err.Error()), "password") {
			info.Encrypted = true
		}
		logging.Logger().Debug("pdfcpu could not read document", "error", err)
		return info, nil
	}

	// ReadContext leaves PageCount unset; it is filled in from the page tree.
	if err := ctx.EnsurePageCount(); err != nil {
		info.ParseErr = err
		logging.Logger().Debug("pdfcpu could not count pages", "error", err)
	}
	info.PageCount = ctx.PageCount
	info.Encrypted = ctx.Encrypt != nil
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}

// Inspect is a convenience wrapper around a zero Inspector.
func Inspect(data []byte, password string) (*Info, error) {
	return New().Inspect(data, password)
}
