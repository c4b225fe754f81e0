package pdflayer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/pdflayer/document"
	"github.com/tsawler/pdflayer/inspect"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/ocr"
	"github.com/tsawler/pdflayer/render"
)

// Viewer provides a fluent interface for rendering a document with its
// text layer. Each configuration method returns a new Viewer instance,
// making it safe for concurrent use and allowing method chaining.
type Viewer struct {
	// Source
	source string
	data   []byte

	// Configuration
	options ViewOptions
	ocrLang string
	loader  *document.Loader

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Viewer with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (v *Viewer) clone() *Viewer {
	return &Viewer{
		source:  v.source,
		data:    v.data,
		options: v.options.clone(),
		ocrLang: v.ocrLang,
		loader:  v.loader,
		err:     v.err,
	}
}

// ============================================================================
// Configuration Methods (return new Viewer instance)
// ============================================================================

// Pages specifies which pages to return (1-indexed).
// Multiple calls are cumulative.
func (v *Viewer) Pages(pages ...int) *Viewer {
	newV := v.clone()
	newV.options.pages = append(newV.options.pages, pages...)
	return newV
}

// Password sets the password for encrypted documents.
func (v *Viewer) Password(password string) *Viewer {
	newV := v.clone()
	newV.options.password = password
	return newV
}

// Scale sets a fixed zoom factor, where 1 renders at 72 DPI.
func (v *Viewer) Scale(scale float64) *Viewer {
	newV := v.clone()
	if scale <= 0 && newV.err == nil {
		newV.err = fmt.Errorf("scale must be positive, got %g", scale)
	}
	newV.options.layout.Scale = scale
	newV.options.layout.FitWidth = false
	return newV
}

// FitWidth derives the scale so each page fills containerWidth pixels,
// less the layout padding.
//
// Example:
//
//	pages, _, err := pdflayer.Open("doc.pdf").FitWidth(800).Render(ctx)
func (v *Viewer) FitWidth(containerWidth float64) *Viewer {
	newV := v.clone()
	newV.options.layout.FitWidth = true
	newV.options.containerWidth = containerWidth
	return newV
}

// Layout replaces the viewer layout wholesale.
func (v *Viewer) Layout(layout model.ViewerLayout) *Viewer {
	newV := v.clone()
	newV.options.layout = layout
	return newV
}

// TextLayer sets how glyphs are grouped into fragments.
func (v *Viewer) TextLayer(cfg model.TextLayerConfig) *Viewer {
	newV := v.clone()
	newV.options.textLayer = &cfg
	return newV
}

// NoTextLayer renders rasters only. Plain text is still captured.
func (v *Viewer) NoTextLayer() *Viewer {
	newV := v.clone()
	newV.options.textLayer = nil
	return newV
}

// OCRFallback recognizes text from the raster for pages whose text stream
// is empty or unreadable. It needs a build with -tags ocr; without it such
// pages get a warning and no text layer.
func (v *Viewer) OCRFallback(language string) *Viewer {
	newV := v.clone()
	newV.ocrLang = language
	return newV
}

// Loader renders with l instead of the default loader. OCRFallback has no
// effect on a supplied loader.
func (v *Viewer) Loader(l *document.Loader) *Viewer {
	newV := v.clone()
	newV.loader = l
	return newV
}

// ============================================================================
// Terminal Methods
// ============================================================================

// Load fetches, opens and renders the document. When Pages was set only
// those pages are rendered and the others stay Deferred. The caller must
// Close the returned document.
func (v *Viewer) Load(ctx context.Context) (*document.Document, error) {
	return v.load(ctx, v.selection())
}

// load renders only the 0-indexed pages; nil renders every page.
func (v *Viewer) load(ctx context.Context, pages []int) (*document.Document, error) {
	if v.err != nil {
		return nil, v.err
	}
	if v.source == "" && v.data == nil {
		return nil, fmt.Errorf("no source specified")
	}
	return v.newLoader().Load(ctx, document.Request{
		Source:         v.source,
		Data:           v.data,
		Password:       v.options.password,
		Layout:         v.options.layout,
		ContainerWidth: v.options.containerWidth,
		TextLayer:      v.options.textLayer,
		CaptureText:    v.options.captureText,
		Pages:          pages,
	})
}

// selection returns the requested pages 0-indexed, nil when none were
// requested. Range checks wait for the page count.
func (v *Viewer) selection() []int {
	if len(v.options.pages) == 0 {
		return nil
	}
	pages := make([]int, 0, len(v.options.pages))
	for _, p := range v.options.pages {
		pages = append(pages, p-1)
	}
	return pages
}

// Render loads the document and returns the selected pages. A page that
// failed carries its error in Page.Err; only document-level failures are
// returned as err.
func (v *Viewer) Render(ctx context.Context) ([]document.Page, []Warning, error) {
	doc, err := v.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer doc.Close()

	indices, err := v.resolvePages(doc.PageCount)
	if err != nil {
		return nil, nil, err
	}

	all := doc.Pages()
	selected := make([]document.Page, 0, len(indices))
	var warnings []Warning
	for _, i := range indices {
		p := all[i]
		selected = append(selected, p)
		if p.Result != nil {
			warnings = append(warnings, p.Result.Warnings...)
		}
	}
	return selected, warnings, nil
}

// Text returns the plain text of the selected pages, separated by blank
// lines.
func (v *Viewer) Text(ctx context.Context) (string, []Warning, error) {
	pages, warnings, err := v.NoTextLayer().Render(ctx)
	if err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if p.Result != nil {
			sb.WriteString(p.Result.Text)
		}
	}
	return sb.String(), warnings, nil
}

// Fragments returns the projected text layer of the selected pages in
// page order.
func (v *Viewer) Fragments(ctx context.Context) ([]model.ProjectedFragment, []Warning, error) {
	pages, warnings, err := v.Render(ctx)
	if err != nil {
		return nil, nil, err
	}
	var out []model.ProjectedFragment
	for _, p := range pages {
		if p.Result != nil {
			out = append(out, p.Result.Projected...)
		}
	}
	return out, warnings, nil
}

// PageCount returns the number of pages in the document. No page is
// rendered.
func (v *Viewer) PageCount(ctx context.Context) (int, error) {
	doc, err := v.NoTextLayer().load(ctx, []int{})
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.PageCount, nil
}

func (v *Viewer) newLoader() *document.Loader {
	if v.loader != nil {
		return v.loader
	}
	pipeline := render.NewPipeline()
	if v.ocrLang != "" {
		pipeline.Fallback = &ocr.Source{Language: v.ocrLang}
	}
	return document.NewLoader(
		document.WithPipeline(pipeline),
		document.WithInspector(inspect.New()),
	)
}

// resolvePages converts the 1-indexed selection into sorted 0-indexed
// page indices.
func (v *Viewer) resolvePages(pageCount int) ([]int, error) {
	// If no pages specified, use all pages
	if len(v.options.pages) == 0 {
		pageIndices := make([]int, pageCount)
		for i := 0; i < pageCount; i++ {
			pageIndices[i] = i
		}
		return pageIndices, nil
	}

	// Convert 1-indexed to 0-indexed and validate
	seen := make(map[int]bool)
	var pageIndices []int
	for _, p := range v.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		zeroIndexed := p - 1
		if !seen[zeroIndexed] {
			seen[zeroIndexed] = true
			pageIndices = append(pageIndices, zeroIndexed)
		}
	}

	// Sort pages in order
	sort.Ints(pageIndices)
	return pageIndices, nil
}
