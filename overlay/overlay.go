// Package overlay draws text layer boxes over page rasters so alignment
// between the two can be checked by eye.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/tsawler/pdflayer/model"
)

// Options controls box drawing.
type Options struct {
	BoxColor  string  // hex color of fragment outlines
	LineWidth float64 // pixels
}

// DefaultOptions returns red one pixel outlines.
func DefaultOptions() Options {
	return Options{BoxColor: "#ff0000", LineWidth: 1}
}

// Composite copies the raster and outlines every projected fragment on it.
func Composite(raster *model.PageRaster, projected []model.ProjectedFragment, opts Options) (image.Image, error) {
	if raster == nil {
		return nil, errors.New("nil raster")
	}
	if err := raster.Validate(); err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(image.Rect(0, 0, raster.Width, raster.Height))
	draw.Draw(canvas, canvas.Bounds(), raster.Image(), image.Point{}, draw.Src)

	dc := gg.NewContextForImage(canvas)
	defer dc.Close()
	if err := outline(dc, projected, 0, 0, opts); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// Page is one page placed on a stacked document image.
type Page struct {
	Raster    *model.PageRaster
	Projected []model.ProjectedFragment
}

// Stack places pages top to bottom as a viewer shows them: each page is
// centered horizontally with layout.Padding on both sides, pages are
// separated by layout.Gap and the rest is filled with layout.Background.
// Nil rasters, such as failed pages, are skipped.
func Stack(pages []Page, layout model.ViewerLayout, opts Options) (image.Image, error) {
	width, height := 0, 0
	count := 0
	for _, p := range pages {
		if p.Raster == nil {
			continue
		}
		if p.Raster.Width > width {
			width = p.Raster.Width
		}
		height += p.Raster.Height
		count++
	}
	if count == 0 {
		return nil, errors.New("no rendered pages")
	}
	pad := int(layout.Padding)
	gap := int(layout.Gap)
	width += 2 * pad
	height += 2*pad + gap*(count-1)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	y := pad
	type placed struct {
		page Page
		x, y int
	}
	var placements []placed
	for _, p := range pages {
		if p.Raster == nil {
			continue
		}
		x := (width - p.Raster.Width) / 2
		placements = append(placements, placed{page: p, x: x, y: y})
		y += p.Raster.Height + gap
	}

	dc := gg.NewContextForImage(canvas)
	defer dc.Close()
	bg := layout.Background
	if bg == "" {
		bg = "#ffffff"
	}
	dc.SetHexColor(bg)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(canvas.Bounds())
	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
	for _, pl := range placements {
		r := pl.page.Raster
		dst := image.Rect(pl.x, pl.y, pl.x+r.Width, pl.y+r.Height)
		draw.Draw(img, dst, r.Image(), image.Point{}, draw.Src)
	}

	boxes := gg.NewContextForImage(img)
	defer boxes.Close()
	for _, pl := range placements {
		if err := outline(boxes, pl.page.Projected, float64(pl.x), float64(pl.y), opts); err != nil {
			return nil, err
		}
	}
	return boxes.Image(), nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	dc := gg.NewContextForImage(img)
	defer dc.Close()
	return dc.EncodePNG(w)
}

// outline strokes each fragment box offset by (dx, dy) and stops at the
// first stroke that fails.
func outline(dc *gg.Context, projected []model.ProjectedFragment, dx, dy float64, opts Options) error {
	if len(projected) == 0 {
		return nil
	}
	color := opts.BoxColor
	if color == "" {
		color = "#ff0000"
	}
	lw := opts.LineWidth
	if lw <= 0 {
		lw = 1
	}
	dc.SetHexColor(color)
	dc.SetLineWidth(lw)
	for _, f := range projected {
		dc.DrawRectangle(f.Left+dx, f.Top+dy, f.Width, f.Height)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("outline fragment %q: %w", f.Text, err)
		}
	}
	return nil
}
