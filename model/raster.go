package model

import (
	"fmt"
	"image"
)

// PageRaster is a rasterized page. Pixels holds tightly packed RGBA rows,
// so len(Pixels) == Width*Height*4. Scale is the effective scale the page
// was rendered at.
type PageRaster struct {
	Width  int
	Height int
	Pixels []byte
	Scale  float64
}

// NewPageRaster copies img into a tightly packed raster.
func NewPageRaster(img *image.RGBA, scale float64) *PageRaster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w*4:(y+1)*w*4], img.Pix[off:off+w*4])
	}
	return &PageRaster{Width: w, Height: h, Pixels: pix, Scale: scale}
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (r *PageRaster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid raster size %dx%d", r.Width, r.Height)
	}
	if len(r.Pixels) != r.Width*r.Height*4 {
		return fmt.Errorf("raster buffer is %d bytes, want %d", len(r.Pixels), r.Width*r.Height*4)
	}
	return nil
}

// Image returns an image.RGBA view over the pixel buffer. The view shares
// memory with the raster.
func (r *PageRaster) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pixels,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}
