package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/model"
)

func whiteRaster(w, h int) *model.PageRaster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return model.NewPageRaster(img, 1)
}

func isReddish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0x8000 && g < 0x8000 && b < 0x8000
}

func TestComposite_OutlinesFragments(t *testing.T) {
	raster := whiteRaster(100, 80)
	projected := []model.ProjectedFragment{{Text: "Hi", Left: 20, Top: 10, Width: 40, Height: 20}}

	img, err := Composite(raster, projected, Options{BoxColor: "#ff0000", LineWidth: 2})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 80), img.Bounds())

	assert.True(t, isReddish(img.At(40, 10)), "top edge should be outlined")
	assert.True(t, isReddish(img.At(20, 20)), "left edge should be outlined")
	r, g, b, _ := img.At(40, 20).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "interior stays untouched")
	r, g, b, _ = img.At(90, 70).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	// The source raster is not modified.
	assert.Equal(t, byte(0xff), raster.Pixels[(10*100+40)*4+1])
}

func TestComposite_InvalidRaster(t *testing.T) {
	_, err := Composite(nil, nil, DefaultOptions())
	assert.Error(t, err)

	_, err = Composite(&model.PageRaster{Width: 2, Height: 2, Pixels: make([]byte, 3)}, nil, DefaultOptions())
	assert.Error(t, err)
}

func TestOutline(t *testing.T) {
	dc := gg.NewContextForImage(whiteRaster(60, 40).Image())
	defer dc.Close()

	require.NoError(t, outline(dc, nil, 0, 0, Options{}))
	projected := []model.ProjectedFragment{
		{Text: "a", Left: 2, Top: 2, Width: 10, Height: 10},
		{Text: "b", Left: 20, Top: 2, Width: 10, Height: 10},
	}
	require.NoError(t, outline(dc, projected, 5, 5, Options{LineWidth: 2}))
	assert.True(t, isReddish(dc.Image().At(30, 7)), "second box is drawn at its offset")
}

func TestStack(t *testing.T) {
	layout := model.ViewerLayout{Padding: 5, Gap: 10, Background: "#000000", Scale: 1}
	pages := []Page{
		{Raster: whiteRaster(50, 40)},
		{Raster: nil},
		{Raster: whiteRaster(30, 20)},
	}

	img, err := Stack(pages, layout, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 5+40+10+20+5, img.Bounds().Dy())

	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0), r, "padding shows the background")
	r, _, _, _ = img.At(30, 50).RGBA()
	assert.Equal(t, uint32(0), r, "gap shows the background")
	r, _, _, _ = img.At(30, 60).RGBA()
	assert.Equal(t, uint32(0xffff), r, "second page is centered")

	_, err = Stack([]Page{{}}, layout, DefaultOptions())
	assert.Error(t, err)
}

func TestEncodePNG(t *testing.T) {
	img, err := Composite(whiteRaster(8, 8), nil, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
}
