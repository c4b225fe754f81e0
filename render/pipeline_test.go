package render

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/engine/enginetest"
	"github.com/tsawler/pdflayer/model"
)

func TestEffectiveScale(t *testing.T) {
	tests := []struct {
		name      string
		layout    model.ViewerLayout
		pageWidth float64
		container float64
		want      float64
		wantErr   error
	}{
		{"fixed scale", model.ViewerLayout{Scale: 1.5}, 612, 0, 1.5, nil},
		{"non-positive scale falls back", model.ViewerLayout{Scale: 0}, 612, 0, 1, nil},
		{"fit width", model.ViewerLayout{Scale: 1, FitWidth: true}, 600, 1200, 2, nil},
		{"fit width with padding and zoom", model.ViewerLayout{Scale: 0.5, FitWidth: true, Padding: 10}, 600, 1220, 1, nil},
		{"fit width not measurable", model.ViewerLayout{Scale: 1, FitWidth: true}, 600, 0, 0, model.ErrNotMeasurable},
		{"padding eats container", model.ViewerLayout{Scale: 1, FitWidth: true, Padding: 50}, 600, 80, 0, model.ErrNotMeasurable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveScale(tt.layout, tt.pageWidth, tt.container)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func openPage(t *testing.T, spec enginetest.PageSpec) engine.Page {
	t.Helper()
	fake := &enginetest.Engine{Pages: []enginetest.PageSpec{spec}}
	doc, err := fake.Open(context.Background(), nil, "")
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)
	return page
}

func TestRenderPage_SharesScaleBetweenRasterAndText(t *testing.T) {
	page := openPage(t, enginetest.PageSpec{Text: enginetest.LayoutText("Hello world", "Sans", 12)})
	cfg := model.DefaultTextLayerConfig()

	res, err := NewPipeline().RenderPage(context.Background(), page, Request{
		Layout:    model.ViewerLayout{Scale: 1.5},
		TextLayer: &cfg,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.5, res.Scale)
	assert.Equal(t, 918, res.Raster.Width)
	assert.Equal(t, 1188, res.Raster.Height)
	assert.Equal(t, 1.5, res.Raster.Scale)
	require.Len(t, res.Fragments, 2)
	require.Len(t, res.Projected, 2)
	assert.Equal(t, "Hello world", res.Text)

	for i, f := range res.Fragments {
		assert.Equal(t, 1.5, f.Scale)
		p := res.Projected[i]
		// Fragments already built at 1.5 are not scaled again.
		assert.InDelta(t, f.Bounds.Left, p.Left, 1e-9)
		assert.InDelta(t, float64(res.Raster.Height)-f.Bounds.Top, p.Top, 1e-9)
		assert.GreaterOrEqual(t, p.Top, 0.0)
		assert.LessOrEqual(t, p.Top, float64(res.Raster.Height))
		assert.InDelta(t, 18, p.FontSize, 1e-9)
	}
}

func TestRenderPage_FitWidth(t *testing.T) {
	page := openPage(t, enginetest.PageSpec{Width: 600, Height: 800})

	_, err := NewPipeline().RenderPage(context.Background(), page, Request{
		Layout: model.ViewerLayout{Scale: 1, FitWidth: true},
	})
	assert.ErrorIs(t, err, model.ErrNotMeasurable)

	res, err := NewPipeline().RenderPage(context.Background(), page, Request{
		Layout:         model.ViewerLayout{Scale: 1, FitWidth: true},
		ContainerWidth: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, 300, res.Raster.Width)
	assert.Equal(t, 400, res.Raster.Height)
	assert.Nil(t, res.Fragments)
}

func TestRenderPage_RasterFailureIsPageFatal(t *testing.T) {
	boom := errors.New("boom")
	page := openPage(t, enginetest.PageSpec{RenderErr: boom})

	_, err := NewPipeline().RenderPage(context.Background(), page, Request{Layout: model.DefaultViewerLayout()})

	var re *model.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, re.Page)
	assert.ErrorIs(t, err, boom)
	assert.False(t, model.IsDocumentFatal(err))
}

func TestRenderPage_TextFailureDegrades(t *testing.T) {
	page := openPage(t, enginetest.PageSpec{TextErr: errors.New("bad text stream")})
	cfg := model.DefaultTextLayerConfig()

	res, err := NewPipeline().RenderPage(context.Background(), page, Request{
		Layout:    model.DefaultViewerLayout(),
		TextLayer: &cfg,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Raster)
	assert.Empty(t, res.Fragments)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, model.WarnTextExtraction, res.Warnings[0].Kind)
	assert.Equal(t, 0, res.Warnings[0].Page)
}

func TestRenderPage_FallbackSource(t *testing.T) {
	page := openPage(t, enginetest.PageSpec{})
	cfg := model.DefaultTextLayerConfig()
	var sawRaster *model.PageRaster

	p := NewPipeline()
	p.Fallback = TextSourceFunc(func(ctx context.Context, pg engine.Page, raster *model.PageRaster) (model.PageText, error) {
		sawRaster = raster
		return enginetest.LayoutText("scanned", "OCR", 10), nil
	})

	res, err := p.RenderPage(context.Background(), page, Request{Layout: model.DefaultViewerLayout(), TextLayer: &cfg})
	require.NoError(t, err)
	assert.Same(t, res.Raster, sawRaster)
	require.Len(t, res.Fragments, 1)
	assert.Equal(t, "scanned", res.Fragments[0].Text)
	assert.Equal(t, "OCR", res.Fragments[0].FontFamily)
}

func TestRenderPage_WarningsCarryPageIndex(t *testing.T) {
	pt := enginetest.LayoutText("ab", "Sans", 12)
	pt.Text = "abc"
	fake := &enginetest.Engine{Pages: []enginetest.PageSpec{{}, {Text: pt}}}
	doc, err := fake.Open(context.Background(), nil, "")
	require.NoError(t, err)
	page, err := doc.Page(1)
	require.NoError(t, err)
	cfg := model.DefaultTextLayerConfig()

	res, err := NewPipeline().RenderPage(context.Background(), page, Request{
		Layout:    model.ViewerLayout{Scale: -2},
		TextLayer: &cfg,
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, model.WarnInvalidOption, res.Warnings[0].Kind)
	assert.Equal(t, model.WarnUnmatchedChar, res.Warnings[1].Kind)
	for _, w := range res.Warnings {
		assert.Equal(t, 1, w.Page)
	}
	assert.Equal(t, 1.0, res.Scale)
}

func TestRasterSize(t *testing.T) {
	w, h := RasterSize(612, 792, 1.333)
	assert.Equal(t, int(math.Round(612*1.333)), w)
	assert.Equal(t, int(math.Round(792*1.333)), h)
}
