package pdfium

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/internal/pdffixture"
	"github.com/tsawler/pdflayer/model"
	"github.com/tsawler/pdflayer/text"
)

func TestFontFamily(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ABCDEF+Helvetica", "Helvetica"},
		{"Helvetica", "Helvetica"},
		{"abcdef+Helvetica", "abcdef+Helvetica"},
		{"ABC+Helvetica", "ABC+Helvetica"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FontFamily(tt.in), tt.in)
	}
}

func TestScaledFontSize(t *testing.T) {
	assert.Equal(t, 12.0, scaledFontSize(12, 0, 0))
	assert.Equal(t, 24.0, scaledFontSize(12, 0, 2))
	assert.InDelta(t, 12.0, scaledFontSize(12, 0.6, 0.8), 1e-9)
}

func TestMapOpenError(t *testing.T) {
	other := errors.New("other")
	assert.Same(t, other, mapOpenError(other))
}

// newTestEngine starts the WebAssembly runtime, which takes a few seconds.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping pdfium integration test in short mode")
	}
	e, err := New(Config{MinIdle: 1, MaxIdle: 1, MaxTotal: 2})
	if err != nil {
		t.Skipf("pdfium runtime unavailable: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngine_RenderAndText(t *testing.T) {
	e := newTestEngine(t)
	data := pdffixture.MustBuild([]string{"Hello world", "Second page"}, pdffixture.Options{})

	doc, err := e.Open(context.Background(), data, "")
	require.NoError(t, err)
	defer doc.Close()
	require.Equal(t, 2, doc.PageCount())

	page, err := doc.Page(0)
	require.NoError(t, err)
	w, h := page.Size()
	assert.InDelta(t, 612, w, 0.5)
	assert.InDelta(t, 792, h, 0.5)

	raster, err := page.Render(context.Background(), 306, 396)
	require.NoError(t, err)
	require.NoError(t, raster.Validate())
	assert.Equal(t, 306, raster.Width)
	assert.InDelta(t, 0.5, raster.Scale, 1e-9)

	pt, err := page.Text(context.Background())
	require.NoError(t, err)
	assert.Contains(t, pt.Text, "Hello world")
	require.NotEmpty(t, pt.Glyphs)
	assert.Equal(t, 'H', pt.Glyphs[0].Char)
	assert.True(t, strings.Contains(pt.Glyphs[0].FontFamily, "Helvetica"), pt.Glyphs[0].FontFamily)

	cfg := model.DefaultTextLayerConfig()
	frags, warnings := text.NewBuilder().Build(pt, &cfg, 1)
	assert.Empty(t, warnings)
	require.Len(t, frags, 2)
	assert.Equal(t, "Hello", frags[0].Text)
	assert.Equal(t, "world", frags[1].Text)
	// One inch from the top of the page.
	assert.InDelta(t, 792-72, frags[0].Bounds.Top, 14)
}

func TestEngine_WrongPassword(t *testing.T) {
	e := newTestEngine(t)
	data := pdffixture.MustBuild([]string{"secret"}, pdffixture.Options{Password: "hunter2"})

	_, err := e.Open(context.Background(), data, "wrong")
	var le *model.LoadingError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, model.ErrPassword)

	doc, err := e.Open(context.Background(), data, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	require.NoError(t, doc.Close())
}

func TestEngine_NotAPDF(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Open(context.Background(), []byte("plain text"), "")
	var le *model.LoadingError
	assert.ErrorAs(t, err, &le)
}
