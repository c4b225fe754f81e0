package pdflayer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/pdflayer/document"
	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/engine/enginetest"
	"github.com/tsawler/pdflayer/model"
)

func fakeLoader(pages ...string) (*document.Loader, *enginetest.Engine) {
	specs := make([]enginetest.PageSpec, len(pages))
	for i, p := range pages {
		specs[i] = enginetest.PageSpec{Text: enginetest.LayoutText(p, "Sans", 10)}
	}
	fake := &enginetest.Engine{Pages: specs, Password: "pw"}
	cell := engine.NewCell(nil)
	cell.Set(fake)
	return document.NewLoader(document.WithEngine(cell)), fake
}

func TestViewerImmutability(t *testing.T) {
	base := FromBytes([]byte("%PDF-1.7"))
	scaled := base.Scale(2)
	paged := scaled.Pages(1).Pages(2)

	if base.options.layout.Scale != 1 {
		t.Errorf("base scale changed to %v", base.options.layout.Scale)
	}
	if scaled.options.layout.Scale != 2 {
		t.Errorf("scaled = %v, want 2", scaled.options.layout.Scale)
	}
	if len(scaled.options.pages) != 0 {
		t.Errorf("scaled pages = %v, want none", scaled.options.pages)
	}
	if len(paged.options.pages) != 2 {
		t.Errorf("paged pages = %v, want [1 2]", paged.options.pages)
	}

	noText := base.NoTextLayer()
	if base.options.textLayer == nil {
		t.Error("NoTextLayer modified the original viewer")
	}
	if noText.options.textLayer != nil {
		t.Error("NoTextLayer did not disable the text layer")
	}
}

func TestRender(t *testing.T) {
	loader, _ := fakeLoader("hello world", "second")
	pages, warnings, err := FromBytes([]byte("%PDF-1.7")).
		Loader(loader).
		Password("pw").
		Scale(2).
		Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}

	r := pages[0].Result
	if r == nil {
		t.Fatalf("page 0 failed: %v", pages[0].Err)
	}
	if r.Raster.Width != 1224 || r.Raster.Height != 1584 {
		t.Errorf("raster = %dx%d, want 1224x1584", r.Raster.Width, r.Raster.Height)
	}
	if len(r.Projected) != 2 {
		t.Fatalf("got %d fragments, want 2", len(r.Projected))
	}
	if got := r.Projected[0]; got.Text != "hello" || got.Left != 144 || got.FontSize != 20 {
		t.Errorf("first fragment = %+v", got)
	}
}

func TestRenderPages(t *testing.T) {
	loader, fake := fakeLoader("one", "two", "three")
	v := FromBytes([]byte("%PDF-1.7")).Loader(loader).Password("pw")

	pages, _, err := v.Pages(3, 1, 3).Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(pages) != 2 || pages[0].Index != 0 || pages[1].Index != 2 {
		t.Errorf("selected %+v, want pages 0 and 2", pages)
	}
	if got := fake.Renders(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("rendered pages %v, want [0 2]", got)
	}

	if _, _, err := v.Pages(4).Render(context.Background()); err == nil {
		t.Error("expected an error for page 4 of 3")
	}
}

func TestText(t *testing.T) {
	loader, _ := fakeLoader("first page", "second page")
	text, _, err := FromBytes([]byte("%PDF-1.7")).Loader(loader).Password("pw").Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "first page\n\nsecond page" {
		t.Errorf("Text = %q", text)
	}
}

func TestFragments(t *testing.T) {
	loader, _ := fakeLoader("a b", "c")
	frags, _, err := FromBytes([]byte("%PDF-1.7")).Loader(loader).Password("pw").Fragments(context.Background())
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	var texts []string
	for _, f := range frags {
		texts = append(texts, f.Text)
	}
	if got := strings.Join(texts, ","); got != "a,b,c" {
		t.Errorf("fragments = %s, want a,b,c", got)
	}
}

func TestWrongPassword(t *testing.T) {
	loader, fake := fakeLoader("secret")
	_, _, err := FromBytes([]byte("%PDF-1.7")).Loader(loader).Password("nope").Render(context.Background())
	if !errors.Is(err, model.ErrPassword) {
		t.Errorf("err = %v, want ErrPassword", err)
	}
	if n := len(fake.Renders()); n != 0 {
		t.Errorf("rendered %d pages after a failed open", n)
	}
}

func TestInvalidScale(t *testing.T) {
	loader, _ := fakeLoader("page")
	_, err := FromBytes([]byte("%PDF-1.7")).Loader(loader).Scale(0).PageCount(context.Background())
	if err == nil {
		t.Error("expected an error for scale 0")
	}
}

func TestNoSource(t *testing.T) {
	if _, err := Open("").Load(context.Background()); err == nil {
		t.Error("expected an error without a source")
	}
}

func TestPageCount(t *testing.T) {
	loader, fake := fakeLoader("a", "b", "c")
	n := Must(FromBytes([]byte("%PDF-1.7")).Loader(loader).Password("pw").PageCount(context.Background()))
	if n != 3 {
		t.Errorf("PageCount = %d, want 3", n)
	}
	if fake.Closed() != 1 {
		t.Errorf("closed %d documents, want 1", fake.Closed())
	}
	if n := len(fake.Renders()); n != 0 {
		t.Errorf("PageCount rendered %d pages", n)
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must did not panic")
		}
	}()
	Must(0, errors.New("boom"))
}
