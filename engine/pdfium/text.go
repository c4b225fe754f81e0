package pdfium

import (
	"context"
	"fmt"
	"math"

	gopdfium "github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"

	"github.com/tsawler/pdflayer/model"
)

// readPageText collects the logical text and one glyph per character
// index. The caller holds the document lock.
func readPageText(ctx context.Context, instance gopdfium.Pdfium, doc references.FPDF_DOCUMENT, index int) (model.PageText, error) {
	loaded, err := instance.FPDF_LoadPage(&requests.FPDF_LoadPage{Document: doc, Index: index})
	if err != nil {
		return model.PageText{}, fmt.Errorf("failed to load page: %w", err)
	}
	defer instance.FPDF_ClosePage(&requests.FPDF_ClosePage{Page: loaded.Page})

	page := requests.Page{ByReference: &loaded.Page}

	full, err := instance.GetPageText(&requests.GetPageText{Page: page})
	if err != nil {
		return model.PageText{}, fmt.Errorf("failed to read text: %w", err)
	}

	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{Page: page})
	if err != nil {
		return model.PageText{}, fmt.Errorf("failed to load text page: %w", err)
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{TextPage: textPage.TextPage})

	count, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{TextPage: textPage.TextPage})
	if err != nil {
		return model.PageText{}, fmt.Errorf("failed to count characters: %w", err)
	}

	glyphs := make([]model.Glyph, 0, count.Count)
	for i := 0; i < count.Count; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return model.PageText{}, err
			}
		}
		g, err := readGlyph(instance, textPage.TextPage, i)
		if err != nil {
			return model.PageText{}, fmt.Errorf("character %d: %w", i, err)
		}
		glyphs = append(glyphs, g)
	}

	return model.PageText{Text: full.Text, Glyphs: glyphs}, nil
}

func readGlyph(instance gopdfium.Pdfium, tp references.FPDF_TEXTPAGE, i int) (model.Glyph, error) {
	uni, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{TextPage: tp, Index: i})
	if err != nil {
		return model.Glyph{}, err
	}
	box, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{TextPage: tp, Index: i})
	if err != nil {
		return model.Glyph{}, err
	}
	tight := model.NewRect(box.Left, box.Bottom, box.Right, box.Top)

	loose := tight
	if lb, err := instance.FPDFText_GetLooseCharBox(&requests.FPDFText_GetLooseCharBox{TextPage: tp, Index: i}); err == nil {
		loose = model.NewRect(float64(lb.Rect.Left), float64(lb.Rect.Bottom), float64(lb.Rect.Right), float64(lb.Rect.Top))
	}

	var size float64
	if fs, err := instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{TextPage: tp, Index: i}); err == nil {
		size = fs.FontSize
	}
	scaled := size
	if m, err := instance.FPDFText_GetMatrix(&requests.FPDFText_GetMatrix{TextPage: tp, Index: i}); err == nil {
		scaled = scaledFontSize(size, float64(m.Matrix.C), float64(m.Matrix.D))
	}

	var family string
	if fi, err := instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{TextPage: tp, Index: i}); err == nil {
		family = FontFamily(fi.FontName)
	}

	return model.Glyph{
		Char:           rune(uni.Unicode),
		Bounds:         tight,
		LooseBounds:    loose,
		FontFamily:     family,
		FontSize:       size,
		ScaledFontSize: scaled,
	}, nil
}

// scaledFontSize applies the vertical scale of the text matrix, the length
// of its (c, d) column.
func scaledFontSize(size, c, d float64) float64 {
	k := math.Hypot(c, d)
	if k == 0 {
		return size
	}
	return size * k
}

// FontFamily strips the subset tag from an embedded font name, so
// "ABCDEF+Helvetica" becomes "Helvetica".
func FontFamily(name string) string {
	if isSubsetFont(name) {
		return name[7:]
	}
	return name
}

// isSubsetFont checks if a font is a subset (has a prefix like "ABCDEF+")
func isSubsetFont(name string) bool {
	if len(name) < 8 {
		return false
	}
	for i := 0; i < 6; i++ {
		if name[i] < 'A' || name[i] > 'Z' {
			return false
		}
	}
	return name[6] == '+'
}
