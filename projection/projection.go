// Package projection maps text fragments from PDF point space into the
// pixel space of a page raster.
package projection

import "github.com/tsawler/pdflayer/model"

// Project places f on a raster of the given height rendered at scale.
//
// PDF space has its origin at the bottom-left with Y growing upward; pixel
// space has its origin at the top-left with Y growing downward. f.Bounds is
// assumed to already be multiplied by f.Scale (0 is read as 1), so only the
// remaining factor scale/f.Scale is applied. A fragment built at the raster's
// own scale is therefore never scaled twice.
func Project(f model.Fragment, scale float64, rasterHeight int) model.ProjectedFragment {
	k := factor(f, scale)
	return model.ProjectedFragment{
		Text:       f.Text,
		FontFamily: f.FontFamily,
		FontSize:   f.FontSize * k,
		Left:       f.Bounds.Left * k,
		Top:        float64(rasterHeight) - f.Bounds.Top*k,
		Width:      f.Bounds.Width() * k,
		Height:     f.Bounds.Height() * k,
	}
}

// ProjectAll projects every fragment of one page, preserving order.
func ProjectAll(frags []model.Fragment, scale float64, rasterHeight int) []model.ProjectedFragment {
	if len(frags) == 0 {
		return nil
	}
	out := make([]model.ProjectedFragment, len(frags))
	for i, f := range frags {
		out[i] = Project(f, scale, rasterHeight)
	}
	return out
}

func factor(f model.Fragment, scale float64) float64 {
	built := f.Scale
	if built == 0 {
		built = 1
	}
	return scale / built
}
