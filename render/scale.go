package render

import (
	"fmt"
	"math"

	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
)

// EffectiveScale returns the factor a page of pageWidth points is drawn at.
//
// Without FitWidth this is layout.Scale. With FitWidth the page is sized so
// it fills containerWidth minus padding on both sides, then layout.Scale is
// applied on top. A fit-width layout with no measurable container returns
// model.ErrNotMeasurable: the caller should wait for a width rather than
// treat the page as failed. A non-positive layout scale falls back to 1.
func EffectiveScale(layout model.ViewerLayout, pageWidth, containerWidth float64) (float64, error) {
	zoom := layout.Scale
	if zoom <= 0 {
		logging.Logger().Warn("invalid viewer scale, using 1", "scale", layout.Scale)
		zoom = 1
	}
	if !layout.FitWidth {
		return zoom, nil
	}
	if containerWidth <= 0 {
		return 0, model.ErrNotMeasurable
	}
	if pageWidth <= 0 {
		return 0, fmt.Errorf("invalid page width %v", pageWidth)
	}
	usable := containerWidth - 2*layout.Padding
	if usable <= 0 {
		return 0, model.ErrNotMeasurable
	}
	return usable / pageWidth * zoom, nil
}

// RasterSize returns the pixel size of a page drawn at scale.
func RasterSize(width, height, scale float64) (int, int) {
	return int(math.Round(width * scale)), int(math.Round(height * scale))
}
