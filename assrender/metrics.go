package assrender

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// lineMetrics returns the ascent and total line height, in pixels, for face
// at sizePx. A face that fails to report metrics (unusual, but sfnt.Font
// permits it) falls back to size-proportional estimates.
func lineMetrics(face *Face, sizePx int) (ascent, height float64) {
	var buf sfnt.Buffer
	m, err := face.SFNT.Metrics(&buf, fixed.I(sizePx), font.HintingNone)
	if err != nil {
		return float64(sizePx) * 0.8, float64(sizePx) * 1.2
	}
	return float64(m.Ascent) / 64, float64(m.Height) / 64
}
