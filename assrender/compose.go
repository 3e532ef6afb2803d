package assrender

import (
	"math"

	"github.com/npillmayer/assgo/asscolor"
)

// Frame is a pre-multiplied-alpha RGBA buffer of length 4*W*H (spec.md
// §4.6's render output), zero-initialized so pixels outside any rendered
// text remain transparent.
type Frame struct {
	W, H int
	Pix  []byte
}

// NewFrame allocates a zero-initialized frame.
func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]byte, 4*w*h)}
}

// blendOver composites src (premultiplied) over the pixel at (x,y), the
// standard "Over" operator evaluated in premultiplied space.
func (f *Frame) blendOver(x, y int, r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	i := 4 * (y*f.W + x)
	inv := 255 - uint32(a)
	f.Pix[i+0] = uint8(minU32(255, uint32(r)+uint32(f.Pix[i+0])*inv/255))
	f.Pix[i+1] = uint8(minU32(255, uint32(g)+uint32(f.Pix[i+1])*inv/255))
	f.Pix[i+2] = uint8(minU32(255, uint32(b)+uint32(f.Pix[i+2])*inv/255))
	f.Pix[i+3] = uint8(minU32(255, uint32(a)+uint32(f.Pix[i+3])*inv/255))
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// compositeGlyph writes bmp at pen position (penX, penY) — the glyph's pen
// origin, i.e. baseline intersection with its advance start — onto f, using
// color for ink and alphaScale (0..1, already folding segment_alpha and
// line_alpha, spec.md §4.6 step 3) to scale coverage. If frz is non-zero (or
// frx/fry, accepted but folded into the same Z rotation per spec.md §4.6:
// the angle used is frz+frx+fry degrees about Z),
// each source pixel is rotated about the glyph's own bitmap center before
// being written (spec.md §4.6 Composition step 1); points landing outside
// the viewport are dropped (step 2).
func compositeGlyph(f *Frame, bmp *GlyphBitmap, penX, penY float64, color asscolor.Color, alphaScale, frz, frx, fry float64) {
	if bmp == nil || bmp.Width == 0 || bmp.Height == 0 {
		return
	}
	if alphaScale <= 0 {
		return
	}
	rotating := frz != 0 || frx != 0 || fry != 0
	cx, cy := float64(bmp.Width)/2, float64(bmp.Height)/2
	sin, cos := math.Sincos((frz + frx + fry) * math.Pi / 180)

	for gy := 0; gy < bmp.Height; gy++ {
		for gx := 0; gx < bmp.Width; gx++ {
			cov := bmp.Alpha[gy*bmp.Width+gx]
			if cov == 0 {
				continue
			}
			dx, dy := float64(gx)-cx, float64(gy)-cy
			if rotating {
				dx, dy = dx*cos-dy*sin, dx*sin+dy*cos
			}
			px := int(math.Round(penX + float64(bmp.OffsetX) + cx + dx))
			py := int(math.Round(penY + float64(bmp.OffsetY) + cy + dy))

			a := float64(cov) / 255 * alphaScale * float64(color.A) / 255
			if a <= 0 {
				continue
			}
			out := uint8(math.Round(a * 255))
			f.blendOver(px, py,
				uint8(math.Round(float64(color.R)*a)),
				uint8(math.Round(float64(color.G)*a)),
				uint8(math.Round(float64(color.B)*a)),
				out,
			)
		}
	}
}
