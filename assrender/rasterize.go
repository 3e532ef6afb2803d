package assrender

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// GlyphBitmap is an L3 cache entry: an 8-bit coverage mask plus the metrics
// needed to place and advance past it (spec.md §4.6's glyph cache value).
type GlyphBitmap struct {
	Width, Height  int
	OffsetX, OffsetY int // pixels from the pen origin to the bitmap's top-left
	Advance        float64
	Alpha          []byte // row-major, len == Width*Height
}

// rasterizeGlyph loads r from face at sizePx and rasterizes its outline to
// an 8-bit coverage mask, grounded on the teacher's renderGlyphPNG
// (ot-tools/view_cmd.go): sfnt.LoadGlyph's 26.6 fixed-point segments fed
// into a vector.Rasterizer, scaled by /64 into the Rasterizer's float32
// pixel space (the same Y-down convention as the destination image, so no
// axis flip is needed beyond what LoadGlyph already applies).
func rasterizeGlyph(face *Face, r rune, sizePx int) (*GlyphBitmap, error) {
	var buf sfnt.Buffer
	gid, err := face.SFNT.GlyphIndex(&buf, r)
	if err != nil {
		return nil, fmt.Errorf("assrender: glyph index for %q: %w", r, err)
	}
	if gid == 0 {
		return nil, fmt.Errorf("assrender: rune %q not present in font %q", r, face.Fontname)
	}
	ppem := fixed.I(sizePx)

	advanceFixed, err := face.SFNT.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("assrender: glyph advance for %q: %w", r, err)
	}
	advance := float64(advanceFixed) / 64

	segs, err := face.SFNT.LoadGlyph(&buf, gid, ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("assrender: load glyph for %q: %w", r, err)
	}
	if len(segs) == 0 {
		// Whitespace and other glyphs with no outline: zero-size bitmap,
		// advance still meaningful.
		return &GlyphBitmap{Advance: advance}, nil
	}

	bounds := segs.Bounds()
	width := int(math.Ceil(float64(bounds.Max.X-bounds.Min.X) / 64))
	height := int(math.Ceil(float64(bounds.Max.Y-bounds.Min.Y) / 64))
	if width <= 0 || height <= 0 {
		return &GlyphBitmap{Advance: advance}, nil
	}
	tx := -float32(bounds.Min.X) / 64
	ty := -float32(bounds.Min.Y) / 64

	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Over
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			rast.MoveTo(tx+float32(seg.Args[0].X)/64, ty+float32(seg.Args[0].Y)/64)
		case sfnt.SegmentOpLineTo:
			rast.LineTo(tx+float32(seg.Args[0].X)/64, ty+float32(seg.Args[0].Y)/64)
		case sfnt.SegmentOpQuadTo:
			rast.QuadTo(
				tx+float32(seg.Args[0].X)/64, ty+float32(seg.Args[0].Y)/64,
				tx+float32(seg.Args[1].X)/64, ty+float32(seg.Args[1].Y)/64,
			)
		case sfnt.SegmentOpCubeTo:
			rast.CubeTo(
				tx+float32(seg.Args[0].X)/64, ty+float32(seg.Args[0].Y)/64,
				tx+float32(seg.Args[1].X)/64, ty+float32(seg.Args[1].Y)/64,
				tx+float32(seg.Args[2].X)/64, ty+float32(seg.Args[2].Y)/64,
			)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphBitmap{
		Width: width, Height: height,
		OffsetX: bounds.Min.X.Floor(), OffsetY: bounds.Min.Y.Floor(),
		Advance: advance,
		Alpha:   append([]byte(nil), mask.Pix...),
	}, nil
}
