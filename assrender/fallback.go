package assrender

// fallbackGlyphWidth and fallbackGlyphHeight are spec.md §4.6's "constant
// 8x12 filled rectangles per character" when no fonts are registered, so
// geometry/layout tests remain meaningful without a real font.
const (
	fallbackGlyphWidth  = 8
	fallbackGlyphHeight = 12
)

var fallbackBitmap = newFallbackBitmap()

func newFallbackBitmap() *GlyphBitmap {
	alpha := make([]byte, fallbackGlyphWidth*fallbackGlyphHeight)
	for i := range alpha {
		alpha[i] = 255
	}
	return &GlyphBitmap{
		Width: fallbackGlyphWidth, Height: fallbackGlyphHeight,
		OffsetX: 0, OffsetY: -fallbackGlyphHeight,
		Advance: fallbackGlyphWidth,
		Alpha:   alpha,
	}
}

// fallbackGlyph ignores rune/size and always returns the constant
// rectangle: spec.md's fallback path does not vary by character or style
// size, only by whether a real font is available at all.
func fallbackGlyph(_ rune) *GlyphBitmap {
	return fallbackBitmap
}
