package assrender

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// glyphKey identifies one cached rasterization (spec.md §4.6's
// "(char, size, font_index) -> (metrics, bitmap)").
type glyphKey struct {
	Rune      rune
	SizePx    int
	FontIndex int
}

func (k glyphKey) String() string {
	return fmt.Sprintf("%d:%d:%d", k.Rune, k.SizePx, k.FontIndex)
}

const defaultL2Capacity = 4096

// GlyphCache is the renderer's three-tier glyph cache (spec.md §4.6):
//   - L1: a plain map owned by one Renderer value, touched only by the
//     goroutine driving that Renderer's RenderFrame calls — the "thread-local
//     hash map" the spec describes, without an actual OS-thread-local,
//     since Go renders per-call rather than pinning goroutines to threads.
//   - L2: a process-wide bounded cache shared by every Renderer, backed by
//     hashicorp/golang-lru/v2 (internally mutex-guarded, substituting for a
//     hand-rolled RWMutex+map per SPEC_FULL.md's wiring note).
//   - L3: rasterizeGlyph, the cache-miss path.
type GlyphCache struct {
	l1 map[glyphKey]*GlyphBitmap
	l2 *lru.Cache[glyphKey, *GlyphBitmap]
}

// NewGlyphCache creates an empty L1 over the shared process-wide L2.
func NewGlyphCache(l2 *lru.Cache[glyphKey, *GlyphBitmap]) *GlyphCache {
	return &GlyphCache{l1: make(map[glyphKey]*GlyphBitmap), l2: l2}
}

// sharedL2 is the process-wide L2 cache, constructed once at package
// bootstrap (spec.md §9: "constructed once at library bootstrap").
var sharedL2 *lru.Cache[glyphKey, *GlyphBitmap]
var sharedL2Once sync.Once

func defaultL2() *lru.Cache[glyphKey, *GlyphBitmap] {
	sharedL2Once.Do(func() {
		sharedL2, _ = lru.New[glyphKey, *GlyphBitmap](defaultL2Capacity)
	})
	return sharedL2
}

// Get returns the rasterization for (r, sizePx, fontIndex) from face,
// populating L1/L2 on a miss via L3 (rasterizeGlyph). Hit in L1 is O(1) and
// requires no lock (spec.md §4.6).
func (c *GlyphCache) Get(face *Face, fontIndex int, r rune, sizePx int) (*GlyphBitmap, error) {
	key := glyphKey{Rune: r, SizePx: sizePx, FontIndex: fontIndex}
	if b, ok := c.l1[key]; ok {
		return b, nil
	}
	if b, ok := c.l2.Get(key); ok {
		c.l1[key] = b
		return b, nil
	}
	b, err := rasterizeGlyph(face, r, sizePx)
	if err != nil {
		return nil, err
	}
	c.l2.Add(key, b)
	c.l1[key] = b
	return b, nil
}

// WarmASCII pre-caches the printable ASCII range at sizePx for face, per
// spec.md §4.6's "common ASCII characters are pre-cached at common sizes at
// construction time". Rasterization failures (e.g. a glyph missing from
// face) are skipped silently: WarmASCII is a best-effort optimization, not
// a correctness requirement.
func (c *GlyphCache) WarmASCII(face *Face, fontIndex int, sizePx int) {
	for r := rune(0x20); r <= 0x7e; r++ {
		_, _ = c.Get(face, fontIndex, r, sizePx)
	}
}
