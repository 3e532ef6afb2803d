package assanalysis

import (
	"hash/fnv"
	"sync"

	"github.com/npillmayer/assgo/assparse"
)

// ResolutionCache memoizes ResolveStyle by a content hash of the style's raw
// row text, so repeated analysis of an unchanged Script does not re-resolve
// every style row (SPEC_FULL.md §3, supplementing spec.md's analyzer with
// the original implementation's resolved-style cache). Zero value is usable;
// the zero cache behaves as an always-miss cache.
type ResolutionCache struct {
	mu    sync.Mutex
	byKey map[uint64]*ResolvedStyle
}

// NewResolutionCache returns an empty cache ready for use.
func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{byKey: make(map[uint64]*ResolvedStyle)}
}

func styleCacheKey(s *assparse.Style) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.RawValue))
	return h.Sum64()
}

// resolve returns a cached ResolvedStyle for s if one exists with the same
// raw text, otherwise resolves, caches, and returns a fresh one. A nil
// receiver always misses.
func (c *ResolutionCache) resolve(s *assparse.Style) *ResolvedStyle {
	if c == nil {
		return ResolveStyle(s)
	}
	key := styleCacheKey(s)
	c.mu.Lock()
	if rs, ok := c.byKey[key]; ok {
		c.mu.Unlock()
		return rs
	}
	c.mu.Unlock()

	rs := ResolveStyle(s)

	c.mu.Lock()
	if c.byKey != nil {
		c.byKey[key] = rs
	}
	c.mu.Unlock()
	return rs
}
