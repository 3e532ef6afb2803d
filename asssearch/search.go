package asssearch

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// SearchHit is one match: the matched source-text span and, for
// word-index-backed matches, the lowercased key it matched under.
type SearchHit struct {
	Word       string
	Start, End int
}

// ScopeKind selects how Options.Scope restricts a Search.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeLineRange
	ScopeSectionNames
	ScopeCharRange
)

// Scope restricts a Search to part of the document (spec.md §4.5).
type Scope struct {
	Kind ScopeKind

	LineStart, LineEnd int // ScopeLineRange, 0-based, inclusive-exclusive
	Sections           []string
	CharStart, CharEnd int // ScopeCharRange, half-open
}

// AllScope matches the whole document; the Options zero value.
func AllScope() Scope { return Scope{Kind: ScopeAll} }

// LineRangeScope restricts matches to 0-based lines [start, end).
func LineRangeScope(start, end int) Scope {
	return Scope{Kind: ScopeLineRange, LineStart: start, LineEnd: end}
}

// SectionNamesScope restricts matches to the named `[Header]` sections.
// Requires an Index built via BuildIndexFromDocument; an Index with no
// backing Script matches nothing under this scope.
func SectionNamesScope(names ...string) Scope {
	return Scope{Kind: ScopeSectionNames, Sections: names}
}

// CharRangeScope restricts matches to the half-open byte range [start, end).
func CharRangeScope(start, end int) Scope {
	return Scope{Kind: ScopeCharRange, CharStart: start, CharEnd: end}
}

// Options configures a Search (spec.md §4.5).
type Options struct {
	CaseSensitive bool
	WholeWords    bool
	MaxResults    int // 0 = unlimited
	UseRegex      bool
	Scope         Scope
}

func (o Options) cacheKey(pattern string) string {
	return fmt.Sprintf("%s\x00%t\x00%t\x00%d\x00%t\x00%d\x00%d-%d\x00%s\x00%d-%d",
		pattern, o.CaseSensitive, o.WholeWords, o.MaxResults, o.UseRegex,
		o.Scope.Kind, o.Scope.LineStart, o.Scope.LineEnd,
		strings.Join(o.Scope.Sections, ","), o.Scope.CharStart, o.Scope.CharEnd)
}

// Search runs pattern against the index, returning hits ordered by
// ascending start offset (spec.md §4.5). Results are served from a bounded
// cache when an identical (pattern, opts) pair was queried since the last
// Update.
func (idx *Index) Search(pattern string, opts Options) ([]SearchHit, error) {
	key := opts.cacheKey(pattern)

	idx.mu.RLock()
	if cached, ok := idx.cache.Get(key); ok {
		idx.mu.RUnlock()
		return cloneHits(cached), nil
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	// Re-check under the write lock: another goroutine may have populated
	// the cache between the RUnlock above and this Lock.
	if cached, ok := idx.cache.Get(key); ok {
		return cloneHits(cached), nil
	}

	hits, err := idx.searchLocked(pattern, opts)
	if err != nil {
		return nil, err
	}
	idx.cache.Add(key, cloneHits(hits))
	return hits, nil
}

func (idx *Index) searchLocked(pattern string, opts Options) ([]SearchHit, error) {
	var hits []SearchHit
	var err error

	switch {
	case opts.UseRegex:
		hits, err = idx.searchRegexLocked(pattern, opts)
	case isSingleWordToken(pattern):
		hits = idx.searchWordLocked(pattern, opts)
	default:
		hits = idx.searchLiteralScanLocked(pattern, opts)
	}
	if err != nil {
		return nil, err
	}

	hits = idx.filterScopeLocked(hits, opts.Scope)
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return hits[i].End < hits[j].End
	})
	if opts.MaxResults > 0 && len(hits) > opts.MaxResults {
		hits = hits[:opts.MaxResults]
	}
	return hits, nil
}

// isSingleWordToken reports whether pattern, tokenized the same way as the
// index, consists of exactly one word run spanning the whole pattern. Only
// such patterns can be accelerated by the word-offset index; anything else
// (spaces, punctuation, mixed content) falls back to a literal scan.
func isSingleWordToken(pattern string) bool {
	if pattern == "" {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if !isWordByte(pattern[i]) {
			return false
		}
	}
	return true
}

// searchWordLocked answers the common case via the word index: an exact
// lookup when whole_words is set, or a prefix probe (trie if enabled, else
// a linear key scan) otherwise — spec.md §4.5's "O(hits) after a
// prefix/exact probe".
func (idx *Index) searchWordLocked(pattern string, opts Options) []SearchHit {
	key := strings.ToLower(pattern)
	var hits []SearchHit

	addOccurrences := func(word string, positions []int) {
		for _, p := range positions {
			end := p + len(word)
			if opts.CaseSensitive && idx.text[p:end] != pattern {
				continue
			}
			hits = append(hits, SearchHit{Word: word, Start: p, End: end})
		}
	}

	if opts.WholeWords {
		addOccurrences(key, idx.words[key])
		return hits
	}

	if idx.opts.EnableTrie && idx.trie != nil {
		for _, word := range idx.trie.prefixKeys(key) {
			addOccurrences(word, idx.words[word])
		}
		return hits
	}
	for word, positions := range idx.words {
		if strings.HasPrefix(word, key) {
			addOccurrences(word, positions)
		}
	}
	return hits
}

// searchLiteralScanLocked handles patterns the word index cannot
// accelerate (spaces, punctuation) via a direct substring scan over the
// full text, per spec.md §4.5's "basic implementation may use linear scan".
func (idx *Index) searchLiteralScanLocked(pattern string, opts Options) []SearchHit {
	if pattern == "" {
		return nil
	}
	haystack := idx.text
	needle := pattern
	if !opts.CaseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	var hits []SearchHit
	from := 0
	for {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(pattern)
		if !opts.WholeWords || isWholeWordMatch(idx.text, start, end) {
			hits = append(hits, SearchHit{Word: idx.text[start:end], Start: start, End: end})
		}
		from = start + 1
		if from >= len(haystack) {
			break
		}
	}
	return hits
}

func isWholeWordMatch(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func (idx *Index) searchRegexLocked(pattern string, opts Options) ([]SearchHit, error) {
	expr := pattern
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("assgo: asssearch: invalid regex %q: %w", pattern, err)
	}
	locs := re.FindAllStringIndex(idx.text, -1)
	hits := make([]SearchHit, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if opts.WholeWords && !isWholeWordMatch(idx.text, start, end) {
			continue
		}
		hits = append(hits, SearchHit{Word: idx.text[start:end], Start: start, End: end})
	}
	return hits, nil
}

func (idx *Index) filterScopeLocked(hits []SearchHit, scope Scope) []SearchHit {
	switch scope.Kind {
	case ScopeAll:
		return hits
	case ScopeCharRange:
		out := hits[:0]
		for _, h := range hits {
			if h.Start >= scope.CharStart && h.End <= scope.CharEnd {
				out = append(out, h)
			}
		}
		return out
	case ScopeLineRange:
		out := hits[:0]
		for _, h := range hits {
			line := strings.Count(idx.text[:h.Start], "\n")
			if line >= scope.LineStart && line < scope.LineEnd {
				out = append(out, h)
			}
		}
		return out
	case ScopeSectionNames:
		bounds := idx.sectionBounds(scope.Sections)
		out := hits[:0]
		for _, h := range hits {
			if withinAnyBound(h.Start, bounds) {
				out = append(out, h)
			}
		}
		return out
	default:
		return hits
	}
}

func withinAnyBound(pos int, bounds [][2]int) bool {
	for _, b := range bounds {
		if pos >= b[0] && pos < b[1] {
			return true
		}
	}
	return false
}

// sectionBounds computes [start,end) byte ranges for every section whose
// header matches one of names, using the backing Script's section headers
// ordered by position (a Section has no explicit end span, so the next
// section's header start, or end-of-text, bounds it). Returns nil if the
// Index has no backing Script (built via BuildIndex, not
// BuildIndexFromDocument).
func (idx *Index) sectionBounds(names []string) [][2]int {
	if idx.script == nil {
		return nil
	}
	type hdr struct {
		name  string
		start int
	}
	var headers []hdr
	for _, sec := range idx.script.Sections {
		headers = append(headers, hdr{sec.HeaderName, sec.HeaderSpan.Start})
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].start < headers[j].start })

	var bounds [][2]int
	for i, h := range headers {
		if !matchesAny(h.name, names) {
			continue
		}
		end := len(idx.text)
		if i+1 < len(headers) {
			end = headers[i+1].start
		}
		bounds = append(bounds, [2]int{h.start, end})
	}
	return bounds
}

func matchesAny(name string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

func cloneHits(hits []SearchHit) []SearchHit {
	out := make([]SearchHit, len(hits))
	copy(out, hits)
	return out
}
