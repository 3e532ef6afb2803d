/*
Package asssearch builds and incrementally maintains a word-offset index
over an ASS script buffer, answering exact/prefix/regex queries with
result sets ordered by ascending start offset (spec.md §4.5).
*/
package asssearch

import (
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/npillmayer/assgo/assedit"
	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.asssearch")
}

// retokenizeWindow bounds how far past a change's edges incremental
// maintenance re-tokenizes, per spec.md §4.5 step 3. Chosen comfortably
// above any realistic ASS word/tag length.
const retokenizeWindow = 64

// fullRebuildChangeCount and fullRebuildByteSum are spec.md §4.5 step 4's
// fallback thresholds.
const (
	fullRebuildChangeCount = 10
	fullRebuildByteSum     = 1000
)

const defaultCacheSize = 64

// Change describes one edit to re-index: the half-open byte range [Start,
// End) it replaced in the text as it stood before this Update call, and
// NewLen, the length of its replacement.
type Change struct {
	Start, End int
	NewLen     int
}

// IndexOptions configures a new Index.
type IndexOptions struct {
	EnableTrie bool // build the compressed-trie prefix structure (spec.md §4.5's "optional FST-like set")
	CacheSize  int  // bounded (pattern,opts)->results cache capacity; 0 uses a default
}

// Index is a word-offset search index over a text buffer (spec.md §4.5).
// Index is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	text string

	words map[string][]int // lowercased word -> sorted, ascending occurrence start offsets
	trie  *trieNode         // nil unless opts.EnableTrie

	cache *lru.Cache[string, []SearchHit]

	// doc and script are non-nil only when the Index was built via
	// BuildIndexFromDocument, enabling auto-update and section-scoped
	// queries.
	doc     *assedit.Document
	script  *assparse.Script
	subID   string
	prevLen int

	opts IndexOptions
}

// BuildIndex tokenizes text from scratch (spec.md §4.5's build_index,
// generalized to accept a plain string so callers without an assedit
// Document can still index arbitrary ASS source or a substring of one).
func BuildIndex(text string, opts IndexOptions) *Index {
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, _ := lru.New[string, []SearchHit](opts.CacheSize)
	idx := &Index{words: make(map[string][]int), cache: cache, opts: opts}
	idx.rebuildLocked(text)
	return idx
}

// BuildIndexFromDocument builds an Index over doc's current text and
// subscribes to doc's edit events so the index tracks every subsequent
// Insert/Delete/Replace/Undo/Redo incrementally (spec.md §4.5's
// update_index, wired automatically rather than requiring the caller to
// compute Changes by hand). Call Close when the index is no longer
// needed, to unsubscribe from doc.
func BuildIndexFromDocument(doc *assedit.Document, opts IndexOptions) *Index {
	idx := BuildIndex(doc.Text(), opts)
	idx.doc = doc
	idx.script = doc.Script()
	idx.prevLen = len(doc.Text())
	idx.subID = doc.Subscribe(
		assedit.ByKind(assedit.EventEdited, assedit.EventValidated),
		0,
		idx.onDocumentEvent,
	)
	return idx
}

// Close unsubscribes from the backing Document, if any. A no-op for an
// Index built with BuildIndex.
func (idx *Index) Close() {
	if idx.doc != nil && idx.subID != "" {
		idx.doc.Unsubscribe(idx.subID)
		idx.subID = ""
	}
}

// onDocumentEvent derives a single Change from a Document's EventEdited
// notification. DocumentEvent.Range reports the edit's post-image range
// [start, start+s'); the pre-image length (e-s) is recovered algebraically
// from the total text-length delta, since Document does not expose its
// private undo record: delta = s'-(e-s), so (e-s) = s' - delta.
func (idx *Index) onDocumentEvent(ev assedit.DocumentEvent) {
	switch ev.Kind {
	case assedit.EventValidated:
		idx.mu.Lock()
		idx.script = idx.doc.Script()
		idx.mu.Unlock()
	case assedit.EventEdited:
		newText := idx.doc.Text()
		newLen := len(newText)

		idx.mu.RLock()
		prevLen := idx.prevLen
		idx.mu.RUnlock()

		delta := newLen - prevLen
		sPrime := ev.Range.Len()
		oldLen := sPrime - delta
		if oldLen < 0 {
			oldLen = 0
		}
		change := Change{Start: ev.Range.Start, End: ev.Range.Start + oldLen, NewLen: sPrime}
		idx.Update(newText, []Change{change})

		idx.mu.Lock()
		idx.prevLen = newLen
		idx.script = idx.doc.Script()
		idx.mu.Unlock()
	}
}

func isWordByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_'
}

// tokenizeInto scans text[from:to] for maximal [A-Za-z0-9_] runs and
// records each as a lowercased-key occurrence at its absolute start offset
// (spec.md §4.5's index contents).
func tokenizeInto(words map[string][]int, text string, from, to int) {
	i := from
	for i < to {
		if !isWordByte(text[i]) {
			i++
			continue
		}
		j := i
		for j < to && isWordByte(text[j]) {
			j++
		}
		word := strings.ToLower(text[i:j])
		words[word] = insertSortedUnique(words[word], i)
		i = j
	}
}

func insertSortedUnique(positions []int, p int) []int {
	i := sort.SearchInts(positions, p)
	if i < len(positions) && positions[i] == p {
		return positions
	}
	positions = append(positions, 0)
	copy(positions[i+1:], positions[i:])
	positions[i] = p
	return positions
}

// rebuildLocked replaces the entire index with a fresh tokenization of
// text. Caller must hold idx.mu.
func (idx *Index) rebuildLocked(text string) {
	idx.text = text
	idx.words = make(map[string][]int)
	tokenizeInto(idx.words, text, 0, len(text))
	idx.rebuildTrieLocked()
}

func (idx *Index) rebuildTrieLocked() {
	if !idx.opts.EnableTrie {
		idx.trie = nil
		return
	}
	keys := make([]string, 0, len(idx.words))
	for k := range idx.words {
		keys = append(keys, k)
	}
	idx.trie = buildTrie(keys)
}

// removeOverlapping deletes every occurrence whose span [p, p+len(word))
// intersects [s, e) (spec.md §4.5 step 1).
func (idx *Index) removeOverlapping(s, e int) {
	for word, positions := range idx.words {
		wlen := len(word)
		kept := positions[:0]
		for _, p := range positions {
			if p+wlen <= s || p >= e {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(idx.words, word)
		} else {
			idx.words[word] = kept
		}
	}
}

// removeRange deletes every occurrence overlapping [from, to); used to
// clear the re-tokenize window before inserting its fresh tokens.
func (idx *Index) removeRange(from, to int) {
	idx.removeOverlapping(from, to)
}

// shiftFrom adds delta to every occurrence position >= at (spec.md §4.5
// step 2).
func (idx *Index) shiftFrom(at, delta int) {
	if delta == 0 {
		return
	}
	for word, positions := range idx.words {
		changed := false
		for i, p := range positions {
			if p >= at {
				positions[i] = p + delta
				changed = true
			}
		}
		if changed {
			sort.Ints(positions)
			idx.words[word] = positions
		}
	}
}

// applyChange runs spec.md §4.5's three-step incremental maintenance for
// one change already expressed in the index's current coordinate space.
// Caller must hold idx.mu and must apply changes in ascending Start order.
func (idx *Index) applyChangeLocked(c Change, newText string) {
	idx.removeOverlapping(c.Start, c.End)
	delta := c.NewLen - (c.End - c.Start)
	idx.shiftFrom(c.End, delta)

	newEditEnd := c.Start + c.NewLen
	winStart := c.Start - retokenizeWindow
	if winStart < 0 {
		winStart = 0
	}
	winEnd := newEditEnd + retokenizeWindow
	if winEnd > len(newText) {
		winEnd = len(newText)
	}
	for winStart > 0 && isWordByte(newText[winStart-1]) {
		winStart--
	}
	for winEnd < len(newText) && isWordByte(newText[winEnd]) {
		winEnd++
	}
	idx.removeRange(winStart, winEnd)
	tokenizeInto(idx.words, newText, winStart, winEnd)
}

func sumChangeBytes(changes []Change) int {
	total := 0
	for _, c := range changes {
		total += c.End - c.Start
	}
	return total
}

// Update brings the index up to date with newText after the edits
// described by changes, each given in the coordinate space of the text as
// it stood before this Update call (as Change documents); they are applied
// in ascending Start order, each shifted by the length deltas of the
// changes before it. Observationally
// equivalent to discarding the index and rebuilding from newText (spec.md
// §4.5's contract), and always invalidates the query cache.
func (idx *Index) Update(newText string, changes []Change) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cache.Purge()

	if len(changes) > fullRebuildChangeCount || sumChangeBytes(changes) > fullRebuildByteSum {
		tracer().Infof("asssearch: %d changes / %d bytes exceeds incremental threshold, rebuilding", len(changes), sumChangeBytes(changes))
		idx.rebuildLocked(newText)
		return
	}

	sorted := append([]Change(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	runningDelta := 0
	for _, c := range sorted {
		shifted := Change{Start: c.Start + runningDelta, End: c.End + runningDelta, NewLen: c.NewLen}
		idx.applyChangeLocked(shifted, newText)
		runningDelta += c.NewLen - (c.End - c.Start)
	}
	idx.text = newText
	idx.rebuildTrieLocked()
}
