package asssearch

import (
	"sort"
	"testing"
)

func startsOf(hits []SearchHit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Start
	}
	return out
}

func TestSearchWholeWordVsPrefix(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{EnableTrie: true})

	exact, err := idx.Search("hell", Options{WholeWords: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(exact) != 0 {
		t.Fatalf("whole-word search for partial token 'hell' = %d hits, want 0", len(exact))
	}

	prefix, err := idx.Search("hell", Options{WholeWords: false})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(prefix) != 2 {
		t.Fatalf("prefix search for 'hell' = %d hits, want 2 (Hello x2)", len(prefix))
	}
}

func TestSearchTrieAndLinearAgreeOnOrdering(t *testing.T) {
	withTrie := BuildIndex(sampleScript, IndexOptions{EnableTrie: true})
	withoutTrie := BuildIndex(sampleScript, IndexOptions{EnableTrie: false})

	a, err := withTrie.Search("wor", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	b, err := withoutTrie.Search("wor", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("trie hits = %d, linear hits = %d", len(a), len(b))
	}
	sa, sb := startsOf(a), startsOf(b)
	if !sort.IntsAreSorted(sa) || !sort.IntsAreSorted(sb) {
		t.Fatal("hits not in ascending start-offset order")
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("trie vs linear ordering mismatch: %v vs %v", sa, sb)
		}
	}
}

func TestSearchCaseSensitivity(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})

	insensitive, _ := idx.Search("hello", Options{WholeWords: true, CaseSensitive: false})
	if len(insensitive) != 2 {
		t.Fatalf("case-insensitive whole-word 'hello' = %d, want 2", len(insensitive))
	}

	sensitive, _ := idx.Search("hello", Options{WholeWords: true, CaseSensitive: true})
	if len(sensitive) != 1 {
		t.Fatalf("case-sensitive whole-word 'hello' = %d, want 1 (only the lowercase one)", len(sensitive))
	}
}

func TestSearchLiteralFallbackForNonWordPattern(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	hits, err := idx.Search("Hello World", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("literal phrase search = %d hits, want 1", len(hits))
	}
}

func TestSearchRegex(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	hits, err := idx.Search(`[A-Z]\w+bye`, Options{UseRegex: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Word != "Goodbye" {
		t.Fatalf("regex search = %+v, want one hit matching 'Goodbye'", hits)
	}
}

func TestSearchInvalidRegexReturnsError(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	if _, err := idx.Search("[", Options{UseRegex: true}); err == nil {
		t.Fatal("expected an error for an invalid regex pattern")
	}
}

func TestSearchScopeCharRange(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	secondLineStart := offsetOf(t, sampleScript, "Dialogue: 0,0:00:05.00")

	hits, err := idx.Search("world", Options{Scope: CharRangeScope(secondLineStart, len(sampleScript))})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("scoped search = %d hits, want 1 (only the second dialogue's World)", len(hits))
	}
}

func TestSearchScopeSectionNames(t *testing.T) {
	doc := newTestDocument(t)
	idx := BuildIndexFromDocument(doc, IndexOptions{})
	defer idx.Close()

	hits, err := idx.Search("default", Options{Scope: SectionNamesScope("V4+ Styles")})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("section-scoped search = %d hits, want 1 (the style name)", len(hits))
	}

	none, err := idx.Search("default", Options{Scope: SectionNamesScope("Script Info")})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("section-scoped search in wrong section = %d hits, want 0", len(none))
	}
}

func TestSearchMaxResults(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	hits, err := idx.Search("world", Options{MaxResults: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("max_results=1 search = %d hits, want 1", len(hits))
	}
}
