package asssearch

import (
	"testing"

	"github.com/npillmayer/assgo/assedit"
)

const sampleScript = "[Script Info]\r\n" +
	"Title: Test\r\n" +
	"\r\n" +
	"[V4+ Styles]\r\n" +
	"Format: Name, Fontname, Fontsize\r\n" +
	"Style: Default,Arial,20\r\n" +
	"\r\n" +
	"[Events]\r\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
	"Dialogue: 0,0:00:00.00,0:00:05.00,Default,,0,0,0,,Hello World hello\r\n" +
	"Dialogue: 0,0:00:05.00,0:00:10.00,Default,,0,0,0,,Goodbye World\r\n"

func newTestDocument(t *testing.T) *assedit.Document {
	t.Helper()
	return assedit.NewDocument(sampleScript)
}

func offsetOf(t *testing.T, text, needle string) int {
	t.Helper()
	for i := 0; i+len(needle) <= len(text); i++ {
		if text[i:i+len(needle)] == needle {
			return i
		}
	}
	t.Fatalf("substring %q not found", needle)
	return -1
}

func TestBuildIndexFindsAllOccurrences(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	positions := idx.words["world"]
	if len(positions) != 2 {
		t.Fatalf("world occurrences = %d, want 2", len(positions))
	}
	helloPositions := idx.words["hello"]
	if len(helloPositions) != 2 {
		t.Fatalf("hello occurrences = %d, want 2 (Hello + hello)", len(helloPositions))
	}
}

func TestIncrementalUpdateMatchesFullRebuild(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})

	worldIdx := offsetOf(t, sampleScript, "Goodbye World")
	change := Change{Start: worldIdx, End: worldIdx + len("Goodbye"), NewLen: len("Farewell")}
	newText := sampleScript[:worldIdx] + "Farewell" + sampleScript[worldIdx+len("Goodbye"):]
	idx.Update(newText, []Change{change})

	rebuilt := BuildIndex(newText, IndexOptions{})

	if len(idx.words) != len(rebuilt.words) {
		t.Fatalf("word count after incremental update = %d, want %d", len(idx.words), len(rebuilt.words))
	}
	for word, positions := range rebuilt.words {
		got := idx.words[word]
		if len(got) != len(positions) {
			t.Fatalf("word %q: positions = %v, want %v", word, got, positions)
		}
		for i := range positions {
			if got[i] != positions[i] {
				t.Fatalf("word %q: positions = %v, want %v", word, got, positions)
			}
		}
	}
	if _, stillThere := idx.words["goodbye"]; stillThere {
		t.Fatal("stale word 'goodbye' survived the update")
	}
	if _, present := idx.words["farewell"]; !present {
		t.Fatal("new word 'farewell' missing after update")
	}
}

func TestFullRebuildFallbackOnManyChanges(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	changes := make([]Change, 0, 12)
	for i := 0; i < 12; i++ {
		changes = append(changes, Change{Start: 0, End: 0, NewLen: 0})
	}
	idx.Update(sampleScript, changes)
	if len(idx.words["hello"]) != 2 {
		t.Fatalf("rebuild fallback produced wrong index: hello = %v", idx.words["hello"])
	}
}

func TestBuildIndexFromDocumentAutoUpdates(t *testing.T) {
	doc := assedit.NewDocument(sampleScript)
	idx := BuildIndexFromDocument(doc, IndexOptions{})
	defer idx.Close()

	worldIdx := offsetOf(t, doc.Text(), "Goodbye")
	if err := doc.Replace(assedit.Range{Start: worldIdx, End: worldIdx + len("Goodbye")}, "Farewell"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	idx.mu.RLock()
	_, stillThere := idx.words["goodbye"]
	_, present := idx.words["farewell"]
	idx.mu.RUnlock()

	if stillThere {
		t.Fatal("index not updated: stale word 'goodbye' still present")
	}
	if !present {
		t.Fatal("index not updated: new word 'farewell' missing")
	}
}

func TestCacheInvalidatedOnUpdate(t *testing.T) {
	idx := BuildIndex(sampleScript, IndexOptions{})
	hits, err := idx.Search("world", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}

	worldIdx := offsetOf(t, sampleScript, "Goodbye World")
	change := Change{Start: worldIdx + len("Goodbye "), End: worldIdx + len("Goodbye World"), NewLen: len("Planet")}
	newText := sampleScript[:worldIdx+len("Goodbye ")] + "Planet" + sampleScript[worldIdx+len("Goodbye World"):]
	idx.Update(newText, []Change{change})

	hits, err = idx.Search("world", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits after update = %d, want 1 (cache not invalidated?)", len(hits))
	}
}
