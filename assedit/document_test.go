package assedit

import (
	"strings"
	"testing"
)

const s1Source = "[Script Info]\r\n" +
	"Title: Test\r\n" +
	"\r\n" +
	"[V4+ Styles]\r\n" +
	"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\r\n" +
	"Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,0,2,10,10,10,1\r\n" +
	"\r\n" +
	"[Events]\r\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
	"Dialogue: 0,0:00:00.00,0:00:05.00,Default,,0,0,0,,Hello World!\r\n"

func TestEditAndUndo_S5(t *testing.T) {
	doc := NewDocument(s1Source)
	v0 := doc.Version()

	idx := strings.Index(doc.Text(), "Hello World!")
	if idx < 0 {
		t.Fatal("fixture text not found")
	}
	r := Range{idx, idx + len("Hello World!")}

	if err := doc.Replace(r, "Goodbye"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if doc.Version() != v0+1 {
		t.Fatalf("version after replace = %d, want %d", doc.Version(), v0+1)
	}
	if !strings.Contains(doc.Text(), "Goodbye") {
		t.Fatalf("text after replace does not contain Goodbye: %q", doc.Text())
	}
	if len(doc.Script().Issues()) != 0 {
		t.Fatalf("unexpected parse issues after replace: %v", doc.Script().Issues())
	}

	if !doc.Undo() {
		t.Fatal("undo reported no edit to revert")
	}
	if doc.Text() != s1Source {
		t.Fatalf("text after undo does not match original")
	}
	if doc.Version() != v0+2 {
		t.Fatalf("version after undo = %d, want %d", doc.Version(), v0+2)
	}
	if len(doc.Script().Issues()) != 0 {
		t.Fatalf("unexpected parse issues after undo: %v", doc.Script().Issues())
	}
}

func TestVersionMonotonicity_Property8(t *testing.T) {
	doc := NewDocument(s1Source)
	last := doc.Version()
	for i := 0; i < 5; i++ {
		if err := doc.Insert(0, "; comment\n"); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if doc.Version() <= last {
			t.Fatalf("version did not strictly increase: %d -> %d", last, doc.Version())
		}
		last = doc.Version()
	}
}

func TestUndoInverse_Property9(t *testing.T) {
	doc := NewDocument(s1Source)
	original := doc.Text()

	ops := []struct {
		r Range
		s string
	}{
		{Range{0, 0}, "A"},
		{Range{1, 1}, "BC"},
		{Range{0, 2}, "Z"},
	}
	for _, op := range ops {
		if err := doc.Replace(op.r, op.s); err != nil {
			t.Fatalf("replace: %v", err)
		}
	}
	for range ops {
		if !doc.Undo() {
			t.Fatal("undo ran out early")
		}
	}
	if doc.Text() != original {
		t.Fatalf("text after full undo = %q, want original", doc.Text())
	}
}

func TestOutOfBoundsRange(t *testing.T) {
	doc := NewDocument("hello")
	if err := doc.Delete(Range{10, 20}); err == nil {
		t.Fatal("expected ErrOutOfBounds for a range entirely past the end")
	}
	// Partially out of bounds clamps instead of erroring.
	if err := doc.Delete(Range{3, 100}); err != nil {
		t.Fatalf("expected clamped delete to succeed, got %v", err)
	}
	if doc.Text() != "hel" {
		t.Fatalf("text = %q, want %q", doc.Text(), "hel")
	}
}

func TestEventDispatchOrderAndFilters(t *testing.T) {
	doc := NewDocument(s1Source)
	var order []string

	doc.Subscribe(ByKind(EventEdited), 1, func(e DocumentEvent) { order = append(order, "low") })
	doc.Subscribe(ByKind(EventEdited), 10, func(e DocumentEvent) { order = append(order, "high") })
	doc.Subscribe(ByModification(false), 100, func(e DocumentEvent) { order = append(order, "selection-only") })

	if err := doc.Insert(0, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("dispatch order = %v, want [high low]", order)
	}

	order = nil
	if err := doc.SetSelection(Range{0, 1}); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	if len(order) != 1 || order[0] != "selection-only" {
		t.Fatalf("selection dispatch = %v, want [selection-only]", order)
	}
}

func TestDeferredSubscriptionDuringDispatch(t *testing.T) {
	doc := NewDocument(s1Source)
	var secondCalled bool
	var secondID string

	var firstID string
	firstID = doc.Subscribe(Any(), 0, func(e DocumentEvent) {
		secondID = doc.Subscribe(Any(), 0, func(DocumentEvent) { secondCalled = true })
		doc.Unsubscribe(firstID)
	})
	_ = firstID

	if err := doc.Insert(0, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if secondCalled {
		t.Fatal("listener added mid-dispatch fired during the same dispatch")
	}
	if err := doc.Insert(0, "y"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !secondCalled {
		t.Fatal("listener added mid-dispatch never fired on a later dispatch")
	}
	_ = secondID
}
