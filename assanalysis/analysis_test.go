package assanalysis

import (
	"testing"

	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/assgo/asstag"
	"github.com/npillmayer/assgo/asstime"
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

func TestBasicAnalysis_S1(t *testing.T) {
	script := assparse.Parse([]byte(s1Source))
	if len(script.Issues()) != 0 {
		t.Fatalf("unexpected parse issues: %v", script.Issues())
	}
	sa := Analyze(script, nil)
	if len(sa.Dialogues) != 1 {
		t.Fatalf("expected 1 dialogue, got %d", len(sa.Dialogues))
	}
	di := sa.Dialogues[0]
	if di.AnimationScore != 0 || di.ComplexityScore != 0 {
		t.Fatalf("expected zero scores for plain text, got anim=%d complexity=%d", di.AnimationScore, di.ComplexityScore)
	}
	if len(sa.Timings) != 1 || !sa.Timings[0].Valid {
		t.Fatalf("expected one valid timing")
	}
	dur := sa.Timings[0].End - sa.Timings[0].Start
	if dur.Seconds()*1000 != 5000 {
		t.Fatalf("expected 5000ms duration, got %v", dur.Seconds()*1000)
	}
}

func TestOverrideTagAnalysis_S2(t *testing.T) {
	script := assparse.Parse([]byte(s1Source))
	ev := script.AllEvents()[0]
	ev.Fields["Text"] = `{\b1\i1\c&H00FF00&}Styled text{\r}`

	di := AnalyzeDialogue(ev, asstag.Default)
	if len(di.TagNames) != 4 {
		t.Fatalf("expected 4 distinct tag names, got %d: %v", len(di.TagNames), di.TagNames)
	}
	if di.Text != "Styled text" {
		t.Fatalf("plain text = %q", di.Text)
	}
	if di.AnimationScore <= 0 {
		t.Fatalf("expected positive animation score, got %d", di.AnimationScore)
	}
	if di.ComplexityScore <= 0 {
		t.Fatalf("expected positive complexity score, got %d", di.ComplexityScore)
	}
}

func mkTiming(startCs, endCs int64) EventTiming {
	return EventTiming{Start: asstime.Centiseconds(startCs), End: asstime.Centiseconds(endCs), Valid: true}
}

func TestTimingRelations_S3(t *testing.T) {
	mk := mkTiming
	a := mk(0, 500)
	b := mk(300, 800)
	c := mk(1000, 1500)

	if got := Relate(a, b); got != PartialOverlap {
		t.Fatalf("rel(A,B) = %v, want PartialOverlap", got)
	}
	if got := Relate(a, c); got != NoOverlap {
		t.Fatalf("rel(A,C) = %v, want NoOverlap", got)
	}
	if got := Relate(a, a); got != Identical {
		t.Fatalf("rel(A,A) = %v, want Identical", got)
	}
}

func TestOverlapCommutativity_Property6(t *testing.T) {
	mk := mkTiming
	pairs := [][2]EventTiming{
		{mk(0, 500), mk(0, 500)},     // identical
		{mk(0, 500), mk(300, 800)},   // partial
		{mk(0, 500), mk(1000, 1500)}, // none
		{mk(0, 500), mk(100, 400)},   // full
	}
	for _, p := range pairs {
		fwd := Relate(p[0], p[1])
		bwd := Relate(p[1], p[0])
		switch fwd {
		case Identical, FullOverlap:
			if bwd != Identical && bwd != FullOverlap {
				t.Fatalf("asymmetric Identical/FullOverlap: fwd=%v bwd=%v", fwd, bwd)
			}
		case PartialOverlap:
			if bwd != PartialOverlap {
				t.Fatalf("PartialOverlap not symmetric: bwd=%v", bwd)
			}
		case NoOverlap:
			if bwd != NoOverlap {
				t.Fatalf("NoOverlap not symmetric: bwd=%v", bwd)
			}
		}
	}
}

func TestAnalyzerMonotonicity_Property7(t *testing.T) {
	script := assparse.Parse([]byte(s1Source))
	ev := script.AllEvents()[0]

	ev.Fields["Text"] = "Hello World!"
	base := AnalyzeDialogue(ev, asstag.Default)

	ev.Fields["Text"] = `{\b1}Hello World!`
	withTag := AnalyzeDialogue(ev, asstag.Default)

	ev.Fields["Text"] = `{\b1\move(0,0,100,100)}Hello World!`
	withMoreTags := AnalyzeDialogue(ev, asstag.Default)

	if withTag.AnimationScore < base.AnimationScore {
		t.Fatalf("animation score decreased after adding a tag: %d -> %d", base.AnimationScore, withTag.AnimationScore)
	}
	if withMoreTags.AnimationScore < withTag.AnimationScore {
		t.Fatalf("animation score decreased after adding another tag: %d -> %d", withTag.AnimationScore, withMoreTags.AnimationScore)
	}
}
