package assanalysis

import (
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/assgo/asstag"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/width"
)

// tagWeight assigns each override tag to one of spec.md §4.3's animation-
// score categories; tags outside every named category fall to "unknown".
func tagWeight(name string) int {
	switch name {
	case "b", "i", "u", "s", "c", "1c", "2c", "3c", "4c", "1a", "alpha",
		"bord", "shad", "blur", "be", "fn", "fs":
		return 1 // simple formatting
	case "pos":
		return 2 // positioning
	case "move":
		return 4
	case "t":
		return 5
	case "clip", "iclip":
		return 3
	case "frx", "fry", "frz", "fr":
		return 3 // rotations
	case "fscx", "fscy":
		return 2 // scales
	case "fsp", "fad", "fade":
		return 3 // spacing/fade
	case "p":
		return 8 // drawing
	default:
		return 2 // unknown, including karaoke k/kf/ko/kt and pbo/r
	}
}

// charCountBonus and tagCountBonus implement spec.md §4.3's "tiered
// char-count bonus" / "tiered tag-count bonus" contributions to the overall
// complexity score; thresholds are this implementation's choice (spec.md
// leaves the exact tiers unspecified).
func charCountBonus(n int) int {
	switch {
	case n > 200:
		return 15
	case n > 80:
		return 8
	case n > 20:
		return 3
	default:
		return 0
	}
}

func tagCountBonus(n int) int {
	switch {
	case n > 10:
		return 15
	case n > 5:
		return 8
	case n > 1:
		return 3
	default:
		return 0
	}
}

// DialogueInfo is the per-Event analysis result: its tag inventory,
// animation and overall complexity scores, and Unicode-shaping hints
// (spec.md §4.3, §4.5).
type DialogueInfo struct {
	Event *assparse.Event
	Text  string // plain text, tags stripped (asstag.PlainText)

	TagNames        []string // distinct tag names present, in first-seen order
	TagCount        int      // total tag instances, including repeats
	AnimationScore  int      // 0-10
	ComplexityScore int      // 0-100, overall

	HasBidiText       bool
	HasComplexUnicode bool
	Direction         bidi.Direction // paragraph direction of Text, for layout
	HasFullwidthRunes bool           // East Asian wide/fullwidth glyphs present, for advance-width fallback

	Issues []assissue.Issue
}

// AnalyzeDialogue tokenizes an Event's text against reg and scores it
// (spec.md §4.3). A nil reg uses asstag.Default.
func AnalyzeDialogue(ev *assparse.Event, reg *asstag.Registry) *DialogueInfo {
	if reg == nil {
		reg = asstag.Default
	}
	text := ev.Text()
	di := &DialogueInfo{Event: ev, Text: asstag.PlainText(text)}
	col := &assissue.Collector{}

	tokens, tcol := asstag.Tokenize(text, reg)
	col.Merge(tcol)

	weighted := 0
	seen := map[string]bool{}
	for _, tok := range tokens {
		if tok.Kind != asstag.TokenBlock {
			continue
		}
		for _, tag := range tok.Tags {
			di.TagCount++
			if !seen[tag.Name] {
				di.TagNames = append(di.TagNames, tag.Name)
				seen[tag.Name] = true
			}
			if tag.Handler == nil {
				col.Add(assissue.CodeInvalidTag, assissue.Warning, tag.NameSpan, "unknown override tag %q", tag.Name)
			}
			weighted += tagWeight(tag.Name)
		}
	}
	if weighted > 10 {
		weighted = 10
	}
	di.AnimationScore = weighted

	di.HasBidiText = hasBidiText(di.Text)
	di.HasComplexUnicode = hasComplexUnicode(di.Text)
	di.Direction = textDirection(di.Text)
	di.HasFullwidthRunes = HasFullwidthRunes(di.Text)

	complexity := 5*weighted + charCountBonus(len(di.Text)) + tagCountBonus(di.TagCount)
	if complexity > 100 {
		complexity = 100
	}
	di.ComplexityScore = complexity
	di.Issues = col.Issues()
	return di
}

// hasBidiText reports whether s contains a character from the Arabic or
// Hebrew blocks named in spec.md §4.3.
func hasBidiText(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x0600 && r <= 0x06FF: // Arabic
			return true
		case r >= 0x0750 && r <= 0x077F: // Arabic Supplement
			return true
		case r >= 0x08A0 && r <= 0x08FF: // Arabic Extended-A
			return true
		case r >= 0x0590 && r <= 0x05FF: // Hebrew
			return true
		}
	}
	return false
}

// hasComplexUnicode reports whether s contains a codepoint above U+00FF, or
// a control/format character (C0, DEL, C1, ZWJ/ZWNJ, U+2060-U+206F), per
// spec.md §4.3.
func hasComplexUnicode(s string) bool {
	for _, r := range s {
		switch {
		case r > 0x00FF:
			return true
		case r <= 0x1F, r == 0x7F: // C0 controls, DEL
			return true
		case r >= 0x80 && r <= 0x9F: // C1 controls
			return true
		case r == 0x200C || r == 0x200D: // ZWNJ, ZWJ
			return true
		case r >= 0x2060 && r <= 0x206F: // format characters
			return true
		}
	}
	return false
}

// HasFullwidthRunes reports whether s contains an East Asian wide or
// fullwidth rune (UAX #11), a signal the renderer's advance-width fallback
// uses to double a glyph's cell width when no font metrics are available.
func HasFullwidthRunes(s string) bool {
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			return true
		}
	}
	return false
}

// textDirection resolves s's overall paragraph direction by tallying each
// rune's bidi class, grounded on the teacher's own use of
// golang.org/x/text/unicode/bidi for shaping plans — here the direction is
// derived from the text rather than fixed ahead of time.
func textDirection(s string) bidi.Direction {
	var left, right int
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			left++
		case bidi.R, bidi.AL:
			right++
		}
	}
	switch {
	case left > 0 && right > 0:
		return bidi.Mixed
	case right > 0:
		return bidi.RightToLeft
	case left > 0:
		return bidi.LeftToRight
	default:
		return bidi.Neutral
	}
}
