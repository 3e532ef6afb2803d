package assparse

import (
	"strings"
	"testing"
)

const s1Source = `[Script Info]
Title: Test

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:00.00,0:00:05.00,Default,,0,0,0,,Hello World!
`

func TestBasicParse(t *testing.T) {
	script := Parse([]byte(s1Source))
	if len(script.Issues()) != 0 {
		t.Fatalf("expected no issues, got %v", script.Issues())
	}
	info := script.ScriptInfo()
	if info == nil {
		t.Fatal("expected Script Info section")
	}
	title, ok := info.Get("Title")
	if !ok || title != "Test" {
		t.Fatalf("Title = %q, %v", title, ok)
	}
	styles := script.AllStyles()
	if len(styles) != 1 {
		t.Fatalf("expected 1 style, got %d", len(styles))
	}
	events := script.AllEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Kind != Dialogue {
		t.Fatalf("expected Dialogue kind, got %v", events[0].Kind)
	}
	if events[0].Text() != "Hello World!" {
		t.Fatalf("Text = %q", events[0].Text())
	}
}

func TestZeroCopySpansLieWithinSource(t *testing.T) {
	script := Parse([]byte(s1Source))
	check := func(sp Span) {
		if sp.Start < 0 || sp.End > len(script.Source) || sp.Start > sp.End {
			t.Fatalf("span %+v out of bounds for source of length %d", sp, len(script.Source))
		}
	}
	for _, ev := range script.AllEvents() {
		check(ev.LineSpan)
		check(ev.TextSpan)
		if script.Source[ev.TextSpan.Start:ev.TextSpan.End] != ev.Text() {
			t.Fatalf("TextSpan does not locate Text: %q != %q", script.Source[ev.TextSpan.Start:ev.TextSpan.End], ev.Text())
		}
	}
	for _, st := range script.AllStyles() {
		check(st.LineSpan)
	}
}

func TestRoundTrip(t *testing.T) {
	script := Parse([]byte(s1Source))
	out := script.Serialize()
	reparsed := Parse([]byte(out))
	if len(reparsed.AllEvents()) != len(script.AllEvents()) {
		t.Fatalf("round trip changed event count: %d != %d", len(reparsed.AllEvents()), len(script.AllEvents()))
	}
	if len(reparsed.AllStyles()) != len(script.AllStyles()) {
		t.Fatalf("round trip changed style count")
	}
	if reparsed.AllEvents()[0].Text() != script.AllEvents()[0].Text() {
		t.Fatalf("round trip changed event text")
	}
}

func TestUnknownSectionPreserved(t *testing.T) {
	src := "[Aegisub Project Garbage]\nLast Style Storage: Default\n"
	script := Parse([]byte(src))
	if len(script.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(script.Sections))
	}
	sec := script.Sections[0]
	if sec.Kind != SectionUnknown {
		t.Fatalf("expected SectionUnknown, got %v", sec.Kind)
	}
	v, ok := sec.Unknown.Entries[0], true
	if !ok || v.Key != "Last Style Storage" || v.Value != "Default" {
		t.Fatalf("unexpected entry: %+v", v)
	}
	issues := script.Issues()
	found := false
	for _, iss := range issues {
		if iss.Code == "unknown_section" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unknown_section issue")
	}
}

func TestFontsEntryDecodedLater(t *testing.T) {
	src := "[Fonts]\nfontname: test.ttf\n#0V%T\nend\n"
	script := Parse([]byte(src))
	if len(script.Sections) != 1 || script.Sections[0].Kind != SectionFonts {
		t.Fatalf("expected one Fonts section")
	}
	entries := script.Sections[0].Media.Entries
	if len(entries) != 1 {
		t.Fatalf("expected 1 media entry, got %d", len(entries))
	}
	if entries[0].Name != "test.ttf" {
		t.Fatalf("Name = %q", entries[0].Name)
	}
	if len(entries[0].Lines) != 1 || entries[0].Lines[0] != "#0V%T" {
		t.Fatalf("Lines = %v", entries[0].Lines)
	}
}

func TestCRLFNormalizedForScanningOnly(t *testing.T) {
	src := "[Script Info]\r\nTitle: CRLF\r\n"
	script := Parse([]byte(src))
	info := script.ScriptInfo()
	title, ok := info.Get("Title")
	if !ok || title != "CRLF" {
		t.Fatalf("Title = %q, %v", title, ok)
	}
}

func TestMissingFormatUsesDefaultAndWarns(t *testing.T) {
	src := "[Events]\nDialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,Hi\n"
	script := Parse([]byte(src))
	if len(script.AllEvents()) != 1 {
		t.Fatalf("expected 1 event")
	}
	found := false
	for _, iss := range script.Issues() {
		if iss.Code == "missing_format" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected missing_format issue")
	}
}

func TestEmbeddedCommasPreservedInText(t *testing.T) {
	src := strings.Replace(s1Source, "Hello World!", "Hello, World, again!", 1)
	script := Parse([]byte(src))
	if script.AllEvents()[0].Text() != "Hello, World, again!" {
		t.Fatalf("Text = %q", script.AllEvents()[0].Text())
	}
}
