/*
Package assparse tokenizes and parses ASS/SSA subtitle source into an AST
of Sections and Records whose fields borrow directly from the input buffer
(spec.md §3, §4.1). Parse never fails: unrecoverable malformations yield
empty sections and issues attached to the returned Script's Collector.
*/
package assparse

import (
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.assparse")
}

// Span is a byte range into a Script's Source, re-exported from assissue so
// callers working only with assparse don't need to import assissue for the
// common case of inspecting a record's source location.
type Span = assissue.Span

// SectionKind identifies which of the fixed section strategies produced a
// Section.
type SectionKind int

const (
	SectionScriptInfo SectionKind = iota
	SectionStyles
	SectionEvents
	SectionFonts
	SectionGraphics
	SectionUnknown
)

// String names a SectionKind for logs and diagnostics.
func (k SectionKind) String() string {
	switch k {
	case SectionScriptInfo:
		return "ScriptInfo"
	case SectionStyles:
		return "Styles"
	case SectionEvents:
		return "Events"
	case SectionFonts:
		return "Fonts"
	case SectionGraphics:
		return "Graphics"
	default:
		return "Unknown"
	}
}

// KV is a single `Key: Value` line inside the Script Info section, or any
// unrecognized section preserved as an opaque key/value store.
type KV struct {
	Key        string // borrowed, original case
	Value      string // borrowed
	KeySpan    Span
	ValueSpan  Span
	LineSpan   Span
}

// ScriptInfoSection holds the ordered key/value pairs of a [Script Info]
// block. Keys are matched case-insensitively; a duplicate key overwrites
// the value (and its ValueSpan/LineSpan) of its first occurrence's slot,
// keeping the original position, Key and KeySpan, and records a
// CodeDuplicateKey warning.
type ScriptInfoSection struct {
	Entries []KV
}

// Get looks up a key case-insensitively, returning its value and whether it
// was found.
func (s *ScriptInfoSection) Get(key string) (string, bool) {
	for _, e := range s.Entries {
		if equalFold(e.Key, key) {
			return e.Value, true
		}
	}
	return "", false
}

// StyleSchemaV4 is the canonical SSA v4 Style column schema (spec.md §3).
var StyleSchemaV4 = []string{
	"Name", "Fontname", "Fontsize",
	"PrimaryColour", "SecondaryColour", "OutlineColour", "BackColour",
	"Bold", "Italic", "Underline", "StrikeOut",
	"ScaleX", "ScaleY", "Spacing", "Angle",
	"BorderStyle", "Outline", "Shadow", "Alignment",
	"MarginL", "MarginR", "MarginV", "Encoding",
}

// StyleSchemaV4PlusExtras names the additional v4++ columns (spec.md §3);
// when present in a Format: line they are recognized in addition to
// StyleSchemaV4, never in place of it.
var StyleSchemaV4PlusExtras = []string{"MarginT", "MarginB", "RelativeTo"}

// EventSchema is the canonical Events column schema (spec.md §3). The
// "Name" column is ASS's historical name for the speaking actor.
var EventSchema = []string{
	"Layer", "Start", "End", "Style", "Name",
	"MarginL", "MarginR", "MarginV", "Effect", "Text",
}

// Style is one row of a Styles section. Known columns (StyleSchemaV4 plus,
// if the Format line names them, the v4++ extras) are available through
// Fields; any Format column not in either schema is preserved in Extra for
// round-tripping (spec.md §4.1).
type Style struct {
	LineSpan Span
	RawValue string            // borrowed; exact text after "Style:", for verbatim re-emission
	Values   []string          // trimmed, split per the section's Format order
	Fields   map[string]string // canonical schema name -> value
	Extra    map[string]string // unrecognized column name -> value
}

// Get returns a known style column's raw string value.
func (s *Style) Get(name string) (string, bool) {
	v, ok := s.Fields[canonicalStyleName(name)]
	return v, ok
}

// StylesSection holds an ordered list of Style rows under one Format.
type StylesSection struct {
	Format     []string // column names, in Format: order
	FormatSpan Span
	Styles     []Style
}

// EventKind identifies the declared type of an Events data row.
type EventKind int

const (
	Dialogue EventKind = iota
	Comment
	Picture
	Sound
	Movie
	Command
)

// String names an EventKind as it appears in ASS source.
func (k EventKind) String() string {
	switch k {
	case Dialogue:
		return "Dialogue"
	case Comment:
		return "Comment"
	case Picture:
		return "Picture"
	case Sound:
		return "Sound"
	case Movie:
		return "Movie"
	case Command:
		return "Command"
	default:
		return "Unknown"
	}
}

func eventKindFromString(s string) (EventKind, bool) {
	switch s {
	case "Dialogue":
		return Dialogue, true
	case "Comment":
		return Comment, true
	case "Picture":
		return Picture, true
	case "Sound":
		return Sound, true
	case "Movie":
		return Movie, true
	case "Command":
		return Command, true
	default:
		return 0, false
	}
}

// Event is one row of an Events section.
type Event struct {
	Kind     EventKind
	KindSpan Span
	LineSpan Span
	RawValue string // borrowed; exact text after "Kind:"
	Values   []string
	Fields   map[string]string
	Extra    map[string]string
	TextSpan Span // span of the Text column specifically, for editors/renderer
}

// Get returns a known event column's raw string value.
func (e *Event) Get(name string) (string, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// Text returns the event's dialogue text column (empty for non-text rows).
func (e *Event) Text() string {
	return e.Fields["Text"]
}

// EventsSection holds an ordered list of Event rows under one Format.
type EventsSection struct {
	Format     []string
	FormatSpan Span
	Events     []Event
}

// MediaEntry is one named, uuencoded blob inside a Fonts or Graphics
// section; decoding is deferred (spec.md §4.1).
type MediaEntry struct {
	Name     string // from "fontname:"/"filename:"
	NameSpan Span
	Lines    []string // raw uuencoded body lines, borrowed
	BodySpan Span
}

// MediaSection holds the ordered entries of a Fonts or Graphics section.
type MediaSection struct {
	Entries []MediaEntry
}

// UnknownSection preserves an unrecognized `[Header]` block as an opaque,
// ordered key/value store (spec.md §4.1).
type UnknownSection struct {
	Entries []KV
	// Raw carries any line that was not a recognized `Key: Value` form, so
	// that round-trip can reproduce it. Blank lines and `;`/`!:` comment
	// lines are dropped by the parser and never reach Raw.
	Raw []KV
}

// Section is one `[Header]` block of a Script. Exactly one of Info,
// Styles, Events, Media, Unknown is non-nil, selected by Kind.
type Section struct {
	Kind       SectionKind
	HeaderName string // as written, e.g. "V4+ Styles"
	HeaderSpan Span

	Info    *ScriptInfoSection
	Styles  *StylesSection
	Events  *EventsSection
	Media   *MediaSection
	Unknown *UnknownSection
}

// Script is the parsed form of an ASS source buffer: an ordered list of
// Sections plus an out-of-band issue list. Every borrowed string in the
// tree is a substring of Source's backing array, sharing memory with it
// rather than copying (spec.md §3's zero-copy invariant) — Go strings
// slice their backing array without allocation, so Source must outlive
// the Script.
type Script struct {
	Source    string
	Sections  []Section
	Collector *assissue.Collector
}

// Issues returns all parse issues recorded while building this Script.
func (s *Script) Issues() []assissue.Issue {
	return s.Collector.Issues()
}

// ScriptInfo returns the first Script Info section, if any.
func (s *Script) ScriptInfo() *ScriptInfoSection {
	for i := range s.Sections {
		if s.Sections[i].Kind == SectionScriptInfo {
			return s.Sections[i].Info
		}
	}
	return nil
}

// StylesSections returns every Styles section (normally zero or one).
func (s *Script) StylesSections() []*StylesSection {
	var out []*StylesSection
	for i := range s.Sections {
		if s.Sections[i].Kind == SectionStyles {
			out = append(out, s.Sections[i].Styles)
		}
	}
	return out
}

// EventsSections returns every Events section (normally zero or one).
func (s *Script) EventsSections() []*EventsSection {
	var out []*EventsSection
	for i := range s.Sections {
		if s.Sections[i].Kind == SectionEvents {
			out = append(out, s.Sections[i].Events)
		}
	}
	return out
}

// AllEvents flattens every Events section's rows into one slice, in
// section-then-row order.
func (s *Script) AllEvents() []*Event {
	var out []*Event
	for _, es := range s.EventsSections() {
		for i := range es.Events {
			out = append(out, &es.Events[i])
		}
	}
	return out
}

// AllStyles flattens every Styles section's rows into one slice.
func (s *Script) AllStyles() []*Style {
	var out []*Style
	for _, ss := range s.StylesSections() {
		for i := range ss.Styles {
			out = append(out, &ss.Styles[i])
		}
	}
	return out
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func canonicalStyleName(name string) string {
	for _, n := range StyleSchemaV4 {
		if equalFold(n, name) {
			return n
		}
	}
	for _, n := range StyleSchemaV4PlusExtras {
		if equalFold(n, name) {
			return n
		}
	}
	return name
}
