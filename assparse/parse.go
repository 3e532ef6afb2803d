package assparse

import (
	"strings"

	"github.com/npillmayer/assgo/assissue"
)

// Parse tokenizes and parses ASS/SSA source bytes into a Script. Parse
// never fails: malformed or truncated input simply yields fewer or empty
// sections, with issues describing what went wrong attached to the
// returned Script's Collector (spec.md §4.1, §7).
func Parse(data []byte) *Script {
	src := string(data) // the one deliberate copy: everything after this slices src directly.
	col := &assissue.Collector{}
	script := &Script{Source: src, Collector: col}

	b := &builder{src: src, col: col, script: script}
	for _, ln := range scanLines(src) {
		b.line(ln.Span)
	}
	b.finalize()
	tracer().Debugf("parsed %d bytes into %d sections, %d issues", len(src), len(script.Sections), len(col.Issues()))
	return script
}

// builder holds the section-parser's running state machine (spec.md
// §4.1's "current-section state variable").
type builder struct {
	src    string
	col    *assissue.Collector
	script *Script

	started     bool
	kind        SectionKind
	headerName  string
	headerSpan  Span

	info    *ScriptInfoSection
	styles  *StylesSection
	events  *EventsSection
	media   *MediaSection
	unknown *UnknownSection

	mediaPending    *MediaEntry
	mediaTerminated bool
}

func (b *builder) line(sp Span) {
	trimSp, trimmed := trimSpan(b.src, sp)
	if trimmed == "" {
		b.closeMediaEntry(sp)
		return
	}
	if strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "!:") {
		if b.started {
			b.col.Add(assissue.CodeMalformedHeader, assissue.Info, trimSp, "comment line inside section %q", b.headerName)
		}
		return
	}
	if name, ok := splitHeader(trimmed); ok {
		b.startSection(name, trimSp)
		return
	}
	if !b.started {
		b.col.Add(assissue.CodeMalformedHeader, assissue.Warning, trimSp, "content before any section header")
		return
	}
	switch b.kind {
	case SectionScriptInfo:
		b.scriptInfoLine(sp)
	case SectionStyles:
		b.stylesLine(sp)
	case SectionEvents:
		b.eventsLine(sp)
	case SectionFonts, SectionGraphics:
		b.mediaLine(sp)
	default:
		b.unknownLine(sp)
	}
}

func (b *builder) startSection(name string, headerSpan Span) {
	b.finalize()
	b.started = true
	b.headerName = name
	b.headerSpan = headerSpan
	b.kind = classifySection(name)
	b.mediaPending = nil
	b.mediaTerminated = true

	switch b.kind {
	case SectionScriptInfo:
		b.info = &ScriptInfoSection{}
	case SectionStyles:
		b.styles = &StylesSection{}
	case SectionEvents:
		b.events = &EventsSection{}
	case SectionFonts, SectionGraphics:
		b.media = &MediaSection{}
	default:
		b.unknown = &UnknownSection{}
		b.col.Add(assissue.CodeUnknownSection, assissue.Warning, headerSpan, "unrecognized section %q preserved as opaque key/value store", name)
	}
}

// finalize closes out whatever section is currently being built and
// appends it to the Script.
func (b *builder) finalize() {
	if !b.started {
		return
	}
	if b.mediaPending != nil {
		if !b.mediaTerminated {
			b.col.Add(assissue.CodeEmbeddedBinaryTruncate, assissue.Warning, b.mediaPending.NameSpan,
				"media entry %q not terminated by 'end' or a blank line", b.mediaPending.Name)
		}
		b.media.Entries = append(b.media.Entries, *b.mediaPending)
		b.mediaPending = nil
	}
	sec := Section{Kind: b.kind, HeaderName: b.headerName, HeaderSpan: b.headerSpan}
	switch b.kind {
	case SectionScriptInfo:
		sec.Info = b.info
	case SectionStyles:
		sec.Styles = b.styles
	case SectionEvents:
		sec.Events = b.events
	case SectionFonts, SectionGraphics:
		sec.Media = b.media
	default:
		sec.Unknown = b.unknown
	}
	b.script.Sections = append(b.script.Sections, sec)
	b.started = false
}

func classifySection(name string) SectionKind {
	switch {
	case equalFold(name, "Script Info"):
		return SectionScriptInfo
	case equalFold(name, "V4 Styles"), equalFold(name, "V4+ Styles"), equalFold(name, "V4++ Styles"):
		return SectionStyles
	case equalFold(name, "Events"):
		return SectionEvents
	case equalFold(name, "Fonts"):
		return SectionFonts
	case equalFold(name, "Graphics"):
		return SectionGraphics
	default:
		return SectionUnknown
	}
}

func (b *builder) scriptInfoLine(sp Span) {
	keySpan, valueSpan, ok := splitKeyValue(b.src, sp)
	if !ok {
		b.col.Add(assissue.CodeMalformedHeader, assissue.Warning, sp, "malformed key/value line in Script Info")
		return
	}
	key := b.src[keySpan.Start:keySpan.End]
	value := b.src[valueSpan.Start:valueSpan.End]
	for i := range b.info.Entries {
		if equalFold(b.info.Entries[i].Key, key) {
			b.col.Add(assissue.CodeDuplicateKey, assissue.Warning, keySpan, "duplicate Script Info key %q, keeping last value", key)
			b.info.Entries[i].Value = value
			b.info.Entries[i].ValueSpan = valueSpan
			b.info.Entries[i].LineSpan = sp
			return
		}
	}
	b.info.Entries = append(b.info.Entries, KV{Key: key, Value: value, KeySpan: keySpan, ValueSpan: valueSpan, LineSpan: sp})
}

func (b *builder) stylesLine(sp Span) {
	keySpan, valueSpan, ok := splitKeyValue(b.src, sp)
	if !ok {
		b.col.Add(assissue.CodeMalformedHeader, assissue.Warning, sp, "malformed line in Styles section")
		return
	}
	key := b.src[keySpan.Start:keySpan.End]
	value := b.src[valueSpan.Start:valueSpan.End]
	switch {
	case equalFold(key, "Format"):
		b.styles.Format = splitCommaTrim(value)
		b.styles.FormatSpan = valueSpan
	case equalFold(key, "Style"):
		format := b.styles.Format
		if format == nil {
			b.col.Add(assissue.CodeMissingFormat, assissue.Warning, sp, "Style row before Format:, using default v4 schema")
			format = StyleSchemaV4
		}
		style := buildStyleRow(b.col, sp, valueSpan, value, format)
		b.styles.Styles = append(b.styles.Styles, style)
	default:
		b.col.Add(assissue.CodeMalformedHeader, assissue.Warning, keySpan, "unrecognized row key %q in Styles section", key)
	}
}

func buildStyleRow(col *assissue.Collector, lineSpan, valueSpan Span, raw string, format []string) Style {
	values := splitFormatLast(raw, len(format))
	if len(values) != len(format) {
		col.Add(assissue.CodeColumnCountMismatch, assissue.Warning, valueSpan,
			"style row has %d fields, format declares %d", len(values), len(format))
	}
	fields := make(map[string]string, len(format))
	extra := map[string]string{}
	for i, name := range format {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		canon := canonicalStyleName(name)
		if isKnownStyleColumn(canon) {
			fields[canon] = v
		} else {
			extra[name] = v
		}
	}
	return Style{LineSpan: lineSpan, RawValue: raw, Values: values, Fields: fields, Extra: extra}
}

func isKnownStyleColumn(name string) bool {
	for _, n := range StyleSchemaV4 {
		if n == name {
			return true
		}
	}
	for _, n := range StyleSchemaV4PlusExtras {
		if n == name {
			return true
		}
	}
	return false
}

func (b *builder) eventsLine(sp Span) {
	keySpan, valueSpan, ok := splitKeyValue(b.src, sp)
	if !ok {
		b.col.Add(assissue.CodeMalformedHeader, assissue.Warning, sp, "malformed line in Events section")
		return
	}
	key := b.src[keySpan.Start:keySpan.End]
	value := b.src[valueSpan.Start:valueSpan.End]
	if equalFold(key, "Format") {
		b.events.Format = splitCommaTrim(value)
		b.events.FormatSpan = valueSpan
		return
	}
	kind, ok := eventKindFromString(key)
	if !ok {
		b.col.Add(assissue.CodeBadEventKind, assissue.Warning, keySpan, "unrecognized event kind %q", key)
		return
	}
	format := b.events.Format
	if format == nil {
		b.col.Add(assissue.CodeMissingFormat, assissue.Warning, sp, "event row before Format:, using default schema")
		format = EventSchema
	}
	event := buildEventRow(b.col, sp, valueSpan, value, format, kind, keySpan)
	b.events.Events = append(b.events.Events, event)
}

func buildEventRow(col *assissue.Collector, lineSpan, valueSpan Span, raw string, format []string, kind EventKind, kindSpan Span) Event {
	values, spans := splitFormatLastSpans(raw, len(format), valueSpan.Start)
	if len(values) != len(format) {
		col.Add(assissue.CodeColumnCountMismatch, assissue.Warning, valueSpan,
			"event row has %d fields, format declares %d", len(values), len(format))
	}
	fields := make(map[string]string, len(format))
	extra := map[string]string{}
	textSpan := Span{}
	for i, name := range format {
		v := ""
		var fieldSpan Span
		if i < len(values) {
			v = values[i]
			fieldSpan = spans[i]
		}
		if equalFold(name, "Text") {
			fields["Text"] = v
			textSpan = fieldSpan
			continue
		}
		if isKnownEventColumn(name) {
			fields[canonicalEventName(name)] = v
		} else {
			extra[name] = v
		}
	}
	return Event{
		Kind: kind, KindSpan: kindSpan, LineSpan: lineSpan, RawValue: raw,
		Values: values, Fields: fields, Extra: extra, TextSpan: textSpan,
	}
}

func isKnownEventColumn(name string) bool {
	for _, n := range EventSchema {
		if equalFold(n, name) {
			return true
		}
	}
	return false
}

func canonicalEventName(name string) string {
	for _, n := range EventSchema {
		if equalFold(n, name) {
			return n
		}
	}
	return name
}

func (b *builder) mediaLine(sp Span) {
	keySpan, valueSpan, ok := splitKeyValue(b.src, sp)
	entryKey := "fontname"
	if b.kind == SectionGraphics {
		entryKey = "filename"
	}
	if ok && equalFold(b.src[keySpan.Start:keySpan.End], entryKey) {
		b.closeMediaEntry(sp)
		name := b.src[valueSpan.Start:valueSpan.End]
		b.mediaPending = &MediaEntry{Name: name, NameSpan: valueSpan}
		b.mediaTerminated = false
		return
	}
	_, trimmed := trimSpan(b.src, sp)
	if trimmed == "end" {
		if b.mediaPending != nil {
			b.mediaPending.BodySpan = Span{Start: b.mediaPending.NameSpan.End, End: sp.End}
			b.media.Entries = append(b.media.Entries, *b.mediaPending)
			b.mediaPending = nil
		}
		b.mediaTerminated = true
		return
	}
	if b.mediaPending != nil {
		b.mediaPending.Lines = append(b.mediaPending.Lines, trimmed)
	}
}

// closeMediaEntry finalizes a pending Fonts/Graphics entry when a blank
// line or a new entry header is encountered without an explicit "end".
func (b *builder) closeMediaEntry(boundary Span) {
	if b.mediaPending == nil {
		return
	}
	b.mediaPending.BodySpan = Span{Start: b.mediaPending.NameSpan.End, End: boundary.Start}
	b.media.Entries = append(b.media.Entries, *b.mediaPending)
	b.mediaPending = nil
	b.mediaTerminated = true
}

func (b *builder) unknownLine(sp Span) {
	keySpan, valueSpan, ok := splitKeyValue(b.src, sp)
	if !ok {
		_, trimmed := trimSpan(b.src, sp)
		b.unknown.Raw = append(b.unknown.Raw, KV{Value: trimmed, LineSpan: sp})
		return
	}
	key := b.src[keySpan.Start:keySpan.End]
	value := b.src[valueSpan.Start:valueSpan.End]
	b.unknown.Entries = append(b.unknown.Entries, KV{Key: key, Value: value, KeySpan: keySpan, ValueSpan: valueSpan, LineSpan: sp})
}
