package assparse

import "strings"

// lineRec is one physical line of source, located by Span (the line's
// content, excluding its terminator).
type lineRec struct {
	Span Span
}

const bom = "\xEF\xBB\xBF"

// scanLines splits src into lines, recognizing LF, CRLF and lone CR as
// terminators (spec.md §4.1: "CRLF and CR are normalized to LF for line
// scanning only; original byte offsets are preserved in spans"). Rather
// than rewriting the buffer, scanLines simply treats all three sequences
// as equivalent terminators while walking the original bytes, so every
// returned Span already refers to untouched source offsets.
func scanLines(src string) []lineRec {
	start := 0
	if strings.HasPrefix(src, bom) {
		start = len(bom)
	}
	var lines []lineRec
	i := start
	lineStart := start
	for i < len(src) {
		c := src[i]
		if c == '\n' {
			lines = append(lines, lineRec{Span{Start: lineStart, End: i}})
			i++
			lineStart = i
			continue
		}
		if c == '\r' {
			end := i
			i++
			if i < len(src) && src[i] == '\n' {
				i++
			}
			lines = append(lines, lineRec{Span{Start: lineStart, End: end}})
			lineStart = i
			continue
		}
		i++
	}
	if lineStart < len(src) {
		lines = append(lines, lineRec{Span{Start: lineStart, End: len(src)}})
	}
	return lines
}

// trimSpan trims ASCII whitespace off both ends of a Span into src,
// returning the narrowed Span and its content.
func trimSpan(src string, sp Span) (Span, string) {
	s, e := sp.Start, sp.End
	for s < e && isSpaceByte(src[s]) {
		s++
	}
	for e > s && isSpaceByte(src[e-1]) {
		e--
	}
	return Span{Start: s, End: e}, src[s:e]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

// splitHeader recognizes a trimmed line of the form "[Name]".
func splitHeader(trimmed string) (string, bool) {
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return "", false
	}
	return strings.TrimSpace(trimmed[1 : len(trimmed)-1]), true
}

// splitKeyValue finds the first ':' in content (relative span sp) and
// returns trimmed key/value spans. ok is false if there is no ':' or the
// key half is empty.
func splitKeyValue(src string, sp Span) (keySpan, valueSpan Span, ok bool) {
	content := src[sp.Start:sp.End]
	idx := strings.IndexByte(content, ':')
	if idx < 0 {
		return Span{}, Span{}, false
	}
	rawKey := Span{Start: sp.Start, End: sp.Start + idx}
	rawValue := Span{Start: sp.Start + idx + 1, End: sp.End}
	keySpan, key := trimSpan(src, rawKey)
	if key == "" {
		return Span{}, Span{}, false
	}
	valueSpan, _ = trimSpan(src, rawValue)
	return keySpan, valueSpan, true
}

// splitFormatLast splits value into at most n comma-separated fields,
// trimming each; the last field absorbs any remaining commas (spec.md
// §4.1 rule 2), which is how dialogue text preserves embedded commas.
func splitFormatLast(value string, n int) []string {
	if n <= 0 {
		if value == "" {
			return nil
		}
		return []string{strings.TrimSpace(value)}
	}
	fields := make([]string, 0, n)
	rest := value
	for len(fields) < n-1 {
		idx := strings.IndexByte(rest, ',')
		if idx < 0 {
			break
		}
		fields = append(fields, strings.TrimSpace(rest[:idx]))
		rest = rest[idx+1:]
	}
	fields = append(fields, strings.TrimSpace(rest))
	return fields
}

// splitFormatLastSpans behaves like splitFormatLast but additionally
// returns each field's trimmed Span relative to base (the absolute offset
// of value[0]), so callers needing exact source locations (e.g. an
// event's Text column) don't have to re-search the row for its value.
func splitFormatLastSpans(value string, n int, base int) ([]string, []Span) {
	if n <= 0 {
		if value == "" {
			return nil, nil
		}
		sp, s := trimSpan(value, Span{Start: 0, End: len(value)})
		return []string{s}, []Span{{Start: base + sp.Start, End: base + sp.End}}
	}
	fields := make([]string, 0, n)
	spans := make([]Span, 0, n)
	restStart := 0
	rest := value
	for len(fields) < n-1 {
		idx := strings.IndexByte(rest, ',')
		if idx < 0 {
			break
		}
		raw := Span{Start: restStart, End: restStart + idx}
		sp, s := trimSpan(value, raw)
		fields = append(fields, s)
		spans = append(spans, Span{Start: base + sp.Start, End: base + sp.End})
		rest = rest[idx+1:]
		restStart += idx + 1
	}
	raw := Span{Start: restStart, End: len(value)}
	sp, s := trimSpan(value, raw)
	fields = append(fields, s)
	spans = append(spans, Span{Start: base + sp.Start, End: base + sp.End})
	return fields, spans
}

func splitCommaTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
