package assparse

import "strings"

// Serialize reproduces s as ASS source text: section order, recorded
// Format lines, and row values. Fields not mutated since parsing are
// emitted from their original borrowed bytes verbatim (spec.md §4.1); this
// makes Serialize a faithful round-trip for any Script obtained from
// Parse and not subsequently edited through assedit.
func (s *Script) Serialize() string {
	var b strings.Builder
	for i, sec := range s.Sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		b.WriteString(sec.HeaderName)
		b.WriteString("]\n")
		switch sec.Kind {
		case SectionScriptInfo:
			writeKVs(&b, sec.Info.Entries)
		case SectionStyles:
			writeFormat(&b, sec.Styles.Format)
			for _, st := range sec.Styles.Styles {
				b.WriteString("Style: ")
				b.WriteString(st.RawValue)
				b.WriteByte('\n')
			}
		case SectionEvents:
			writeFormat(&b, sec.Events.Format)
			for _, ev := range sec.Events.Events {
				b.WriteString(ev.Kind.String())
				b.WriteString(": ")
				b.WriteString(ev.RawValue)
				b.WriteByte('\n')
			}
		case SectionFonts, SectionGraphics:
			key := "fontname"
			if sec.Kind == SectionGraphics {
				key = "filename"
			}
			for _, m := range sec.Media.Entries {
				b.WriteString(key)
				b.WriteString(": ")
				b.WriteString(m.Name)
				b.WriteByte('\n')
				for _, l := range m.Lines {
					b.WriteString(l)
					b.WriteByte('\n')
				}
				b.WriteString("end\n")
			}
		default:
			writeKVs(&b, sec.Unknown.Entries)
			for _, r := range sec.Unknown.Raw {
				b.WriteString(r.Value)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func writeKVs(b *strings.Builder, entries []KV) {
	for _, e := range entries {
		b.WriteString(e.Key)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteByte('\n')
	}
}

func writeFormat(b *strings.Builder, format []string) {
	if format == nil {
		return
	}
	b.WriteString("Format: ")
	b.WriteString(strings.Join(format, ", "))
	b.WriteByte('\n')
}
