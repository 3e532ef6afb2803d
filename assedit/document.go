/*
Package assedit provides a mutable, versioned ASS script buffer with
undo/redo, pluggable commands, and a listener-dispatch event channel
(spec.md §4.4).
*/
package assedit

import (
	"errors"

	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.assedit")
}

// ErrOutOfBounds is returned by buffer operations whose Range lies strictly
// outside [0, len(text)] (spec.md §4.4).
var ErrOutOfBounds = errors.New("assedit: range out of bounds")

// Range is a half-open byte range [Start, End) into a Document's text.
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

// clamp adjusts r to fit within [0, n], returning ErrOutOfBounds only when r
// lies entirely outside that interval (spec.md §4.4: "clamp to buffer
// bounds and fail with OutOfBounds when strictly outside").
func (r Range) clamp(n int) (Range, error) {
	if r.Start > n || r.End < 0 || r.Start > r.End {
		return Range{}, ErrOutOfBounds
	}
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > n {
		r.End = n
	}
	return r, nil
}

// Document is a mutable text buffer over ASS script source, with a
// monotonically increasing version counter, an undo/redo stack, a cached
// parse (the Script; no analysis is cached), and a set of event listeners
// (spec.md §3 "Document").
//
// A Document is owned exclusively by its caller; concurrent use from
// multiple goroutines requires external serialization (spec.md §5).
type Document struct {
	text    string
	ver     uint64
	cursor  int
	selStart, selEnd int

	undo []editRecord
	redo []editRecord

	script *assparse.Script

	listeners     []*subscription
	dispatching   bool
	pendingAdd    []*subscription
	pendingRemove []string
}

// NewDocument creates a Document over initial text, parsing it once to seed
// the cached Script.
func NewDocument(text string) *Document {
	d := &Document{text: text}
	d.reparseFull()
	return d
}

// Text returns the document's current full text.
func (d *Document) Text() string { return d.text }

// LenBytes returns len(Text()).
func (d *Document) LenBytes() int { return len(d.text) }

// Version returns the document's version counter, incremented by every
// successful mutation (spec.md §8 property 8).
func (d *Document) Version() uint64 { return d.ver }

// Script returns the most recently (re)parsed Script. Never nil after
// NewDocument.
func (d *Document) Script() *assparse.Script { return d.script }

// TextRange returns the substring denoted by r, clamped to bounds.
func (d *Document) TextRange(r Range) (string, error) {
	cr, err := r.clamp(len(d.text))
	if err != nil {
		return "", err
	}
	return d.text[cr.Start:cr.End], nil
}

// Insert inserts s at byte offset pos (equivalent to Replace({pos,pos}, s)).
func (d *Document) Insert(pos int, s string) error {
	return d.replace(Range{pos, pos}, s, false)
}

// Delete removes the bytes in r.
func (d *Document) Delete(r Range) error {
	return d.replace(r, "", false)
}

// Replace substitutes r with s.
func (d *Document) Replace(r Range, s string) error {
	return d.replace(r, s, false)
}

// ReplaceRaw substitutes r with s without running the post-edit validation
// cycle (spec.md §4.4): the document's cached Script/issues are left stale
// until a subsequent Replace/Insert/Delete or an explicit Revalidate.
func (d *Document) ReplaceRaw(r Range, s string) error {
	return d.replace(r, s, true)
}

func (d *Document) replace(r Range, s string, raw bool) error {
	cr, err := r.clamp(len(d.text))
	if err != nil {
		return err
	}
	before := d.text[cr.Start:cr.End]
	newText := d.text[:cr.Start] + s + d.text[cr.End:]

	d.undo = append(d.undo, editRecord{Range: Range{cr.Start, cr.Start + len(s)}, Replaced: before, Raw: raw})
	d.redo = nil
	d.text = newText
	d.ver++
	d.cursor = cr.Start + len(s)

	if raw {
		tracer().Debugf("replace_raw at [%d,%d): validation deferred", cr.Start, cr.End)
	} else {
		d.revalidate(cr, len(s))
	}

	d.emit(DocumentEvent{Kind: EventEdited, Version: d.ver, Range: Range{cr.Start, cr.Start + len(s)}, Modifying: true})
	return nil
}

// Revalidate forces a full re-parse, clearing any staleness left by
// ReplaceRaw edits.
func (d *Document) Revalidate() {
	d.reparseFull()
	d.emit(DocumentEvent{Kind: EventValidated, Version: d.ver, Modifying: false})
}

func (d *Document) reparseFull() {
	d.script = assparse.Parse([]byte(d.text))
}

// revalidate implements spec.md §4.4's validation cycle as a full re-parse
// after every edit. The edited range is not inspected: whether or not the
// edit touched a section header or a Format: line, the whole buffer is
// re-parsed, because assparse.Parse's single-pass design has no cheaper
// "affected lines only" entry point — re-parsing the whole buffer is O(n)
// and correct, trading CPU for simplicity on scripts up to the few-MB sizes
// spec.md targets.
func (d *Document) revalidate(editedAt Range, insertedLen int) {
	_ = editedAt
	_ = insertedLen
	d.reparseFull()
}

type editRecord struct {
	Range    Range  // the range the edit occupies in the buffer AFTER applying it
	Replaced string // the text that Range's pre-image held before the edit
	Raw      bool
}

// Undo reverts the most recent edit, if any, returning whether an edit was
// reverted. Undo of a ReplaceRaw edit is itself raw (spec.md §4.4).
func (d *Document) Undo() bool {
	if len(d.undo) == 0 {
		return false
	}
	rec := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]

	cur := d.text[rec.Range.Start:rec.Range.End]
	newText := d.text[:rec.Range.Start] + rec.Replaced + d.text[rec.Range.End:]
	inverse := editRecord{Range: Range{rec.Range.Start, rec.Range.Start + len(rec.Replaced)}, Replaced: cur, Raw: rec.Raw}
	d.redo = append(d.redo, inverse)

	d.text = newText
	d.ver++
	d.cursor = rec.Range.Start + len(rec.Replaced)
	if rec.Raw {
		tracer().Debugf("undo of replace_raw: validation deferred")
	} else {
		d.reparseFull()
	}
	d.emit(DocumentEvent{Kind: EventEdited, Version: d.ver, Range: Range{rec.Range.Start, rec.Range.Start + len(rec.Replaced)}, Modifying: true})
	return true
}

// Redo re-applies the most recently undone edit, if any.
func (d *Document) Redo() bool {
	if len(d.redo) == 0 {
		return false
	}
	rec := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]

	cur := d.text[rec.Range.Start:rec.Range.End]
	newText := d.text[:rec.Range.Start] + rec.Replaced + d.text[rec.Range.End:]
	inverse := editRecord{Range: Range{rec.Range.Start, rec.Range.Start + len(rec.Replaced)}, Replaced: cur, Raw: rec.Raw}
	d.undo = append(d.undo, inverse)

	d.text = newText
	d.ver++
	d.cursor = rec.Range.Start + len(rec.Replaced)
	if rec.Raw {
		tracer().Debugf("redo of replace_raw: validation deferred")
	} else {
		d.reparseFull()
	}
	d.emit(DocumentEvent{Kind: EventEdited, Version: d.ver, Range: Range{rec.Range.Start, rec.Range.Start + len(rec.Replaced)}, Modifying: true})
	return true
}

// Cursor returns the current cursor byte offset.
func (d *Document) Cursor() int { return d.cursor }

// SetSelection sets the current selection range (does not emit EventEdited).
func (d *Document) SetSelection(r Range) error {
	cr, err := r.clamp(len(d.text))
	if err != nil {
		return err
	}
	d.selStart, d.selEnd = cr.Start, cr.End
	d.emit(DocumentEvent{Kind: EventSelectionChanged, Version: d.ver, Range: cr, Modifying: false})
	return nil
}

// Selection returns the current selection range.
func (d *Document) Selection() Range { return Range{d.selStart, d.selEnd} }
