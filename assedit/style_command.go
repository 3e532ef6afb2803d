package assedit

import (
	"fmt"
	"strings"

	"github.com/npillmayer/assgo/assparse"
)

// rowValueSpan locates the value portion of a "Key: value" row line within
// text: the span after the first ':', with leading/trailing ASCII
// whitespace trimmed. lineSpan is the row's full untrimmed line span.
func rowValueSpan(text string, lineSpan Range) Range {
	i := lineSpan.Start
	for i < lineSpan.End && text[i] != ':' {
		i++
	}
	i++ // skip ':'
	for i < lineSpan.End && isRowSpace(text[i]) {
		i++
	}
	end := lineSpan.End
	for end > i && isRowSpace(text[end-1]) {
		end--
	}
	return Range{i, end}
}

func isRowSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

// findStylesSection returns the first Styles section's parsed form and the
// byte offset just past its Format: line, where a new Style: row may be
// inserted.
func findStylesSection(d *Document) (*assparse.StylesSection, int, error) {
	for i := range d.script.Sections {
		sec := &d.script.Sections[i]
		if sec.Kind == assparse.SectionStyles {
			insertAt := sec.Styles.FormatSpan.End
			for insertAt < len(d.text) && d.text[insertAt] != '\n' {
				insertAt++
			}
			if insertAt < len(d.text) {
				insertAt++ // past the newline
			}
			return sec.Styles, insertAt, nil
		}
	}
	return nil, 0, fmt.Errorf("assedit: document has no Styles section")
}

func findStyleByName(ss *assparse.StylesSection, name string) (*assparse.Style, bool) {
	for i := range ss.Styles {
		if v, ok := ss.Styles[i].Get("Name"); ok && v == name {
			return &ss.Styles[i], true
		}
	}
	return nil, false
}

// CreateStyleCommand inserts a new Style: row with the given column values,
// in the order of the section's existing Format (spec.md §4.4's "style
// create").
type CreateStyleCommand struct {
	Values map[string]string
}

func (c *CreateStyleCommand) Execute(d *Document) (CommandResult, error) {
	ss, insertAt, err := findStylesSection(d)
	if err != nil {
		return CommandResult{}, err
	}
	if _, exists := findStyleByName(ss, c.Values["Name"]); exists {
		return CommandResult{}, fmt.Errorf("assedit: style %q already exists", c.Values["Name"])
	}
	cols := make([]string, len(ss.Format))
	for i, col := range ss.Format {
		cols[i] = c.Values[col]
	}
	line := "Style: " + strings.Join(cols, ",") + "\n"
	if err := d.Insert(insertAt, line); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{
		Success: true, Changed: Range{insertAt, insertAt + len(line)},
		NewCursor: insertAt + len(line), Description: fmt.Sprintf("create style %q", c.Values["Name"]),
	}, nil
}

// EditStyleCommand replaces one column's value on an existing style row
// (spec.md §4.4's "style edit").
type EditStyleCommand struct {
	Name   string
	Column string
	Value  string
}

func (c *EditStyleCommand) Execute(d *Document) (CommandResult, error) {
	ss, _, err := findStylesSection(d)
	if err != nil {
		return CommandResult{}, err
	}
	style, ok := findStyleByName(ss, c.Name)
	if !ok {
		return CommandResult{}, fmt.Errorf("assedit: no style named %q", c.Name)
	}
	colIdx := -1
	for i, col := range ss.Format {
		if strings.EqualFold(col, c.Column) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return CommandResult{}, fmt.Errorf("assedit: style %q has no column %q", c.Name, c.Column)
	}
	values := append([]string(nil), style.Values...)
	for len(values) <= colIdx {
		values = append(values, "")
	}
	values[colIdx] = c.Value
	newRaw := strings.Join(values, ",")
	valueRange := rowValueSpan(d.text, Range{style.LineSpan.Start, style.LineSpan.End})
	if err := d.Replace(valueRange, newRaw); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{
		Success: true, Changed: style.LineSpan, NewCursor: style.LineSpan.Start,
		Description: fmt.Sprintf("set %s.%s = %q", c.Name, c.Column, c.Value),
	}, nil
}

// DeleteStyleCommand removes a Style: row by name (spec.md §4.4's "style
// delete").
type DeleteStyleCommand struct {
	Name string
}

func (c *DeleteStyleCommand) Execute(d *Document) (CommandResult, error) {
	ss, _, err := findStylesSection(d)
	if err != nil {
		return CommandResult{}, err
	}
	style, ok := findStyleByName(ss, c.Name)
	if !ok {
		return CommandResult{}, fmt.Errorf("assedit: no style named %q", c.Name)
	}
	end := style.LineSpan.End
	if end < len(d.text) && d.text[end] == '\n' {
		end++
	}
	r := Range{style.LineSpan.Start, end}
	if err := d.Delete(r); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Success: true, Changed: Range{r.Start, r.Start}, NewCursor: r.Start, Description: fmt.Sprintf("delete style %q", c.Name)}, nil
}

// CloneStyleCommand duplicates an existing style under a new name (spec.md
// §4.4's "style clone").
type CloneStyleCommand struct {
	SourceName string
	NewName    string
}

func (c *CloneStyleCommand) Execute(d *Document) (CommandResult, error) {
	ss, insertAt, err := findStylesSection(d)
	if err != nil {
		return CommandResult{}, err
	}
	src, ok := findStyleByName(ss, c.SourceName)
	if !ok {
		return CommandResult{}, fmt.Errorf("assedit: no style named %q", c.SourceName)
	}
	if _, exists := findStyleByName(ss, c.NewName); exists {
		return CommandResult{}, fmt.Errorf("assedit: style %q already exists", c.NewName)
	}
	values := append([]string(nil), src.Values...)
	nameIdx := -1
	for i, col := range ss.Format {
		if strings.EqualFold(col, "Name") {
			nameIdx = i
			break
		}
	}
	if nameIdx >= 0 && nameIdx < len(values) {
		values[nameIdx] = c.NewName
	}
	line := "Style: " + strings.Join(values, ",") + "\n"
	if err := d.Insert(insertAt, line); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Success: true, Changed: Range{insertAt, insertAt + len(line)}, NewCursor: insertAt + len(line), Description: fmt.Sprintf("clone %q as %q", c.SourceName, c.NewName)}, nil
}

// ApplyStyleCommand rewrites an event row's Style column, assigning a
// different style to that dialogue line (spec.md §4.4's "style apply").
type ApplyStyleCommand struct {
	EventTextPos int // any byte offset within the target event's Text column
	StyleName    string
}

func (c *ApplyStyleCommand) Execute(d *Document) (CommandResult, error) {
	ev := findEventByTextPos(d, c.EventTextPos)
	if ev == nil {
		return CommandResult{}, fmt.Errorf("assedit: no event contains offset %d", c.EventTextPos)
	}
	styleIdx := -1
	var format []string
	for i := range d.script.Sections {
		if d.script.Sections[i].Kind == assparse.SectionEvents {
			format = d.script.Sections[i].Events.Format
			break
		}
	}
	for i, col := range format {
		if strings.EqualFold(col, "Style") {
			styleIdx = i
			break
		}
	}
	if styleIdx < 0 || styleIdx >= len(ev.Values) {
		return CommandResult{}, fmt.Errorf("assedit: event row has no Style column")
	}
	values := append([]string(nil), ev.Values...)
	values[styleIdx] = c.StyleName
	newRaw := strings.Join(values, ",")
	valueRange := rowValueSpan(d.text, Range{ev.LineSpan.Start, ev.LineSpan.End})
	if err := d.Replace(valueRange, newRaw); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Success: true, Changed: ev.LineSpan, NewCursor: ev.LineSpan.Start, Description: fmt.Sprintf("apply style %q", c.StyleName)}, nil
}

func findEventByTextPos(d *Document, pos int) *assparse.Event {
	for _, ev := range d.script.AllEvents() {
		if pos >= ev.TextSpan.Start && pos <= ev.TextSpan.End {
			return ev
		}
	}
	return nil
}
