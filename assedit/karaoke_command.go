package assedit

import (
	"fmt"
	"regexp"
	"strconv"
)

var karaokeTagPattern = regexp.MustCompile(`\{\\(k|kf|ko|kt)(\d+)\}`)

// SplitKaraokeCommand splits the karaoke syllable under Pos into two equal
// halves (spec.md §4.4's "karaoke split").
type SplitKaraokeCommand struct {
	Pos int // byte offset within the event's Text column, inside the syllable to split
}

func (c *SplitKaraokeCommand) Execute(d *Document) (CommandResult, error) {
	ev := findEventByTextPos(d, c.Pos)
	if ev == nil {
		return CommandResult{}, fmt.Errorf("assedit: no event contains offset %d", c.Pos)
	}
	text := ev.Text()
	locs := karaokeTagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return CommandResult{}, fmt.Errorf("assedit: event has no karaoke tags")
	}
	relPos := c.Pos - ev.TextSpan.Start
	for i, loc := range locs {
		segStart := loc[1] // end of this tag, start of the syllable text
		segEnd := len(text)
		if i+1 < len(locs) {
			segEnd = locs[i+1][0]
		}
		if relPos < segStart || relPos >= segEnd {
			continue
		}
		tagName := text[loc[2]:loc[3]]
		dur, _ := strconv.Atoi(text[loc[4]:loc[5]])
		half := dur / 2
		newSeg := fmt.Sprintf("{\\%s%d}{\\%s%d}", tagName, half, tagName, dur-half)
		absStart := ev.TextSpan.Start + loc[0]
		absEnd := ev.TextSpan.Start + segStart
		if err := d.Replace(Range{absStart, absEnd}, newSeg); err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Success: true, Changed: Range{absStart, absStart + len(newSeg)}, NewCursor: absStart + len(newSeg), Description: "split karaoke syllable"}, nil
	}
	return CommandResult{}, fmt.Errorf("assedit: offset %d is not inside a karaoke syllable", c.Pos)
}

// AdjustKaraokeCommand changes the duration of the karaoke tag immediately
// preceding Pos by DeltaCs centiseconds, clamped to zero (spec.md §4.4's
// "karaoke adjust").
type AdjustKaraokeCommand struct {
	Pos     int
	DeltaCs int
}

func (c *AdjustKaraokeCommand) Execute(d *Document) (CommandResult, error) {
	ev := findEventByTextPos(d, c.Pos)
	if ev == nil {
		return CommandResult{}, fmt.Errorf("assedit: no event contains offset %d", c.Pos)
	}
	text := ev.Text()
	relPos := c.Pos - ev.TextSpan.Start
	locs := karaokeTagPattern.FindAllStringSubmatchIndex(text, -1)
	var target []int
	for _, loc := range locs {
		if loc[0] > relPos {
			break
		}
		target = loc
	}
	if target == nil {
		return CommandResult{}, fmt.Errorf("assedit: no karaoke tag precedes offset %d", c.Pos)
	}
	tagName := text[target[2]:target[3]]
	dur, _ := strconv.Atoi(text[target[4]:target[5]])
	dur += c.DeltaCs
	if dur < 0 {
		dur = 0
	}
	newTag := fmt.Sprintf("{\\%s%d}", tagName, dur)
	absStart := ev.TextSpan.Start + target[0]
	absEnd := ev.TextSpan.Start + target[1]
	if err := d.Replace(Range{absStart, absEnd}, newTag); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Success: true, Changed: Range{absStart, absStart + len(newTag)}, NewCursor: absStart + len(newTag), Description: fmt.Sprintf("adjust karaoke by %dcs", c.DeltaCs)}, nil
}

// ApplyKaraokeCommand replaces every karaoke tag's kind (k/kf/ko) in the
// event under Pos, keeping each tag's duration (spec.md §4.4's "karaoke
// apply" — applying a different karaoke rendering style to existing
// syllable timings).
type ApplyKaraokeCommand struct {
	Pos  int
	Kind string // "k", "kf", or "ko"
}

func (c *ApplyKaraokeCommand) Execute(d *Document) (CommandResult, error) {
	ev := findEventByTextPos(d, c.Pos)
	if ev == nil {
		return CommandResult{}, fmt.Errorf("assedit: no event contains offset %d", c.Pos)
	}
	text := ev.Text()
	rewritten := karaokeTagPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := karaokeTagPattern.FindStringSubmatch(m)
		return fmt.Sprintf("{\\%s%s}", c.Kind, sub[2])
	})
	if rewritten == text {
		return CommandResult{}, fmt.Errorf("assedit: event has no karaoke tags to apply")
	}
	if err := d.Replace(ev.TextSpan, rewritten); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Success: true, Changed: Range{ev.TextSpan.Start, ev.TextSpan.Start + len(rewritten)}, NewCursor: ev.TextSpan.Start + len(rewritten), Description: fmt.Sprintf("apply karaoke kind %q", c.Kind)}, nil
}
