package assplay

import (
	"github.com/npillmayer/assgo/assanalysis"
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
)

// hasActiveSubtitle reports whether script has a Dialogue event active at
// t (spec.md §4.7's "the event scheduler reports subtitles active at that
// time"), reusing assrender's own scheduling rule (start <= t <= end) so
// the look-ahead policy and the renderer never disagree about activity.
func hasActiveSubtitle(script *assparse.Script, t float64) bool {
	if script == nil {
		return false
	}
	col := &assissue.Collector{}
	for _, ev := range script.AllEvents() {
		if ev.Kind != assparse.Dialogue {
			continue
		}
		timing := assanalysis.ParseTiming(ev, col)
		if !timing.Valid {
			continue
		}
		if t >= timing.Start.Seconds() && t <= timing.End.Seconds() {
			return true
		}
	}
	return false
}
