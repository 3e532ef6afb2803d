package assanalysis

import (
	"strings"

	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/assgo/asstag"
)

// ScriptAnalysis is the complete analysis result for one parsed Script
// (spec.md §4.3): resolved styles, per-dialogue complexity, event timing
// relations, and any issues surfaced along the way.
type ScriptAnalysis struct {
	Script    *assparse.Script
	Styles    []*ResolvedStyle
	Dialogues []*DialogueInfo
	Timings   []EventTiming
	Overlaps  []OverlapPair

	Issues []assissue.Issue
}

// Analyze runs the full analysis pipeline against script, using reg (or
// asstag.Default if nil) to resolve override tags in dialogue text. It is
// equivalent to AnalyzeWithCache(script, reg, nil).
func Analyze(script *assparse.Script, reg *asstag.Registry) *ScriptAnalysis {
	return AnalyzeWithCache(script, reg, nil)
}

// AnalyzeWithCache is Analyze with an optional ResolutionCache for style
// resolution (SPEC_FULL.md §3); a nil cache resolves every style fresh.
func AnalyzeWithCache(script *assparse.Script, reg *asstag.Registry, cache *ResolutionCache) *ScriptAnalysis {
	col := &assissue.Collector{}
	sa := &ScriptAnalysis{Script: script}

	seenNames := map[string]int{}
	for _, st := range script.AllStyles() {
		rs := cache.resolve(st)
		sa.Styles = append(sa.Styles, rs)
		for _, iss := range rs.Issues {
			col.Add(iss.Code, iss.Severity, iss.Span, "%s", iss.Message)
		}
		key := strings.ToLower(rs.Name)
		seenNames[key]++
		if seenNames[key] == 2 {
			col.Add(assissue.CodeDuplicateName, assissue.Warning, rs.Source.LineSpan, "duplicate style name %q", rs.Name)
		}
	}

	for _, ev := range script.AllEvents() {
		if ev.Kind != assparse.Dialogue && ev.Kind != assparse.Comment {
			continue
		}
		di := AnalyzeDialogue(ev, reg)
		sa.Dialogues = append(sa.Dialogues, di)
		for _, iss := range di.Issues {
			col.Add(iss.Code, iss.Severity, iss.Span, "%s", iss.Message)
		}
		et := ParseTiming(ev, col)
		sa.Timings = append(sa.Timings, et)
	}
	sa.Overlaps = OverlappingPairs(sa.Timings)

	sa.Issues = col.Issues()
	return sa
}

// StyleByName returns the resolved style with the given name (case
// sensitive match on the first definition only — later duplicates are
// reported, not merged), or nil.
func (sa *ScriptAnalysis) StyleByName(name string) *ResolvedStyle {
	for _, rs := range sa.Styles {
		if rs.Name == name {
			return rs
		}
	}
	return nil
}
