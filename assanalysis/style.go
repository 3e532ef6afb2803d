/*
Package assanalysis resolves styles, parses and relates event timing,
scores dialogue complexity, and lints a parsed Script (spec.md §4.3).
*/
package assanalysis

import (
	"strconv"
	"strings"

	"github.com/npillmayer/assgo/asscolor"
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.assanalysis")
}

// PerformanceImpact buckets a style's or event's render cost (spec.md §4.3).
type PerformanceImpact int

const (
	Minimal PerformanceImpact = iota
	Low
	Medium
	High
	Critical
)

func (p PerformanceImpact) String() string {
	switch p {
	case Minimal:
		return "Minimal"
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return "Critical"
	}
}

// bucketFromScore maps a 0-10 complexity score to its performance bucket.
func bucketFromScore(score int) PerformanceImpact {
	switch {
	case score <= 2:
		return Minimal
	case score <= 4:
		return Low
	case score <= 6:
		return Medium
	case score <= 8:
		return High
	default:
		return Critical
	}
}

// ResolvedStyle is a Style with every column parsed into its typed form,
// defaults applied, and derived complexity/performance fields computed
// (spec.md §3, §4.3).
type ResolvedStyle struct {
	Name    string
	Source  *assparse.Style

	Fontname string
	Fontsize float64

	Primary, Secondary, Outline, Back asscolor.Color

	Bold, Italic, Underline, StrikeOut bool

	ScaleX, ScaleY, Spacing, Angle float64
	BorderStyle                    int
	OutlineWidth, Shadow           float64
	Alignment                      int
	MarginL, MarginR, MarginV      int
	Encoding                       int

	ComplexityScore int // 0-10
	Performance     PerformanceImpact
	Issues          []assissue.Issue
}

const (
	defaultFontname = "Arial"
	defaultFontsize = 20.0
	defaultScale    = 100.0
	defaultMargin   = 10
)

var (
	defaultPrimary, _   = asscolor.Parse("&H00FFFFFF&")
	defaultSecondary, _ = asscolor.Parse("&H000000FF&")
	defaultOutline, _   = asscolor.Parse("&H00000000&")
	defaultBack, _      = asscolor.Parse("&H00000000&")
)

// ResolveStyle parses a single parsed Style row into a ResolvedStyle,
// applying spec.md §4.3's defaults and recording validation issues for
// out-of-range values.
func ResolveStyle(style *assparse.Style) *ResolvedStyle {
	rs := &ResolvedStyle{Source: style}
	col := &assissue.Collector{}

	rs.Name = getOr(style, "Name", "")
	rs.Fontname = getOr(style, "Fontname", defaultFontname)

	rs.Fontsize = parseFloatDefault(col, style, "Fontsize", defaultFontsize)
	if rs.Fontsize <= 0 {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Warning, style.LineSpan, "style %q has non-positive font size %v", rs.Name, rs.Fontsize)
	}

	rs.Primary = parseColorDefault(col, style, "PrimaryColour", defaultPrimary)
	rs.Secondary = parseColorDefault(col, style, "SecondaryColour", defaultSecondary)
	rs.Outline = parseColorDefault(col, style, "OutlineColour", defaultOutline)
	rs.Back = parseColorDefault(col, style, "BackColour", defaultBack)

	rs.Bold = parseBoolDefault(style, "Bold", false)
	rs.Italic = parseBoolDefault(style, "Italic", false)
	rs.Underline = parseBoolDefault(style, "Underline", false)
	rs.StrikeOut = parseBoolDefault(style, "StrikeOut", false)

	rs.ScaleX = parseFloatDefault(col, style, "ScaleX", defaultScale)
	rs.ScaleY = parseFloatDefault(col, style, "ScaleY", defaultScale)
	if rs.ScaleX <= 0 || rs.ScaleX > 1000 || rs.ScaleY <= 0 || rs.ScaleY > 1000 {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Warning, style.LineSpan, "style %q has extreme scale (%v,%v)", rs.Name, rs.ScaleX, rs.ScaleY)
	}
	rs.Spacing = parseFloatDefault(col, style, "Spacing", 0)
	rs.Angle = parseFloatDefault(col, style, "Angle", 0)

	rs.BorderStyle = int(parseFloatDefault(col, style, "BorderStyle", 1))
	rs.OutlineWidth = parseFloatDefault(col, style, "Outline", 2)
	rs.Shadow = parseFloatDefault(col, style, "Shadow", 0)
	if rs.OutlineWidth < 0 {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Warning, style.LineSpan, "style %q has negative outline %v", rs.Name, rs.OutlineWidth)
	}
	if rs.Shadow < 0 {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Warning, style.LineSpan, "style %q has negative shadow %v", rs.Name, rs.Shadow)
	}

	rs.Alignment = int(parseFloatDefault(col, style, "Alignment", 2))
	if rs.Alignment < 1 || rs.Alignment > 9 {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Error, style.LineSpan, "style %q has out-of-range alignment %d", rs.Name, rs.Alignment)
	}

	rs.MarginL = int(parseFloatDefault(col, style, "MarginL", defaultMargin))
	rs.MarginR = int(parseFloatDefault(col, style, "MarginR", defaultMargin))
	rs.MarginV = int(parseFloatDefault(col, style, "MarginV", defaultMargin))
	rs.Encoding = int(parseFloatDefault(col, style, "Encoding", 1))

	rs.ComplexityScore = styleComplexity(rs)
	rs.Performance = bucketFromScore(rs.ComplexityScore)
	rs.Issues = col.Issues()
	return rs
}

func styleComplexity(rs *ResolvedStyle) int {
	score := 0
	if rs.Fontsize > 60 {
		score += 2
	}
	if rs.ScaleX > 150 || rs.ScaleX < 50 || rs.ScaleY > 150 || rs.ScaleY < 50 {
		score += 2
	}
	if rs.OutlineWidth > 4 {
		score += 3
	}
	if rs.Shadow > 4 {
		score += 2
	}
	if rs.Angle != 0 {
		score += 3
	}
	if rs.Bold || rs.Italic {
		score += 1
	}
	if rs.BorderStyle != 1 {
		score += 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

func getOr(s *assparse.Style, field, def string) string {
	if v, ok := s.Get(field); ok && v != "" {
		return v
	}
	return def
}

func parseFloatDefault(col *assissue.Collector, s *assparse.Style, field string, def float64) float64 {
	v, ok := s.Get(field)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Warning, s.LineSpan, "style field %s has non-numeric value %q, using default", field, v)
		return def
	}
	return f
}

func parseBoolDefault(s *assparse.Style, field string, def bool) bool {
	v, ok := s.Get(field)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	switch v {
	case "-1", "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}

func parseColorDefault(col *assissue.Collector, s *assparse.Style, field string, def asscolor.Color) asscolor.Color {
	v, ok := s.Get(field)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	c, err := asscolor.Parse(v)
	if err != nil {
		col.Add(assissue.CodeStyleOutOfRange, assissue.Warning, s.LineSpan, "style field %s has invalid color %q, using default", field, v)
		return def
	}
	return c
}
