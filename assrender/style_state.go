package assrender

import (
	"strings"

	"github.com/npillmayer/assgo/assanalysis"
	"github.com/npillmayer/assgo/asscolor"
	"github.com/npillmayer/assgo/assissue"
)

// CodeAnimationSimplified records that an \frx or \fry tag was applied: the
// x/y rotation angle is accepted and added to the Z rotation rather than
// rendered about its own axis.
const CodeAnimationSimplified assissue.Code = "animation_simplified"

// Animation is one \t window recorded against a StyleState (spec.md §9).
type Animation struct {
	Field  string
	From   float64
	To     float64
	Start  float64 // ms, relative to the enclosing event's start
	End    float64 // ms
}

// Move is a \move(x1,y1,x2,y2[,t1,t2]) directive.
type Move struct {
	X1, Y1, X2, Y2 float64
	T1, T2         float64
	Active         bool
}

// Clip is a \clip/\iclip directive. Rendering does not rasterize clip
// paths (spec.md §4.6 does not describe clip compositing); it is carried
// on the snapshot for introspection and future extension.
type Clip struct {
	Raw     string
	Inverse bool
	Active  bool
}

// Karaoke is the most recently seen \k/\kf/\ko/\kt directive in a segment's
// run. This renderer schedules layout and composition per spec.md §4.6,
// which does not specify karaoke progress highlighting, so Karaoke is
// carried for callers that want it (e.g. a future fill-progress overlay)
// without this package compositing it itself.
type Karaoke struct {
	Kind       string
	DurationCs int
}

// StyleState is the running style accumulated while walking one event's
// text (spec.md §4.6 step 1-2). It implements asstag.StateMutator so the
// tag registry can mutate it directly during the walk.
type StyleState struct {
	base   *assanalysis.ResolvedStyle
	styles map[string]*assanalysis.ResolvedStyle

	FontName                           string
	FontSize                           float64
	Bold, Italic, Underline, StrikeOut bool
	Primary, Secondary, Outline, Shadow asscolor.Color

	// AlphaPrimary/AlphaOverall are ASS-convention alpha overrides (0=opaque,
	// 255=transparent) from \1a/\alpha; -1 means "not overridden, use the
	// color's own alpha".
	AlphaPrimary, AlphaOverall float64

	ScaleX, ScaleY, Spacing float64
	OutlineWidth, ShadowDepth, Blur float64
	BlurEdges                      int
	FRX, FRY, FRZ                  float64
	Alignment                      int

	HasPos     bool
	PosX, PosY float64
	Move       Move
	HasFade    bool
	FadeIn, FadeOut float64
	Karaoke    Karaoke
	Clip       Clip
	DrawScale  int

	Animations []Animation

	Issues []assissue.Issue
}

// NewStyleState initializes a StyleState from an event's resolved style
// (spec.md §4.6 step 1). styles supplies every named style in the script,
// used by bare \r<name> resets.
func NewStyleState(base *assanalysis.ResolvedStyle, styles map[string]*assanalysis.ResolvedStyle) *StyleState {
	s := &StyleState{base: base, styles: styles}
	s.resetToBase(base)
	return s
}

func (s *StyleState) resetToBase(rs *assanalysis.ResolvedStyle) {
	s.FontName = rs.Fontname
	s.FontSize = rs.Fontsize
	s.Bold, s.Italic, s.Underline, s.StrikeOut = rs.Bold, rs.Italic, rs.Underline, rs.StrikeOut
	s.Primary, s.Secondary, s.Outline, s.Shadow = rs.Primary, rs.Secondary, rs.Outline, rs.Back
	s.AlphaPrimary, s.AlphaOverall = -1, -1
	s.ScaleX, s.ScaleY, s.Spacing = rs.ScaleX, rs.ScaleY, rs.Spacing
	s.OutlineWidth, s.ShadowDepth, s.Blur, s.BlurEdges = rs.OutlineWidth, rs.Shadow, 0, 0
	s.FRX, s.FRY, s.FRZ = 0, 0, rs.Angle
	s.Alignment = rs.Alignment
	s.DrawScale = 0
}

// Snapshot copies the current state into a detached value, for attaching to
// a Segment (spec.md §4.6 step 2's "Segment(text_slice, StyleState_snapshot)").
func (s *StyleState) Snapshot() StyleState {
	cp := *s
	cp.Animations = append([]Animation(nil), s.Animations...)
	return cp
}

func (s *StyleState) SetBool(field string, v bool) {
	switch field {
	case "bold":
		s.Bold = v
	case "italic":
		s.Italic = v
	case "underline":
		s.Underline = v
	case "strikeout":
		s.StrikeOut = v
	}
}

func (s *StyleState) SetFloat(field string, v float64) {
	switch field {
	case "alpha_primary":
		s.AlphaPrimary = v
	case "alpha":
		s.AlphaOverall = v
	case "fontsize":
		s.FontSize = v
	case "scale_x":
		s.ScaleX = v
	case "scale_y":
		s.ScaleY = v
	case "spacing":
		s.Spacing = v
	case "outline":
		s.OutlineWidth = v
	case "shadow":
		s.ShadowDepth = v
	case "blur":
		s.Blur = v
	case "blur_edges":
		s.BlurEdges = int(v)
	case "alignment":
		s.Alignment = int(v)
	case "draw_baseline_offset":
		// Accepted but not composited: baseline offset for \p drawings,
		// which this renderer does not rasterize (see SetDraw).
	}
}

func (s *StyleState) SetString(field string, v string) {
	switch field {
	case "fontname":
		s.FontName = v
	case "reset_style":
		if named, ok := s.styles[strings.ToLower(v)]; ok {
			s.resetToBase(named)
		}
	}
}

func (s *StyleState) SetColor(field string, argbHex string) {
	c, err := asscolor.Parse(argbHex)
	if err != nil {
		return
	}
	switch field {
	case "primary":
		s.Primary = c
	case "secondary":
		s.Secondary = c
	case "outline":
		s.Outline = c
	case "shadow":
		s.Shadow = c
	}
}

func (s *StyleState) SetPosition(x, y float64) {
	s.HasPos = true
	s.PosX, s.PosY = x, y
}

func (s *StyleState) SetMove(x1, y1, x2, y2, t1, t2 float64) {
	s.Move = Move{X1: x1, Y1: y1, X2: x2, Y2: y2, T1: t1, T2: t2, Active: true}
}

func (s *StyleState) SetFade(inMs, outMs float64) {
	s.HasFade = true
	s.FadeIn, s.FadeOut = inMs, outMs
}

func (s *StyleState) SetAnimation(field string, from, to float64, t1, t2Ms float64) {
	s.Animations = append(s.Animations, Animation{Field: field, From: from, To: to, Start: t1, End: t2Ms})
}

func (s *StyleState) SetRotation(axis byte, degrees float64) {
	switch axis {
	case 'x':
		s.FRX = degrees
	case 'y':
		s.FRY = degrees
	case 'z':
		s.FRZ = degrees
	}
}

func (s *StyleState) SetKaraoke(kind string, durationCs int) {
	s.Karaoke = Karaoke{Kind: kind, DurationCs: durationCs}
}

func (s *StyleState) SetClip(raw string, inverse bool) {
	s.Clip = Clip{Raw: raw, Inverse: inverse, Active: true}
}

func (s *StyleState) SetDraw(scale int) {
	s.DrawScale = scale
}

// Reset restores formatting fields to the event's original resolved style
// (spec.md §9's \r semantics); position, move and fade directives are left
// untouched, since those are per-event structural directives rather than
// inline formatting in this renderer's model.
func (s *StyleState) Reset() {
	s.resetToBase(s.base)
}
