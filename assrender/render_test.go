package assrender

import (
	"math"
	"testing"

	"github.com/npillmayer/assgo/assanalysis"
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
	"github.com/stretchr/testify/require"
)

const fadeScript = "[Script Info]\r\n" +
	"Title: Test\r\n" +
	"\r\n" +
	"[V4+ Styles]\r\n" +
	"Format: Name, Fontname, Fontsize\r\n" +
	"Style: Default,Arial,20\r\n" +
	"\r\n" +
	"[Events]\r\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
	`Dialogue: 0,0:00:00.00,0:00:02.00,Default,,0,0,0,,{\fad(500,500)}Hi` + "\r\n"

func firstDialogueEvent(t *testing.T, src string) (*assparse.Script, *assparse.Event) {
	t.Helper()
	script := assparse.Parse([]byte(src))
	events := script.AllEvents()
	require.NotEmpty(t, events, "expected at least one parsed event")
	return script, events[0]
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1.0/255
}

// S7: render fade bounds at t = 0, 0.25, 1.0, 1.75, 2.0 -> alphas 0, 0.5, 1,
// 0.5, 0 (spec.md §8 invariant 12, scenario S7).
func TestRenderFadeBounds(t *testing.T) {
	script, ev := firstDialogueEvent(t, fadeScript)
	r := NewRenderer(nil, Options{})
	stylesByName := resolveStylesByName(script)

	samples := []struct {
		t     float64
		alpha float64
	}{
		{0, 0},
		{0.25, 0.5},
		{1.0, 1},
		{1.75, 0.5},
		{2.0, 0},
	}
	for _, s := range samples {
		col := &assissue.Collector{}
		timing := assanalysis.ParseTiming(ev, col)
		require.True(t, timing.Valid, "timing invalid for t=%v", s.t)
		line := r.buildLine(ev, timing, stylesByName, s.t, col)
		require.Truef(t, almostEqual(line.Alpha, s.alpha), "t=%v: alpha = %v, want %v", s.t, line.Alpha, s.alpha)
		require.GreaterOrEqual(t, line.Alpha, 0.0)
		require.LessOrEqual(t, line.Alpha, 1.0)
	}
}

// Invariant 12, general form: at t=start alpha is 0 iff fade_in>0 else 1; at
// t=end alpha is 0 iff fade_out>0 else 1.
func TestFadeBoundsNoFadeConfigured(t *testing.T) {
	src := "[Script Info]\r\nTitle: T\r\n\r\n[V4+ Styles]\r\nFormat: Name, Fontname, Fontsize\r\nStyle: Default,Arial,20\r\n\r\n[Events]\r\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
		"Dialogue: 0,0:00:00.00,0:00:02.00,Default,,0,0,0,,Hi\r\n"
	script, ev := firstDialogueEvent(t, src)
	r := NewRenderer(nil, Options{})
	stylesByName := resolveStylesByName(script)
	col := &assissue.Collector{}
	timing := assanalysis.ParseTiming(ev, col)

	line := r.buildLine(ev, timing, stylesByName, 0, col)
	require.Equal(t, 1.0, line.Alpha, "no-fade alpha at start")

	line = r.buildLine(ev, timing, stylesByName, 2.0, col)
	require.Equal(t, 1.0, line.Alpha, "no-fade alpha at end")
}

// Invariant 11: render(S, t, W, H, size, fonts) is a pure function of its
// arguments.
func TestRenderFrameDeterministic(t *testing.T) {
	script, _ := firstDialogueEvent(t, fadeScript)
	r := NewRenderer(nil, Options{})
	f1, _ := r.RenderFrame(script, 1.0, 64, 32, 32)
	f2, _ := r.RenderFrame(script, 1.0, 64, 32, 32)
	require.Equal(t, f1.Pix, f2.Pix)
}

// With no fonts registered, the fallback rectangle path must actually paint
// something (spec.md §4.6's "Fallback").
func TestRenderFallbackRectanglesPaint(t *testing.T) {
	script, _ := firstDialogueEvent(t, fadeScript)
	r := NewRenderer(nil, Options{})
	frame, _ := r.RenderFrame(script, 1.0, 64, 32, 32)

	opaque := false
	for i := 3; i < len(frame.Pix); i += 4 {
		if frame.Pix[i] > 0 {
			opaque = true
			break
		}
	}
	require.True(t, opaque, "expected some non-transparent pixels from the fallback rectangle path")
}

// Events outside [start, end] are not scheduled (spec.md §4.6's "Event
// scheduling").
func TestRenderFrameSkipsInactiveEvents(t *testing.T) {
	script, _ := firstDialogueEvent(t, fadeScript)
	r := NewRenderer(nil, Options{})
	frame, _ := r.RenderFrame(script, 5.0, 64, 32, 32)
	for _, b := range frame.Pix {
		require.Zero(t, b, "expected an all-zero frame for t outside any event")
	}
}

func TestHorizontalOriginAlignment(t *testing.T) {
	cases := []struct {
		alignment int
		want      float64
	}{
		{1, 0}, {4, 0}, {7, 0},
		{2, 20}, {5, 20}, {8, 20},
		{3, 40}, {6, 40}, {9, 40},
	}
	for _, c := range cases {
		got := horizontalOrigin(c.alignment, 20, 60)
		require.Equal(t, c.want, got, "alignment %d", c.alignment)
	}
}

func TestVerticalOriginAlignment(t *testing.T) {
	cases := []struct {
		alignment int
		want      float64
	}{
		{2, 40}, {5, 20}, {8, 0},
	}
	for _, c := range cases {
		got := verticalOrigin(c.alignment, 10, 50)
		require.Equal(t, c.want, got, "alignment %d", c.alignment)
	}
}

func TestCursorOriginHonorsPos(t *testing.T) {
	st := StyleState{HasPos: true, PosX: 12, PosY: 34, Alignment: 2}
	x, y := cursorOrigin(st, 100, 20, 200, 200)
	require.Equal(t, 12.0, x)
	require.Equal(t, 34.0, y)
}
