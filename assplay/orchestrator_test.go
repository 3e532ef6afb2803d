package assplay

import (
	"testing"
	"time"

	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/assgo/assrender"
	"github.com/stretchr/testify/require"
)

const twoLineScript = "[Script Info]\r\n" +
	"Title: Test\r\n" +
	"\r\n" +
	"[V4+ Styles]\r\n" +
	"Format: Name, Fontname, Fontsize\r\n" +
	"Style: Default,Arial,20\r\n" +
	"\r\n" +
	"[Events]\r\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
	"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,First\r\n" +
	"Dialogue: 0,0:00:02.00,0:00:03.00,Default,,0,0,0,,Second\r\n"

func newTestOrchestrator(t *testing.T) (*Orchestrator, *assparse.Script) {
	t.Helper()
	script := assparse.Parse([]byte(twoLineScript))
	renderer := assrender.NewRenderer(nil, assrender.Options{})
	orch := NewOrchestrator(script, renderer, Options{FPS: 10, BufferCapacity: 4})
	return orch, script
}

// ProcessFrame must return a non-nil frame of the requested dimensions for
// any t, active subtitle or not (spec.md §4.7's process_frame contract).
func TestProcessFrameReturnsFrame(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	frame, _ := orch.ProcessFrame(0.5, 64, 32, 32)
	require.NotNil(t, frame)
	require.Equal(t, 64, frame.W)
	require.Equal(t, 32, frame.H)
}

// A session ID is assigned and differs between orchestrators.
func TestOrchestratorHasSessionID(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	require.NotEmpty(t, orch.ID)
	other, _ := newTestOrchestrator(t)
	require.NotEqual(t, orch.ID, other.ID, "expected distinct session IDs across orchestrators")
}

// Re-requesting the same tick should not grow the look-ahead buffer past
// what a single ProcessFrame call would have populated, since the tick is
// already served from cache.
func TestProcessFrameServesFromBuffer(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	orch.ProcessFrame(0.5, 64, 32, 32)
	before := orch.BufferedFrames()
	orch.ProcessFrame(0.5, 64, 32, 32)
	after := orch.BufferedFrames()
	require.Equal(t, before, after, "expected buffered-frame count unchanged on repeat request")
}

// Look-ahead must not render past a gap with no active subtitle: the
// second dialogue event starts at t=2.0, so requesting t=0.9 (just before
// the first event ends at t=1.0) should not cause frames at t=1.1, 1.2...
// to be buffered, since no subtitle is active there.
func TestLookAheadStopsAtInactiveGap(t *testing.T) {
	orch, script := newTestOrchestrator(t)
	orch.ProcessFrame(0.9, 64, 32, 32)
	require.False(t, hasActiveSubtitle(script, 1.3), "test fixture assumption broken: expected no active subtitle at t=1.3")
	require.False(t, orch.buffer.Has(1.3), "look-ahead rendered past an inactive gap")
}

// The performance monitor's average tracks recorded samples.
func TestPerformanceMonitorAverage(t *testing.T) {
	m := NewPerformanceMonitor(3)
	require.Zero(t, m.AverageFrameTime())
	require.Zero(t, m.FPS())

	m.Record(10 * time.Millisecond)
	m.Record(20 * time.Millisecond)
	m.Record(30 * time.Millisecond)
	require.Equal(t, 20*time.Millisecond, m.AverageFrameTime())

	// A fourth sample evicts the oldest (ring buffer of size 3).
	m.Record(60 * time.Millisecond)
	require.Equal(t, (20+30+60)*time.Millisecond/3, m.AverageFrameTime())
}

// frameKey collapses times within half a frame-interval onto the same key.
func TestFrameKeyQuantization(t *testing.T) {
	delta := 1.0 / 10.0 // 100ms
	k1 := frameKey(1.001, delta)
	k2 := frameKey(1.04, delta)
	require.Equal(t, k1, k2, "expected 1.001s and 1.04s to collapse to the same 100ms tick")

	k3 := frameKey(1.2, delta)
	require.NotEqual(t, k1, k3, "expected a tick two frames away to quantize differently")
}

// frameBuffer evicts FIFO once at capacity.
func TestFrameBufferEvictsAtCapacity(t *testing.T) {
	buf := newFrameBuffer(2, 0.1)
	buf.Put(0.0, &assrender.Frame{W: 1, H: 1})
	buf.Put(0.1, &assrender.Frame{W: 1, H: 1})
	buf.Put(0.2, &assrender.Frame{W: 1, H: 1})
	require.Equal(t, 2, buf.Len())
	require.False(t, buf.Has(0.0), "expected the oldest entry to have been evicted")
	require.True(t, buf.Has(0.1))
	require.True(t, buf.Has(0.2))
}

// AdjustQuality escalates the renderer's quality floor once the average
// frame time exceeds the frame budget.
func TestAdjustQualityEscalates(t *testing.T) {
	orch, _ := newTestOrchestrator(t) // FPS=10 -> 100ms budget
	orch.monitor.Record(500 * time.Millisecond)
	orch.AdjustQuality()
	require.Equal(t, assrender.QualitySkipBlur, orch.renderer.QualityFloor())
}
