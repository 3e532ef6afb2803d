package assplay

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/assgo/assrender"
)

// Options configures an Orchestrator.
type Options struct {
	FPS             float64 // target frames per second; defaults to 24 if <= 0
	BufferCapacity  int     // look-ahead buffer capacity in frames; defaults to 8 if <= 0
	MonitorWindow   int     // performance-monitor ring-buffer size; defaults to 30 if <= 0
	MaxLookahead    int     // max k in t + k*delta the policy will attempt per ProcessFrame call; defaults to BufferCapacity
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 24
	}
	if o.BufferCapacity <= 0 {
		o.BufferCapacity = 8
	}
	if o.MonitorWindow <= 0 {
		o.MonitorWindow = 30
	}
	if o.MaxLookahead <= 0 {
		o.MaxLookahead = o.BufferCapacity
	}
	return o
}

// Orchestrator is the realtime frame producer (spec.md §4.7): it owns a
// bounded look-ahead frame buffer, a ring-buffer performance monitor, and
// the script + renderer a session plays back. ID is a session identifier
// (following assedit.Document.Subscribe's google/uuid listener-ID
// convention), useful to a caller multiplexing several concurrent
// playback sessions.
type Orchestrator struct {
	ID string

	mu       sync.Mutex
	script   *assparse.Script
	renderer *assrender.Renderer
	opts     Options
	delta    float64 // frame interval in seconds, 1/FPS

	buffer  *frameBuffer
	monitor *PerformanceMonitor
}

// NewOrchestrator builds an Orchestrator over script, rendering with
// renderer at opts.FPS.
func NewOrchestrator(script *assparse.Script, renderer *assrender.Renderer, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	delta := 1.0 / opts.FPS
	return &Orchestrator{
		ID:       uuid.NewString(),
		script:   script,
		renderer: renderer,
		opts:     opts,
		delta:    delta,
		buffer:   newFrameBuffer(opts.BufferCapacity, delta),
		monitor:  NewPerformanceMonitor(opts.MonitorWindow),
	}
}

// ProcessFrame returns the frame for time t (seconds), W x H pixels, at
// baseSize reference font size: a buffered frame within half a
// frame-interval of t when available, otherwise a freshly rendered one
// (spec.md §4.7's process_frame contract). After serving the frame it
// applies the look-ahead policy, bounded by buffer capacity and
// opts.MaxLookahead per call.
func (o *Orchestrator) ProcessFrame(t float64, W, H int, baseSize float64) (*assrender.Frame, []assissue.Issue) {
	o.mu.Lock()
	defer o.mu.Unlock()

	frame, issues, fresh := o.frameFor(t, W, H, baseSize)
	if fresh {
		o.buffer.Put(t, frame)
		o.AdjustQuality()
	}
	o.lookAhead(t, W, H, baseSize)
	return frame, issues
}

// frameFor serves t from the buffer when present, else renders fresh and
// records the render duration against the performance monitor.
func (o *Orchestrator) frameFor(t float64, W, H int, baseSize float64) (frame *assrender.Frame, issues []assissue.Issue, fresh bool) {
	if f, ok := o.buffer.Get(t); ok {
		return f, nil, false
	}
	start := time.Now()
	f, iss := o.renderer.RenderFrame(o.script, t, W, H, baseSize)
	o.monitor.Record(time.Since(start))
	return f, iss, true
}

// lookAhead renders t + k*delta for increasing k, up to MaxLookahead and
// buffer capacity, only while the moving average frame time stays below
// half the frame interval and the scheduler reports an active subtitle at
// that future tick (spec.md §4.7's "Look-ahead policy").
func (o *Orchestrator) lookAhead(t float64, W, H int, baseSize float64) {
	budget := o.delta / 2
	for k := 1; k <= o.opts.MaxLookahead; k++ {
		if o.buffer.Len() >= o.opts.BufferCapacity {
			return
		}
		avg := o.monitor.AverageFrameTime()
		if avg > 0 && float64(avg) >= budget*float64(time.Second) {
			return
		}
		future := t + float64(k)*o.delta
		if o.buffer.Has(future) {
			continue
		}
		if !hasActiveSubtitle(o.script, future) {
			return
		}
		start := time.Now()
		frame, _ := o.renderer.RenderFrame(o.script, future, W, H, baseSize)
		o.monitor.Record(time.Since(start))
		o.buffer.Put(future, frame)
	}
}

// AdjustQuality escalates or relaxes the renderer's degradation-ladder rung
// against the current moving average frame time vs. the frame budget
// (SPEC_FULL.md §3's supplemented performance-degradation ladder): falling
// behind budget climbs one rung (QualityFull -> QualitySkipBlur -> ... ->
// QualityFlatten); comfortably ahead of budget relaxes one rung back.
func (o *Orchestrator) AdjustQuality() {
	avg := o.monitor.AverageFrameTime()
	if avg <= 0 {
		return
	}
	budget := time.Duration(o.delta * float64(time.Second))
	level := o.renderer.QualityFloor()
	switch {
	case avg > budget && level < assrender.QualityFlatten:
		o.renderer.SetQualityFloor(level + 1)
	case avg < budget/4 && level > assrender.QualityFull:
		o.renderer.SetQualityFloor(level - 1)
	}
}

// Monitor exposes the orchestrator's performance monitor for callers that
// want to inspect average frame time / derived FPS directly.
func (o *Orchestrator) Monitor() *PerformanceMonitor {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.monitor
}

// BufferedFrames reports how many frames are currently held in the
// look-ahead buffer.
func (o *Orchestrator) BufferedFrames() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buffer.Len()
}
