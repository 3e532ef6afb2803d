/*
Package assplay produces frames at a target FPS from an assrender.Renderer,
holding a bounded look-ahead buffer of pre-rendered frames keyed by time
(spec.md §4.7).
*/
package assplay

import (
	"time"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.assplay")
}

// PerformanceMonitor is a ring buffer of the last N frame times, exposing
// the moving average frame time and the FPS it implies (spec.md §4.7's
// "Performance monitor").
type PerformanceMonitor struct {
	samples []time.Duration
	next    int
	filled  int
}

// NewPerformanceMonitor returns a monitor holding the last size samples.
func NewPerformanceMonitor(size int) *PerformanceMonitor {
	if size < 1 {
		size = 1
	}
	return &PerformanceMonitor{samples: make([]time.Duration, size)}
}

// Record adds one observed frame render duration.
func (m *PerformanceMonitor) Record(d time.Duration) {
	m.samples[m.next] = d
	m.next = (m.next + 1) % len(m.samples)
	if m.filled < len(m.samples) {
		m.filled++
	}
}

// AverageFrameTime is the mean of the recorded samples, or 0 with none yet.
func (m *PerformanceMonitor) AverageFrameTime() time.Duration {
	if m.filled == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < m.filled; i++ {
		sum += m.samples[i]
	}
	return sum / time.Duration(m.filled)
}

// FPS is the derived frames-per-second for the current average frame time,
// or 0 when no samples have been recorded yet.
func (m *PerformanceMonitor) FPS() float64 {
	avg := m.AverageFrameTime()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}
