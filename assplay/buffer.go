package assplay

import (
	"math"

	"github.com/npillmayer/assgo/assrender"
)

// frameKey quantizes a time in seconds to the index k of the nearest tick
// k*delta, so every time within half a frame-interval of the same tick maps
// to the same key (spec.md §4.7's "within half a frame-interval of t").
// Two times closer than half an interval that straddle a half-tick
// boundary map to adjacent keys.
func frameKey(t, delta float64) int64 {
	return int64(math.Round(t / delta))
}

// frameBuffer is the bounded look-ahead buffer of pre-rendered frames
// (spec.md §4.7). Eviction is FIFO by insertion order: the orchestrator
// only ever inserts ahead of the current playback position, so the oldest
// entry is also the one soonest to be consumed or to fall behind.
type frameBuffer struct {
	capacity int
	delta    float64
	frames   map[int64]*assrender.Frame
	order    []int64
}

func newFrameBuffer(capacity int, delta float64) *frameBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &frameBuffer{capacity: capacity, delta: delta, frames: make(map[int64]*assrender.Frame)}
}

// Get returns a buffered frame within half a frame-interval of t, if any.
func (b *frameBuffer) Get(t float64) (*assrender.Frame, bool) {
	f, ok := b.frames[frameKey(t, b.delta)]
	return f, ok
}

// Has reports whether a frame for t is already buffered, without the
// caller needing the frame itself (used by the look-ahead policy to avoid
// re-rendering a tick already served).
func (b *frameBuffer) Has(t float64) bool {
	_, ok := b.frames[frameKey(t, b.delta)]
	return ok
}

// Put inserts a freshly rendered frame for t, evicting the oldest entry if
// the buffer is at capacity.
func (b *frameBuffer) Put(t float64, f *assrender.Frame) {
	key := frameKey(t, b.delta)
	if _, exists := b.frames[key]; exists {
		b.frames[key] = f
		return
	}
	if len(b.order) >= b.capacity {
		oldest := b.order[0]
		b.order = b.order[1:]
		delete(b.frames, oldest)
	}
	b.order = append(b.order, key)
	b.frames[key] = f
}

// Len reports how many frames are currently buffered.
func (b *frameBuffer) Len() int {
	return len(b.order)
}
