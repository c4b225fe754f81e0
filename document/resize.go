package document

import (
	"sync"
	"time"
)

// DefaultResizeDelay is the quiet period before a resize is acted on.
const DefaultResizeDelay = 150 * time.Millisecond

// ResizeTrigger debounces container width observations. After a quiet
// period it calls fn once with the last observed width. Widths that are
// not positive, or equal to the width last fired, are ignored.
type ResizeTrigger struct {
	delay time.Duration
	fn    func(width float64)

	mu      sync.Mutex
	timer   *time.Timer
	pending float64
	fired   float64
	stopped bool
}

// NewResizeTrigger creates a trigger. A non-positive delay uses
// DefaultResizeDelay.
func NewResizeTrigger(delay time.Duration, fn func(width float64)) *ResizeTrigger {
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	return &ResizeTrigger{delay: delay, fn: fn}
}

// Observe records a container width.
func (r *ResizeTrigger) Observe(width float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || width <= 0 {
		return
	}
	if width == r.fired && r.timer == nil {
		return
	}
	r.pending = width
	if r.timer != nil {
		r.timer.Reset(r.delay)
		return
	}
	r.timer = time.AfterFunc(r.delay, r.fire)
}

func (r *ResizeTrigger) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	width := r.pending
	if width == r.fired {
		r.mu.Unlock()
		return
	}
	r.fired = width
	r.mu.Unlock()

	r.fn(width)
}

// Stop cancels a pending trigger. Later observations are ignored.
func (r *ResizeTrigger) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
