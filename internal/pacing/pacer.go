// Package pacing holds a render loop to a target frame rate.
package pacing

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTarget = errors.New("pacing: target fps must be positive")
	ErrInvalidWindow = errors.New("pacing: window must be positive")
)

// window is a fixed-length ring of durations with a running sum.
type window struct {
	ring  []time.Duration
	next  int
	count int
	sum   time.Duration
}

func newWindow(n int) window {
	return window{ring: make([]time.Duration, n)}
}

func (w *window) add(d time.Duration) {
	if w.count == len(w.ring) {
		w.sum -= w.ring[w.next]
	} else {
		w.count++
	}
	w.ring[w.next] = d
	w.sum += d
	w.next = (w.next + 1) % len(w.ring)
}

func (w *window) rate() float64 {
	if w.count == 0 || w.sum <= 0 {
		return 0
	}
	return float64(w.count) / w.sum.Seconds()
}

func (w *window) values() []time.Duration {
	out := make([]time.Duration, 0, w.count)
	start := 0
	if w.count == len(w.ring) {
		start = w.next
	}
	for i := 0; i < w.count; i++ {
		out = append(out, w.ring[(start+i)%len(w.ring)])
	}
	return out
}

// Pacer tracks two rolling windows: the work time of each frame, which
// drives SleepFor, and the interval between frame starts, which drives FPS.
type Pacer struct {
	target time.Duration
	work   window
	period window
	last   time.Duration
	mark   time.Time
	marked bool
}

func New(targetFPS, size int) (*Pacer, error) {
	if targetFPS <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTarget, targetFPS)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, size)
	}
	return &Pacer{
		target: time.Second / time.Duration(targetFPS),
		work:   newWindow(size),
		period: newWindow(size),
	}, nil
}

// Target is the frame period.
func (p *Pacer) Target() time.Duration { return p.target }

// Record adds the work time of the frame just rendered.
func (p *Pacer) Record(d time.Duration) {
	p.last = max(d, 0)
	p.work.add(p.last)
}

// Mark notes the start of a frame. From the second call on, the time since
// the previous mark, sleep included, enters the FPS window.
func (p *Pacer) Mark(t time.Time) {
	if p.marked {
		p.period.add(max(t.Sub(p.mark), 0))
	}
	p.mark, p.marked = t, true
}

// SleepFor is the time left in the current period after the last frame,
// or zero if the last frame overran.
func (p *Pacer) SleepFor() time.Duration {
	if p.work.count == 0 || p.last >= p.target {
		return 0
	}
	return p.target - p.last
}

// FPS is the achieved frame rate over the window; 0 until two frames have
// been marked.
func (p *Pacer) FPS() float64 { return p.period.rate() }

// Durations returns the recorded work times, oldest first.
func (p *Pacer) Durations() []time.Duration { return p.work.values() }
