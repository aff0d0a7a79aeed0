package input

import (
	"io"
	"log/slog"
)

const DefaultChunkSize = 1024

// Source is a non-blocking byte stream. ReadAvailable returns 0, nil when
// nothing is pending.
type Source interface {
	ReadAvailable(p []byte) (int, error)
}

type Options struct {
	// Sensitivity scales pointer deltas (cells) into velocity.
	Sensitivity float64
	// WheelStep is added to the Z velocity per wheel notch.
	WheelStep float64
	ChunkSize int
	Velocity  Velocity
	Width     int
	Height    int
	Logger    *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Sensitivity: 0.001,
		WheelStep:   0.01,
		ChunkSize:   DefaultChunkSize,
		Width:       80,
		Height:      24,
	}
}

// Batch is the result of one Poll. Events aliases controller storage and is
// overwritten by the next Poll.
type Batch struct {
	Events  []Event
	Quit    bool
	Changed bool
}

// Controller turns raw terminal input into velocity changes.
type Controller struct {
	src    Source
	opts   Options
	log    *slog.Logger
	buf    []byte
	events []Event

	velocity Velocity
	pointerX int
	pointerY int
	tracking bool
}

func NewController(src Source, opts Options) *Controller {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultChunkSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Controller{
		src:      src,
		opts:     opts,
		log:      log,
		buf:      make([]byte, opts.ChunkSize),
		events:   make([]Event, 0, 16),
		velocity: opts.Velocity,
	}
	c.SetViewport(opts.Width, opts.Height)
	return c
}

// SetViewport recentres the pointer reference until the first motion report
// arrives; after that deltas are taken from the last reported position.
func (c *Controller) SetViewport(width, height int) {
	if c.tracking {
		return
	}
	c.pointerX = width / 2
	c.pointerY = height / 2
}

// Poll reads at most one chunk without blocking and applies it.
func (c *Controller) Poll() Batch {
	n, err := c.src.ReadAvailable(c.buf)
	if err != nil {
		c.log.Debug("input: read failed", "error", err)
		return Batch{}
	}
	if n == 0 {
		return Batch{}
	}

	c.events = Parse(c.buf[:n], c.events[:0])
	if len(c.events) == 0 {
		c.log.Debug("input: dropped unrecognized input", "bytes", n, "data", string(c.buf[:n]))
	}

	batch := Batch{Events: c.events}
	for _, ev := range c.events {
		switch ev.Kind {
		case KindQuit:
			batch.Quit = true
		case KindMotion:
			if c.applyMotion(ev.X, ev.Y) {
				batch.Changed = true
			}
		case KindWheel:
			c.velocity.Z += float64(ev.Wheel) * c.opts.WheelStep
			batch.Changed = true
		}
	}
	return batch
}

func (c *Controller) applyMotion(x, y int) bool {
	dx := x - c.pointerX
	dy := y - c.pointerY
	c.pointerX, c.pointerY = x, y
	c.tracking = true
	if dx == 0 && dy == 0 {
		return false
	}
	c.velocity.X += float64(dx) * c.opts.Sensitivity
	c.velocity.Y += float64(dy) * c.opts.Sensitivity
	return true
}

func (c *Controller) Velocity() Velocity { return c.velocity }

// Pointer returns the last known pointer cell.
func (c *Controller) Pointer() (x, y int) { return c.pointerX, c.pointerY }
