// Package loop runs the interactive render loop: poll input, advance the
// sampling origin, draw one frame, write it once, then pace.
package loop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/noisefield/internal/input"
	"github.com/san-kum/noisefield/internal/noise"
	"github.com/san-kum/noisefield/internal/pacing"
	"github.com/san-kum/noisefield/internal/render"
)

var (
	ErrOutput            = errors.New("loop: output write failed")
	ErrMissingDependency = errors.New("loop: missing dependency")
)

type State int

const (
	StateInitializing State = iota
	StateRunning
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Viewport is the terminal size in cells.
type Viewport struct {
	Width, Height int
}

// Deps are the collaborators the loop drives. Size, Sleep, Now and Logger
// are optional.
type Deps struct {
	Sampler noise.Sampler
	Input   input.Source
	Output  io.Writer
	Size    func() (width, height int)
	Sleep   func(time.Duration)
	Now     func() time.Time
	Logger  *slog.Logger
}

type Settings struct {
	FPS             int
	CacheCapacity   int
	Precision       int
	RefreshInterval int
	PacingWindow    int
	ReadChunk       int
	Origin          noise.Coord
	Velocity        input.Velocity
	Sensitivity     float64
	WheelStep       float64
	CellScaleX      float64
	CellScaleY      float64
	ShowHeader      bool
	// MaxFrames stops the loop after that many frames; 0 runs until quit.
	MaxFrames uint64
}

func DefaultSettings() Settings {
	opts := input.DefaultOptions()
	return Settings{
		FPS:             30,
		CacheCapacity:   2000,
		Precision:       1,
		RefreshInterval: 30,
		PacingWindow:    60,
		ReadChunk:       opts.ChunkSize,
		Sensitivity:     opts.Sensitivity,
		WheelStep:       opts.WheelStep,
		CellScaleX:      0.1,
		CellScaleY:      0.2,
	}
}

// Summary describes a finished session.
type Summary struct {
	Frames     uint64
	Elapsed    time.Duration
	FPS        float64
	Cache      noise.CacheStats
	Min, Max   float64
	Velocity   input.Velocity
	Origin     noise.Coord
	Viewport   Viewport
	FrameTimes []time.Duration
}

type Loop struct {
	deps Deps
	cfg  Settings
	log  *slog.Logger

	state    State
	cache    *noise.Cache
	input    *input.Controller
	pacer    *pacing.Pacer
	fb       *render.FrameBuffer
	viewport Viewport
	origin   noise.Coord
	frame    uint64

	started time.Time
	elapsed time.Duration
	minV    float64
	maxV    float64
	sampled bool
}

func New(deps Deps, cfg Settings) (*Loop, error) {
	switch {
	case deps.Sampler == nil:
		return nil, fmt.Errorf("%w: sampler", ErrMissingDependency)
	case deps.Input == nil:
		return nil, fmt.Errorf("%w: input", ErrMissingDependency)
	case deps.Output == nil:
		return nil, fmt.Errorf("%w: output", ErrMissingDependency)
	}
	if deps.Size == nil {
		deps.Size = func() (int, int) { return 80, 24 }
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.RefreshInterval < 1 {
		return nil, fmt.Errorf("loop: refresh interval must be positive, got %d", cfg.RefreshInterval)
	}

	cache, err := noise.NewCache(deps.Sampler, cfg.CacheCapacity, cfg.Precision)
	if err != nil {
		return nil, err
	}
	pacer, err := pacing.New(cfg.FPS, cfg.PacingWindow)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		deps:   deps,
		cfg:    cfg,
		log:    deps.Logger,
		state:  StateInitializing,
		cache:  cache,
		pacer:  pacer,
		origin: cfg.Origin,
	}
	l.viewport = l.querySize()
	l.fb = render.NewFrameBuffer(l.viewport.Width, l.viewport.Height)
	l.input = input.NewController(deps.Input, input.Options{
		Sensitivity: cfg.Sensitivity,
		WheelStep:   cfg.WheelStep,
		ChunkSize:   cfg.ReadChunk,
		Velocity:    cfg.Velocity,
		Width:       l.viewport.Width,
		Height:      l.viewport.Height,
		Logger:      deps.Logger,
	})
	return l, nil
}

func (l *Loop) querySize() Viewport {
	w, h := l.deps.Size()
	return Viewport{Width: max(w, 0), Height: max(h, 0)}
}

// Run ticks until quit, MaxFrames, ctx cancellation or an output failure.
// Cancellation is only observed between frames.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	l.log.Info("loop: started",
		"width", l.viewport.Width,
		"height", l.viewport.Height,
		"fps", l.cfg.FPS,
		"cache_capacity", l.cfg.CacheCapacity,
		"precision", l.cfg.Precision)

	for {
		if err := ctx.Err(); err != nil {
			l.state = StateTerminating
			l.log.Info("loop: cancelled", "frames", l.frame)
			return l.Summary(), nil
		}

		more, err := l.Tick()
		if err != nil {
			l.log.Error("loop: stopped on error", "frames", l.frame, "error", err)
			return l.Summary(), err
		}
		if !more {
			l.log.Info("loop: finished", "frames", l.frame, "fps", l.pacer.FPS())
			return l.Summary(), nil
		}
	}
}

// Tick runs one iteration. It reports false once the loop has terminated.
func (l *Loop) Tick() (bool, error) {
	if l.state == StateTerminating {
		return false, nil
	}
	start := l.deps.Now()
	if l.state == StateInitializing {
		l.state = StateRunning
		l.started = start
	}
	l.pacer.Mark(start)

	batch := l.input.Poll()
	if batch.Quit {
		l.terminate(start)
		return false, nil
	}

	if l.frame%uint64(l.cfg.RefreshInterval) == 0 {
		l.refreshViewport()
	}

	v := l.input.Velocity()
	l.origin.X += v.X
	l.origin.Y += v.Y
	l.origin.Z += v.Z

	payload, err := l.draw()
	if err != nil {
		l.terminate(start)
		return false, err
	}
	if _, err := l.deps.Output.Write(payload); err != nil {
		l.terminate(start)
		return false, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	end := l.deps.Now()
	l.pacer.Record(end.Sub(start))
	if d := l.pacer.SleepFor(); d > 0 {
		l.deps.Sleep(d)
	}
	l.frame++
	l.elapsed = l.deps.Now().Sub(l.started)

	if l.cfg.MaxFrames > 0 && l.frame >= l.cfg.MaxFrames {
		l.state = StateTerminating
		return false, nil
	}
	return true, nil
}

func (l *Loop) terminate(now time.Time) {
	l.state = StateTerminating
	l.elapsed = now.Sub(l.started)
}

func (l *Loop) refreshViewport() {
	vp := l.querySize()
	if vp != l.viewport {
		l.log.Debug("loop: viewport changed", "width", vp.Width, "height", vp.Height, "frame", l.frame)
		l.viewport = vp
	}
	l.input.SetViewport(vp.Width, vp.Height)
}

func (l *Loop) draw() ([]byte, error) {
	width, rows := l.viewport.Width, l.viewport.Height
	if l.cfg.ShowHeader {
		rows = max(rows-1, 0)
	}

	l.fb.Begin(width, rows)
	if l.cfg.ShowHeader && l.viewport.Height > 0 {
		l.fb.Header(l.status().String())
	}

	for y := 0; y < rows; y++ {
		cy := l.origin.Y + float64(y)*l.cfg.CellScaleY
		for x := 0; x < width; x++ {
			c := noise.Coord{
				X: l.origin.X + float64(x)*l.cfg.CellScaleX,
				Y: cy,
				Z: l.origin.Z,
			}
			v := l.cache.GetOrCompute(c)
			l.observe(v)
			l.fb.Append(render.ToColor(v, l.frame))
		}
	}
	return l.fb.Finish()
}

func (l *Loop) observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	if !l.sampled {
		l.minV, l.maxV, l.sampled = v, v, true
		return
	}
	l.minV = min(l.minV, v)
	l.maxV = max(l.maxV, v)
}

func (l *Loop) status() render.Status {
	px, py := l.input.Pointer()
	v := l.input.Velocity()
	return render.Status{
		PointerX:   px,
		PointerY:   py,
		VX:         v.X,
		VY:         v.Y,
		VZ:         v.Z,
		FPS:        l.pacer.FPS(),
		CacheRatio: l.cache.Stats().HitRatio(),
	}
}

func (l *Loop) State() State             { return l.state }
func (l *Loop) Frame() uint64            { return l.frame }
func (l *Loop) Viewport() Viewport       { return l.viewport }
func (l *Loop) Origin() noise.Coord      { return l.origin }
func (l *Loop) Velocity() input.Velocity { return l.input.Velocity() }

func (l *Loop) Summary() Summary {
	return Summary{
		Frames:     l.frame,
		Elapsed:    l.elapsed,
		FPS:        l.pacer.FPS(),
		Cache:      l.cache.Stats(),
		Min:        l.minV,
		Max:        l.maxV,
		Velocity:   l.input.Velocity(),
		Origin:     l.origin,
		Viewport:   l.viewport,
		FrameTimes: l.pacer.Durations(),
	}
}
