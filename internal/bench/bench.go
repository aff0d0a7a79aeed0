// Package bench measures frame cost without a terminal.
//
// Run renders the same animated field twice into io.Discard: once the naive
// way (uncached samples, per-cell string building, a write per row) and once
// through the cache and frame buffer with a single write per frame.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/san-kum/noisefield/internal/noise"
	"github.com/san-kum/noisefield/internal/render"
)

var ErrInvalidOptions = errors.New("bench: invalid options")

type Mode string

const (
	ModeNaive    Mode = "naive"
	ModePipeline Mode = "pipeline"
)

type Options struct {
	Frames        int
	Width         int
	Height        int
	CacheCapacity int
	Precision     int
	// Step is added to every origin axis each frame.
	Step       float64
	CellScaleX float64
	CellScaleY float64
	Sampler    noise.Sampler
}

func DefaultOptions() Options {
	return Options{
		Frames:        100,
		Width:         80,
		Height:        24,
		CacheCapacity: 2000,
		Precision:     1,
		Step:          0.01,
		CellScaleX:    0.1,
		CellScaleY:    0.2,
	}
}

// Progress is reported after every frame.
type Progress struct {
	Mode  Mode
	Frame int
	Total int
	Last  time.Duration
}

type Result struct {
	Mode       Mode
	Total      time.Duration
	FPS        float64
	FrameTimes []time.Duration
}

type Report struct {
	Options  Options
	Naive    Result
	Pipeline Result
	Speedup  float64
	Cache    noise.CacheStats
}

func (o Options) validate() error {
	if o.Frames < 1 || o.Width < 1 || o.Height < 1 {
		return fmt.Errorf("%w: frames and size must be positive, got %d frames of %dx%d",
			ErrInvalidOptions, o.Frames, o.Width, o.Height)
	}
	if o.Sampler == nil {
		return fmt.Errorf("%w: no sampler", ErrInvalidOptions)
	}
	return nil
}

// Run executes both modes. progress may be nil.
func Run(ctx context.Context, opts Options, progress func(Progress)) (Report, error) {
	if err := opts.validate(); err != nil {
		return Report{}, err
	}
	if progress == nil {
		progress = func(Progress) {}
	}

	rep := Report{Options: opts}

	naive, err := runMode(ctx, ModeNaive, opts, newNaiveFrame(opts), progress)
	if err != nil {
		return rep, err
	}
	rep.Naive = naive

	cache, err := noise.NewCache(opts.Sampler, opts.CacheCapacity, opts.Precision)
	if err != nil {
		return rep, err
	}
	pipeline, err := runMode(ctx, ModePipeline, opts, newPipelineFrame(opts, cache), progress)
	if err != nil {
		return rep, err
	}
	rep.Pipeline = pipeline
	rep.Cache = cache.Stats()

	if pipeline.Total > 0 {
		rep.Speedup = float64(naive.Total) / float64(pipeline.Total)
	}
	return rep, nil
}

type frameFunc func(frame int, origin noise.Coord) error

func runMode(ctx context.Context, mode Mode, opts Options, draw frameFunc, progress func(Progress)) (Result, error) {
	res := Result{Mode: mode, FrameTimes: make([]time.Duration, 0, opts.Frames)}

	var origin noise.Coord
	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("bench: %s interrupted at frame %d: %w", mode, i, err)
		}

		start := time.Now()
		if err := draw(i, origin); err != nil {
			return res, fmt.Errorf("bench: %s frame %d: %w", mode, i, err)
		}
		d := time.Since(start)

		res.FrameTimes = append(res.FrameTimes, d)
		res.Total += d
		origin.X += opts.Step
		origin.Y += opts.Step
		origin.Z += opts.Step

		progress(Progress{Mode: mode, Frame: i + 1, Total: opts.Frames, Last: d})
	}

	if res.Total > 0 {
		res.FPS = float64(len(res.FrameTimes)) / res.Total.Seconds()
	}
	return res, nil
}

// newNaiveFrame samples every cell, concatenates strings cell by cell and
// writes each row separately.
func newNaiveFrame(opts Options) frameFunc {
	return func(frame int, origin noise.Coord) error {
		if _, err := io.WriteString(io.Discard, "\x1b[1;1H\x1b[0m"); err != nil {
			return err
		}
		for y := 0; y < opts.Height; y++ {
			line := ""
			for x := 0; x < opts.Width; x++ {
				v := opts.Sampler.Sample(noise.Coord{
					X: origin.X + float64(x)*opts.CellScaleX,
					Y: origin.Y + float64(y)*opts.CellScaleY,
					Z: origin.Z,
				})
				value := int(math.Round((v + 1) / 2 * 255))
				if value < 0 {
					value = 0
				}
				if value > 255 {
					value = 255
				}
				line += fmt.Sprintf("\x1b[48;2;%d;%d;%dm ", value, 255-value, frame%255)
			}
			if _, err := io.WriteString(io.Discard, line+"\x1b[0m\x1b[1E"); err != nil {
				return err
			}
		}
		return nil
	}
}

func newPipelineFrame(opts Options, cache *noise.Cache) frameFunc {
	fb := render.NewFrameBuffer(opts.Width, opts.Height)
	return func(frame int, origin noise.Coord) error {
		fb.Begin(opts.Width, opts.Height)
		for y := 0; y < opts.Height; y++ {
			cy := origin.Y + float64(y)*opts.CellScaleY
			for x := 0; x < opts.Width; x++ {
				v := cache.GetOrCompute(noise.Coord{X: origin.X + float64(x)*opts.CellScaleX, Y: cy, Z: origin.Z})
				fb.Append(render.ToColor(v, uint64(frame)))
			}
		}
		payload, err := fb.Finish()
		if err != nil {
			return err
		}
		_, err = io.Discard.Write(payload)
		return err
	}
}
