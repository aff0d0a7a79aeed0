package bench

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/noisefield/internal/noise"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Frames = 5
	opts.Width = 8
	opts.Height = 4
	opts.Sampler = noise.NewPerlin(noise.DefaultParams())
	return opts
}

func TestRun(t *testing.T) {
	var seen []Progress
	rep, err := Run(context.Background(), smallOptions(), func(p Progress) { seen = append(seen, p) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rep.Naive.FrameTimes) != 5 || len(rep.Pipeline.FrameTimes) != 5 {
		t.Errorf("frame counts: naive %d, pipeline %d", len(rep.Naive.FrameTimes), len(rep.Pipeline.FrameTimes))
	}
	if len(seen) != 10 {
		t.Fatalf("expected 10 progress reports, got %d", len(seen))
	}
	if seen[0].Mode != ModeNaive || seen[9].Mode != ModePipeline || seen[9].Frame != 5 {
		t.Errorf("unexpected progress order: first %+v last %+v", seen[0], seen[9])
	}

	st := rep.Cache
	if st.Hits+st.Misses != 5*8*4 {
		t.Errorf("expected one lookup per cell, got %+v", st)
	}
	if st.Hits == 0 {
		t.Error("expected cache hits between neighbouring frames")
	}
}

func TestRun_InvalidOptions(t *testing.T) {
	opts := smallOptions()
	opts.Frames = 0
	if _, err := Run(context.Background(), opts, nil); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}

	opts = smallOptions()
	opts.Sampler = nil
	if _, err := Run(context.Background(), opts, nil); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}

	opts = smallOptions()
	opts.CacheCapacity = 0
	if _, err := Run(context.Background(), opts, nil); !errors.Is(err, noise.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, smallOptions(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFormatReport(t *testing.T) {
	rep := Report{
		Options:  smallOptions(),
		Naive:    Result{Mode: ModeNaive, Total: 40 * time.Millisecond, FrameTimes: []time.Duration{20 * time.Millisecond, 20 * time.Millisecond}},
		Pipeline: Result{Mode: ModePipeline, Total: 10 * time.Millisecond, FrameTimes: []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}},
		Speedup:  4,
		Cache:    noise.CacheStats{Hits: 3, Misses: 1, Len: 1},
	}
	out := FormatReport(rep)
	for _, want := range []string{"naive", "pipeline", "4.00x", "75.0% hits", "◆"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestModel_Update(t *testing.T) {
	cancelled := false
	m := newModel(smallOptions(), func() { cancelled = true })

	next, _ := m.Update(progressMsg{Mode: ModeNaive, Frame: 2, Total: 5, Last: time.Millisecond})
	m = next.(model)
	if !strings.Contains(m.View(), "2/5") {
		t.Errorf("progress not shown:\n%s", m.View())
	}

	next, _ = m.Update(progressMsg{Mode: ModePipeline, Frame: 1, Total: 5, Last: time.Millisecond})
	m = next.(model)
	if len(m.recent) != 1 {
		t.Errorf("sparkline history not reset on mode change: %v", m.recent)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled {
		t.Error("q did not cancel the run")
	}

	next, cmd := m.Update(doneMsg{report: Report{Options: smallOptions(), Speedup: 2}})
	m = next.(model)
	if cmd == nil || m.report == nil {
		t.Fatal("expected quit with a report")
	}
	if !strings.Contains(m.View(), "2.00x") {
		t.Errorf("final view missing report:\n%s", m.View())
	}
}
