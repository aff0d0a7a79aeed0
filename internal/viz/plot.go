package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/noisefield/internal/storage"
)

// Milliseconds converts durations for plotting.
func Milliseconds(times []time.Duration) []float64 {
	out := make([]float64, len(times))
	for i, d := range times {
		out[i] = float64(d) / float64(time.Millisecond)
	}
	return out
}

// FrameTimePlot charts frame durations in milliseconds. It returns "" when
// there are fewer than two points.
func FrameTimePlot(times []time.Duration, width, height int, caption string) string {
	if len(times) < 2 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.Precision(1),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.Plot(Milliseconds(times), opts...)
}

// CompareFrameTimes overlays two series, for the naive vs pipeline benchmark.
func CompareFrameTimes(a, b []time.Duration, width, height int, caption string) string {
	if len(a) < 2 || len(b) < 2 {
		return ""
	}
	return asciigraph.PlotMany(
		[][]float64{Milliseconds(a), Milliseconds(b)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
	)
}

// SessionReport renders a stored session's summary and frame-time chart.
func SessionReport(meta storage.SessionMetadata, times []time.Duration) string {
	var s strings.Builder

	s.WriteString(Title.Render(meta.ID) + "\n")
	s.WriteString(Subtle.Render(meta.Timestamp.Format(time.RFC3339)) + "\n\n")

	s.WriteString(Metric("Sampler", fmt.Sprintf("%s (seed %d)", meta.Sampler, meta.Seed)) + "\n")
	if meta.Preset != "" {
		s.WriteString(Metric("Preset", meta.Preset) + "\n")
	}
	s.WriteString(Metric("Viewport", fmt.Sprintf("%dx%d", meta.Width, meta.Height)) + "\n")
	s.WriteString(Metric("Frames", fmt.Sprintf("%d in %.1fs", meta.Frames, meta.ElapsedSecs)) + "\n")
	s.WriteString(Metric("FPS", fmt.Sprintf("%.1f / %d", meta.FPS, meta.TargetFPS)) + "\n")
	s.WriteString(Metric("Cache", fmt.Sprintf("%.0f%% hits, %d entries (cap %d, precision %d)",
		meta.Cache.HitRatio*100, meta.Cache.Entries, meta.Capacity, meta.Precision)) + "\n")
	s.WriteString(Metric("Noise range", fmt.Sprintf("%.3f .. %.3f", meta.Min, meta.Max)) + "\n")
	s.WriteString(Metric("Velocity", fmt.Sprintf("%.3f,%.3f,%.3f", meta.Velocity[0], meta.Velocity[1], meta.Velocity[2])) + "\n")

	if chart := FrameTimePlot(times, 60, 8, "frame time (ms)"); chart != "" {
		s.WriteString("\n" + Separator(60) + "\n")
		s.WriteString(Graph.Render(chart) + "\n")
	}
	return Panel.Render(s.String())
}
