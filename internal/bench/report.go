package bench

import (
	"fmt"
	"strings"

	"github.com/san-kum/noisefield/internal/viz"
)

// FormatReport renders a finished benchmark for the terminal.
func FormatReport(r Report) string {
	var s strings.Builder

	o := r.Options
	s.WriteString(viz.Title.Render("noisefield benchmark") + "\n")
	s.WriteString(viz.Subtle.Render(fmt.Sprintf("%d frames of %dx%d, cache %d @ precision %d",
		o.Frames, o.Width, o.Height, o.CacheCapacity, o.Precision)) + "\n\n")

	for _, res := range []Result{r.Naive, r.Pipeline} {
		s.WriteString(viz.Metric(string(res.Mode), fmt.Sprintf("%8.1f ms total  %7.1f fps",
			float64(res.Total.Microseconds())/1000, res.FPS)) + "\n")
	}
	s.WriteString(viz.Metric("speedup", fmt.Sprintf("%.2fx", r.Speedup)) + "\n")
	s.WriteString(viz.Metric("cache", fmt.Sprintf("%.1f%% hits, %d entries, %d evictions",
		r.Cache.HitRatio()*100, r.Cache.Len, r.Cache.Evictions)) + "\n")

	if chart := viz.CompareFrameTimes(r.Naive.FrameTimes, r.Pipeline.FrameTimes, 60, 8,
		"frame time (ms): naive red, pipeline green"); chart != "" {
		s.WriteString("\n" + viz.Separator(60) + "\n")
		s.WriteString(chart + "\n")
	}
	return viz.Panel.Render(s.String())
}
