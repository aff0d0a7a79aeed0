package bench

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/noisefield/internal/viz"
)

type progressMsg Progress

type doneMsg struct {
	report Report
	err    error
}

type model struct {
	opts   Options
	cancel context.CancelFunc

	progress Progress
	recent   []float64
	report   *Report
	err      error
}

func newModel(opts Options, cancel context.CancelFunc) model {
	return model{opts: opts, cancel: cancel}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
		}
	case progressMsg:
		if msg.Mode != m.progress.Mode {
			m.recent = m.recent[:0]
		}
		m.progress = Progress(msg)
		m.recent = append(m.recent, float64(msg.Last.Microseconds())/1000)
		if len(m.recent) > 40 {
			m.recent = m.recent[1:]
		}
	case doneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.report = &msg.report
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.report != nil {
		return FormatReport(*m.report) + "\n"
	}
	if m.err != nil {
		return viz.Subtle.Render("benchmark stopped: "+m.err.Error()) + "\n"
	}

	var s strings.Builder
	s.WriteString(viz.Title.Render("noisefield benchmark") + "\n\n")

	mode := m.progress.Mode
	if mode == "" {
		mode = ModeNaive
	}
	pct := 0.0
	if m.progress.Total > 0 {
		pct = float64(m.progress.Frame) / float64(m.progress.Total)
	}
	s.WriteString(viz.Metric(string(mode), fmt.Sprintf("%d/%d", m.progress.Frame, m.opts.Frames)) + "\n")
	s.WriteString(viz.ProgressBar(pct, 40) + "\n")
	s.WriteString(viz.Sparkline(m.recent, 40) + "\n\n")
	s.WriteString(viz.KeyHint.Render("q to abort") + "\n")
	return s.String()
}

// RunWithView runs the benchmark behind a bubbletea progress display.
func RunWithView(ctx context.Context, opts Options, in io.Reader, out io.Writer) (Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(opts, cancel), tea.WithInput(in), tea.WithOutput(out))
	go func() {
		rep, err := Run(ctx, opts, func(pr Progress) { p.Send(progressMsg(pr)) })
		p.Send(doneMsg{report: rep, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return Report{}, err
	}
	m := final.(model)
	if m.err != nil {
		return Report{}, m.err
	}
	return *m.report, nil
}
