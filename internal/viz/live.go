package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/turb2d/internal/analysis"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/metrics"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/sim"
	"github.com/san-kum/turb2d/internal/spectral"
)

const historyCapacity = 600

// Frame is a rendered view of the solver state at one iteration.
type Frame struct {
	Iteration int
	Time      float64
	Dt        float64
	Energy    float64
	Enstrophy float64
	Vorticity *spectral.PhysicalField
	Spectrum  analysis.Spectrum
}

// Feed is a sim.Observer that publishes a Frame every few iterations.
// Frames are dropped while the consumer is behind.
type Feed struct {
	every   int
	tr      spectral.Transform
	params  physics.Params
	frames  chan Frame
	dropped int
}

func NewFeed(s *sim.Simulator, every int) *Feed {
	if every < 1 {
		every = 1
	}
	return &Feed{
		every:  every,
		tr:     s.Transform(),
		params: s.Config().Physics,
		frames: make(chan Frame, 1),
	}
}

func (f *Feed) OnStep(state dynamo.State, w *spectral.Field) {
	if state.Iteration%f.every != 0 {
		return
	}
	if len(f.frames) == cap(f.frames) {
		f.dropped++
		return
	}
	ev := metrics.NewEvaluation(w, f.params, f.tr)
	f.frames <- Frame{
		Iteration: state.Iteration,
		Time:      state.Time,
		Dt:        state.Dt,
		Energy:    metrics.Energy(ev),
		Enstrophy: metrics.Enstrophy(ev),
		Vorticity: ev.Physical(w),
		Spectrum:  analysis.Spectra(w),
	}
}

func (f *Feed) Frames() <-chan Frame { return f.frames }

// Dropped reports how many frames were skipped.
func (f *Feed) Dropped() int { return f.dropped }

// Close ends the stream. It must be called from the goroutine running the
// simulation, after Run returns.
func (f *Feed) Close() { close(f.frames) }

type frameMsg Frame

type doneMsg struct{}

func waitFrame(ch <-chan Frame) tea.Cmd {
	return func() tea.Msg {
		fr, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return frameMsg(fr)
	}
}

type view int

const (
	viewVorticity view = iota
	viewSpectrum
)

// Model is the Bubble Tea model for the live view.
type Model struct {
	feed     <-chan Frame
	title    string
	stopTime float64
	stopIter int

	frame     Frame
	have      bool
	energy    []float64
	enstrophy []float64

	view   view
	frozen bool
	done   bool

	cols, rows int
}

func NewModel(feed <-chan Frame, title string, cfg sim.Config) Model {
	return Model{
		feed:      feed,
		title:     title,
		stopTime:  cfg.StopTime,
		stopIter:  cfg.StopIteration,
		energy:    make([]float64, 0, historyCapacity),
		enstrophy: make([]float64, 0, historyCapacity),
		cols:      64,
		rows:      32,
	}
}

func (m Model) Init() tea.Cmd { return waitFrame(m.feed) }

// Update consumes frames and handles key bindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.frozen = !m.frozen
		case "v":
			m.view = (m.view + 1) % 2
		case "t":
			NextTheme()
		}
	case tea.WindowSizeMsg:
		m.cols = max(16, min(msg.Width-50, 2*(msg.Height-4)))
		m.rows = max(8, m.cols/2)
	case frameMsg:
		if !m.frozen {
			m.frame, m.have = Frame(msg), true
			m.energy = appendHistory(m.energy, msg.Energy)
			m.enstrophy = appendHistory(m.enstrophy, msg.Enstrophy)
		}
		return m, waitFrame(m.feed)
	case doneMsg:
		m.done = true
	}
	return m, nil
}

func appendHistory(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		h = append(h[:0], h[1:]...)
	}
	return append(h, v)
}

func (m Model) progress() float64 {
	switch {
	case m.stopTime > 0:
		return m.frame.Time / m.stopTime
	case m.stopIter > 0:
		return float64(m.frame.Iteration) / float64(m.stopIter)
	}
	return 0
}

func (m Model) View() string {
	if !m.have {
		return headerStyle().Render(m.title) + "\nwaiting for first frame..."
	}

	var main string
	switch m.view {
	case viewSpectrum:
		c := NewCanvas(m.cols, m.rows/2)
		c.PlotLogLog(m.frame.Spectrum.K, m.frame.Spectrum.E)
		main = lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Render(c.String()) +
			"\n" + valueStyle.Render("E(k), log-log")
	default:
		main = Shade(m.frame.Vorticity, m.cols, m.rows/2)
	}

	var s strings.Builder
	s.WriteString(headerStyle().Render(m.title) + "\n")
	switch {
	case m.done:
		s.WriteString(statusStyle(CurrentTheme.Success).Render("FINISHED") + "\n\n")
	case m.frozen:
		s.WriteString(statusStyle(CurrentTheme.Warning).Render("FROZEN") + "\n\n")
	default:
		s.WriteString(statusStyle(CurrentTheme.Success).Render("RUNNING") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d", m.frame.Iteration))
	row("Time", fmt.Sprintf("%.4f", m.frame.Time))
	row("dt", fmt.Sprintf("%.3e", m.frame.Dt))
	row("E", fmt.Sprintf("%.5e", m.frame.Energy))
	row("Z", fmt.Sprintf("%.5e", m.frame.Enstrophy))
	row("k peak", fmt.Sprintf("%.2f", m.frame.Spectrum.Peak()))
	s.WriteString(ProgressBar(m.progress(), 30) + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("E(t)"))
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Z(t)") + Sparkline(m.enstrophy, 28) + "\n")
	s.WriteString(helpStyle.Render("SP:freeze V:view T:theme Q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(main), statsStyle.Render(s.String()))
}

// RunLive runs s while rendering it in the terminal. Quitting the view
// cancels the run.
func RunLive(ctx context.Context, s *sim.Simulator, title string, every int) (*dynamo.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := NewFeed(s, every)
	s.AddObserver(feed)

	type outcome struct {
		res *dynamo.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.Run(ctx)
		feed.Close()
		done <- outcome{res, err}
	}()

	_, uiErr := tea.NewProgram(NewModel(feed.Frames(), title, s.Config()), tea.WithAltScreen()).Run()
	cancel()
	out := <-done
	if uiErr != nil {
		return out.res, fmt.Errorf("live view: %w", uiErr)
	}
	return out.res, out.err
}
