// Package ui is the terminal front end: it maps keys onto the visualizer's
// operations and paints its canvas between frames.
package ui

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/climpviz/internal/util"
	"github.com/olivier-w/climpviz/internal/visualizer"
)

const (
	controlStep    = 0.02
	statusLifetime = 5 * time.Second
	// chromeRows is the number of terminal rows outside the frame.
	chromeRows = 10
)

type phase int

const (
	phaseLoading phase = iota
	phaseReady
	phaseFailed
)

// Model is the Bubbletea model for the visualizer TUI.
type Model struct {
	ctrl       *visualizer.Controller
	canvas     *visualizer.PixelCanvas
	frames     *FrameScheduler
	presenters []visualizer.Presenter
	presenter  int
	title      string
	interval   time.Duration

	// SnapshotDir is where PNG snapshots are written.
	SnapshotDir string

	phase   phase
	ticking bool
	frame   string

	spinner   spinner.Model
	slider    progress.Model
	spring    harmonica.Spring
	sliderPos float64
	sliderVel float64
	keys      keyMap
	help      help.Model

	width      int
	height     int
	status     string
	statusErr  bool
	statusTime time.Time
	quitting   bool
}

// New creates the model. frames must be the scheduler ctrl was built with.
// Controls stay disabled until a LoadedMsg arrives.
func New(ctrl *visualizer.Controller, canvas *visualizer.PixelCanvas, frames *FrameScheduler, title string) Model {
	cfg := ctrl.Config()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	keys := newKeyMap()
	keys.setControlsEnabled(false)

	return Model{
		ctrl:        ctrl,
		canvas:      canvas,
		frames:      frames,
		presenters:  visualizer.Presenters(),
		title:       title,
		interval:    cfg.FrameInterval(),
		SnapshotDir: ".",
		spinner:     s,
		slider: progress.New(
			progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
			progress.WithoutPercentage(),
		),
		spring:    harmonica.NewSpring(harmonica.FPS(cfg.FrameRate), 8.0, 1.0),
		sliderPos: ctrl.Control(),
		keys:      keys,
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForError(m.ctrl.Errors()),
		tea.SetWindowTitle(windowTitle(m.title, false)),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handleMsg(msg)
	return next, cmd
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case LoadedMsg:
		if msg.Err != nil {
			m.phase = phaseFailed
			return m, m.setStatus(fmt.Sprintf("Loading failed: %v", msg.Err), true)
		}
		m.ctrl.SetClip(msg.Clip)
		m.phase = phaseReady
		m.keys.setControlsEnabled(true)
		_ = m.ctrl.RenderFrame()
		m.render()
		return m, m.setStatus(fmt.Sprintf("Loaded %s (%s)", m.title, util.FormatSeconds(m.ctrl.Duration())), false)

	case frameMsg:
		m.ticking = false
		if cb := m.frames.take(); cb != nil {
			cb()
			m.render()
		}
		m.stepSlider()
		return m, m.nextFrame()

	case errMsg:
		return m, tea.Batch(m.setStatus(msg.err.Error(), true), waitForError(m.ctrl.Errors()))

	case snapshotSavedMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("Snapshot failed: %v", msg.err), true)
		}
		return m, m.setStatus("Saved "+msg.path, false)

	case statusExpiredMsg:
		if msg.at.Equal(m.statusTime) {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.slider.Width = max(10, msg.Width-24)
		m.help.Width = msg.Width
		m.render()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.ctrl.State() == visualizer.Playing {
			_ = m.ctrl.TogglePlayback()
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Play):
		if err := m.ctrl.TogglePlayback(); err != nil {
			return m, nil
		}
		playing := m.ctrl.State() == visualizer.Playing
		return m, tea.Batch(tea.SetWindowTitle(windowTitle(m.title, playing)), m.nextFrame())

	case key.Matches(msg, m.keys.Filter):
		if err := m.ctrl.ToggleFilter(); err != nil {
			return m, nil
		}
		return m, tea.Batch(m.setStatus(filterStatus(m.ctrl), false), m.nextFrame())

	case key.Matches(msg, m.keys.Lower):
		m.ctrl.ChangeFrequency(m.ctrl.Control() - controlStep)
		return m, m.nextFrame()

	case key.Matches(msg, m.keys.Raise):
		m.ctrl.ChangeFrequency(m.ctrl.Control() + controlStep)
		return m, m.nextFrame()

	case key.Matches(msg, m.keys.View):
		m.presenter = (m.presenter + 1) % len(m.presenters)
		m.render()
		return m, m.setStatus("View: "+m.presenters[m.presenter].Name(), false)

	case key.Matches(msg, m.keys.Snapshot):
		return m, m.snapshot()
	}
	return m, nil
}

// nextFrame starts a frame tick if the controller has a frame queued or the
// slider is still moving, and none is in flight.
func (m *Model) nextFrame() tea.Cmd {
	if m.ticking || (!m.frames.pending() && !m.sliderMoving()) {
		return nil
	}
	m.ticking = true
	return frameCmd(m.interval)
}

func (m *Model) stepSlider() {
	m.sliderPos, m.sliderVel = m.spring.Update(m.sliderPos, m.sliderVel, m.ctrl.Control())
	if !m.sliderMoving() {
		m.sliderPos, m.sliderVel = m.ctrl.Control(), 0
	}
}

func (m Model) sliderMoving() bool {
	return math.Abs(m.sliderPos-m.ctrl.Control()) > 1e-3 || math.Abs(m.sliderVel) > 1e-3
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	m.statusTime = time.Now()
	return expireStatus(m.statusTime)
}

// render converts the canvas into text for the current terminal size.
func (m *Model) render() {
	img := m.canvas.Image()
	if img == nil {
		return
	}
	cols, rows := m.frameSize()
	m.frame = m.presenters[m.presenter].Render(img, cols, rows)
}

func (m Model) frameSize() (cols, rows int) {
	w, h := m.width, m.height
	if w < 30 {
		w = 80
	}
	if h < chromeRows+4 {
		h = 24
	}
	return w - 4, h - chromeRows
}

func (m *Model) snapshot() tea.Cmd {
	var buf bytes.Buffer
	if err := m.canvas.WritePNG(&buf); err != nil {
		return m.setStatus(fmt.Sprintf("Snapshot failed: %v", err), true)
	}
	path := filepath.Join(m.SnapshotDir, fmt.Sprintf("climpviz-%s.png", time.Now().Format("20060102-150405.000")))
	return func() tea.Msg {
		err := os.WriteFile(path, buf.Bytes(), 0o644)
		return snapshotSavedMsg{path: path, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("climpviz") + "  " + titleStyle.Render(m.title) + "\n\n")

	switch m.phase {
	case phaseLoading:
		b.WriteString("  " + m.spinner.View() + " " + statusStyle.Render("Loading "+m.title+"...") + "\n")
	case phaseFailed:
		b.WriteString("  " + errorStyle.Render(m.status) + "\n")
	default:
		b.WriteString(indent(frameStyle.Render(m.frame), 1) + "\n")
		b.WriteString("  " + m.playbackLine() + "\n")
		b.WriteString("  " + m.cutoffLine() + "\n")
	}

	if m.phase != phaseFailed && m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	} else {
		b.WriteString("\n")
	}
	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m Model) playbackLine() string {
	icon, text := "❚❚", "stopped"
	if m.ctrl.State() == visualizer.Playing {
		icon, text = "▶", "playing"
	}
	left := fmt.Sprintf("%s  %s  ·  %s", icon, text, filterStatus(m.ctrl))

	pos := m.ctrl.Position()
	bar := renderPositionBar(pos, m.ctrl.Duration(), max(10, m.width-lipgloss.Width(left)-24))
	return statusStyle.Render(left) + "  " +
		timeStyle.Render(util.FormatSeconds(pos)) + " " + bar + " " +
		timeStyle.Render(util.FormatSeconds(m.ctrl.Duration()))
}

func (m Model) cutoffLine() string {
	label := statusStyle.Render("cutoff ")
	return label + m.slider.ViewAs(clamp01(m.sliderPos)) + " " + timeStyle.Render(formatHz(m.ctrl.Cutoff()))
}

func filterStatus(c *visualizer.Controller) string {
	if c.Filter() == visualizer.Filtered {
		return "high-pass " + formatHz(c.Cutoff())
	}
	return "unfiltered"
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

func indent(s string, n int) string {
	pad := spaces(n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

func windowTitle(title string, playing bool) string {
	if playing {
		return "▶ " + title + " - climpviz"
	}
	return "⏸ " + title + " - climpviz"
}
