package viz

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/session"
	"github.com/san-kum/simwatch/internal/timeline"
)

const (
	defaultWidth  = 120
	defaultHeight = 36
	panelWidth    = 46
	maxLogLines   = 8
	maxNotes      = 3
	seriesBuckets = 30
	frameRate     = time.Second / 10
)

// Controller is the part of the session the TUI drives.
type Controller interface {
	Submit(a session.Action) bool
	State() session.State
}

// SeriesSource provides the cumulative event series for the chart.
type SeriesSource interface {
	Series(cursor float64, buckets int) []float64
}

type (
	TickMsg       time.Time
	ViewMsg       timeline.View
	StateMsg      session.State
	NoteMsg       string
	DisconnectMsg struct{ Err error }
)

// Options configure a Model. Events may be nil.
type Options struct {
	Title      string
	Scene      *Scene
	Controller Controller
	Events     SeriesSource
	Categories []string
	Theme      string
	ScrubStep  float64
}

// Model is the monitoring TUI: map on the left, session panel on the right.
type Model struct {
	title      string
	scene      *Scene
	ctrl       Controller
	events     SeriesSource
	categories []string
	theme      Theme
	styles     styles
	help       help.Model
	scrubStep  float64

	state         session.State
	view          timeline.View
	notes         []string
	hover         entity.Handle
	width, height int
	canvas        *Canvas
}

func NewModel(o Options) Model {
	theme := GetTheme(o.Theme)
	step := o.ScrubStep
	if step <= 0 {
		step = 1
	}
	m := Model{
		title:      o.Title,
		scene:      o.Scene,
		ctrl:       o.Controller,
		events:     o.Events,
		categories: o.Categories,
		theme:      theme,
		styles:     newStyles(theme),
		help:       help.New(),
		scrubStep:  step,
		width:      defaultWidth,
		height:     defaultHeight,
	}
	if o.Controller != nil {
		m.state = o.Controller.State()
	}
	m.resize()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles keys and session notifications.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m, tick()
	case ViewMsg:
		m.view = timeline.View(msg)
	case StateMsg:
		m.state = session.State(msg)
	case NoteMsg:
		m.note(string(msg))
	case DisconnectMsg:
		m.state.Connected = false
		m.note("connection lost, reconnecting")
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Start):
		if m.state.StartEnabled {
			m.submit(session.Action{Kind: session.ActionStart})
		}
	case key.Matches(msg, keys.Back):
		m.submit(session.Action{Kind: session.ActionScrub, Time: m.state.Cursor - m.scrubStep})
	case key.Matches(msg, keys.Forward):
		m.submit(session.Action{Kind: session.ActionScrub, Time: m.state.Cursor + m.scrubStep})
	case key.Matches(msg, keys.Latest):
		m.submit(session.Action{Kind: session.ActionScrub, Time: m.state.MaxObserved})
	case key.Matches(msg, keys.Hover):
		m.cycleHover()
	case key.Matches(msg, keys.Theme):
		m.theme = NextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) submit(a session.Action) {
	if m.ctrl == nil {
		return
	}
	if !m.ctrl.Submit(a) {
		m.note("busy, input dropped")
	}
}

func (m *Model) note(s string) {
	m.notes = append(m.notes, s)
	if len(m.notes) > maxNotes {
		m.notes = m.notes[len(m.notes)-maxNotes:]
	}
}

// cycleHover selects the next hoverable entity after the current one.
func (m *Model) cycleHover() {
	if m.scene == nil {
		return
	}
	hs := m.scene.Hoverable()
	if len(hs) == 0 {
		m.hover = 0
		return
	}
	for _, h := range hs {
		if h > m.hover {
			m.hover = h
			return
		}
	}
	m.hover = hs[0]
}

func (m *Model) resize() {
	cols := m.width - panelWidth - 4
	rows := m.height - 6
	if cols < 20 {
		cols = 20
	}
	if rows < 8 {
		rows = 8
	}
	m.canvas = NewCanvas(cols, rows)
}

func (m Model) View() string {
	mapView := m.renderMap()
	panel := m.styles.panel.Render(m.renderPanel())
	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, panel)
	return body + "\n" + m.help.View(keys)
}

func (m Model) renderMap() string {
	var b strings.Builder
	title := m.title
	if title == "" {
		title = "SIMWATCH"
	}
	b.WriteString(m.styles.header.Render(strings.ToUpper(title)) + "\n")
	if m.scene != nil {
		Draw(m.canvas, m.scene.Frame(), m.hover, m.theme)
		b.WriteString(m.canvas.Styled())
	}
	return b.String()
}

func (m Model) renderPanel() string {
	var b strings.Builder
	st := m.state

	status := m.styles.idle.Render(strings.ToUpper(st.Phase.String()))
	if st.Phase == session.PhaseRunning {
		status = m.styles.running.Render("RUNNING")
	}
	if !st.Connected {
		status = m.styles.offline.Render("DISCONNECTED")
	}
	b.WriteString(status + "\n")
	control := st.StartLabel
	if !st.StartEnabled {
		control = m.styles.subtle.Render(control)
	}
	b.WriteString("[s] " + control + "\n\n")

	b.WriteString(m.styles.label.Render("Time") + m.styles.value.Render(timeline.FormatTime(st.Cursor)) + "\n")
	b.WriteString(m.styles.label.Render("Completed") + m.styles.value.Render(timeline.FormatTime(st.MaxObserved)) + "\n")
	b.WriteString(m.styles.subtle.Render(ProgressBar(st.Cursor, st.MaxObserved, panelWidth-6)) + "\n\n")

	for _, c := range m.categories {
		b.WriteString(m.styles.label.Render(truncate(c, 21)) + m.styles.value.Render(fmt.Sprintf("%d", m.view.Counts[c])) + "\n")
	}

	if m.events != nil && st.Cursor > 0 {
		series := m.events.Series(st.Cursor, seriesBuckets)
		if len(series) > 1 {
			chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(panelWidth-14), asciigraph.Caption("Events"))
			b.WriteString("\n" + m.styles.graph.Render(chart) + "\n")
		}
	}

	if m.scene != nil && m.hover != 0 {
		if text, ok := m.scene.HoverText(m.hover); ok {
			b.WriteString("\n" + m.styles.hover.Render(text) + "\n")
		}
	}

	b.WriteString("\n")
	lines := m.view.Lines
	if len(lines) > maxLogLines {
		lines = lines[:maxLogLines]
	}
	for _, l := range lines {
		b.WriteString(truncate(l, panelWidth-4) + "\n")
	}

	for _, n := range m.notes {
		b.WriteString(m.styles.subtle.Render(n) + "\n")
	}
	return b.String()
}

// Relay forwards session notifications into a running program.
// Notifications sent before Attach are dropped.
type Relay struct {
	p atomic.Pointer[tea.Program]
}

func (r *Relay) Attach(p *tea.Program) { r.p.Store(p) }

func (r *Relay) send(msg tea.Msg) {
	if p := r.p.Load(); p != nil {
		p.Send(msg)
	}
}

func (r *Relay) OnView(v timeline.View)  { r.send(ViewMsg(v)) }
func (r *Relay) OnState(s session.State) { r.send(StateMsg(s)) }
func (r *Relay) OnNote(note string)      { r.send(NoteMsg(note)) }
func (r *Relay) OnDisconnect(err error)  { r.send(DisconnectMsg{Err: err}) }

var _ session.Observer = (*Relay)(nil)
