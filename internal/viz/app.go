package viz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/hanoisim/internal/config"
	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/logging"
	"github.com/san-kum/hanoisim/internal/metrics"
	"github.com/san-kum/hanoisim/internal/player"
	"github.com/san-kum/hanoisim/internal/session"
)

const (
	canvasWidth  = 64
	canvasHeight = 18
	logHeight    = 10
	maxInput     = 4

	emptyNotice = "Enter the number of disks, from 1 to 12."
)

type phase int

const (
	phaseInput phase = iota
	phaseRunning
	phaseDone
)

type animation struct {
	rank  int
	traj  geometry.Trajectory
	start time.Time
	d     time.Duration
}

// Model is the interactive solver: a disk count field, start and reset
// controls, the animated board and the step log.
type Model struct {
	cfg    *config.Config
	logger logging.Logger
	clock  func() time.Time

	phase  phase
	input  string
	disks  int
	notice string
	theme  Theme

	positions map[int]geometry.Point
	anim      *animation
	now       time.Time
	log       []string
	ranks     []float64
	moves     int

	run    int
	cancel context.CancelFunc
	events chan tea.Msg
	result *player.Result
	err    error

	canvas        *Canvas
	width, height int
}

func NewModel(cfg *config.Config, logger logging.Logger) Model {
	if logger == nil {
		logger = logging.Nop()
	}
	m := Model{
		cfg:    cfg,
		logger: logger,
		clock:  time.Now,
		theme:  GetTheme(cfg.Theme),
		canvas: NewCanvas(canvasWidth, canvasHeight),
		width:  100,
		height: 30,
	}
	m.input = strconv.Itoa(hanoi.ClampDisks(cfg.Disks))
	m.commit()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) tick() tea.Cmd {
	run := m.run
	return tea.Tick(m.cfg.FrameInterval(), func(t time.Time) tea.Msg { return tickMsg{run: run, at: t} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.now = msg.at
		if a := m.anim; a != nil && m.now.Sub(a.start) >= a.d {
			m.positions[a.rank] = a.traj.Lowered
			m.anim = nil
		}
		if m.phase == phaseRunning {
			return m, m.tick()
		}
	case placeMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.positions[msg.rank] = msg.at
		return m, listen(m.run, m.events)
	case animateMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.settle()
		m.now = m.clock()
		m.anim = &animation{rank: msg.rank, traj: msg.traj, start: m.now, d: msg.d}
		m.ranks = append(m.ranks, float64(msg.rank))
		return m, listen(m.run, m.events)
	case logMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.log = append(m.log, msg.text)
		m.moves++
		return m, listen(m.run, m.events)
	case doneMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.settle()
		m.phase, m.result, m.err = phaseDone, msg.result, msg.err
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.notice = msg.err.Error()
		}
		m.stop()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		m.stop()
		return m, tea.Quit
	}
	if m.notice != "" {
		m.notice = ""
		return m, nil
	}

	switch key {
	case "r":
		return m.reset(), nil
	case "t":
		m.theme = NextTheme(m.theme.Name)
		return m, nil
	}
	if m.phase != phaseInput {
		return m, nil
	}

	switch key {
	case "enter", "tab":
		m.commit()
	case "s":
		return m.start()
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if len(key) == 1 && len(m.input) < maxInput && strings.ContainsAny(key, "0123456789.-") {
			m.input += key
		}
	}
	return m, nil
}

// commit clamps the field and regenerates the disks on Source. An empty field
// is left empty so starting is refused.
func (m *Model) commit() {
	n, err := hanoi.ParseDisks(m.input)
	switch {
	case errors.Is(err, hanoi.ErrEmptyInput):
		return
	case err != nil:
		m.input, m.notice = "", emptyNotice
		return
	}
	m.input, m.disks = strconv.Itoa(n), n
	m.positions = make(map[int]geometry.Point, n)
	s := session.New(n, m.cfg.Layout)
	for rank := 1; rank <= n; rank++ {
		m.positions[rank], _ = s.Position(rank)
	}
	m.anim, m.log, m.ranks, m.moves = nil, nil, nil, 0
}

func (m Model) start() (Model, tea.Cmd) {
	if strings.TrimSpace(m.input) == "" {
		m.notice = emptyNotice
		return m, nil
	}
	m.commit()
	if m.notice != "" {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, 16)
	m.run++
	m.cancel, m.events = cancel, events
	m.phase = phaseRunning
	m.positions = make(map[int]geometry.Point, m.disks)

	r := &Renderer{run: m.run, ctx: ctx, events: events}
	p := player.New(r,
		player.WithLayout(m.cfg.Layout),
		player.WithTiming(m.cfg.PlayerTiming()),
		player.WithLogger(m.logger),
		player.WithMetrics(metrics.NewMoveCount(), metrics.NewTravelDistance(), metrics.NewLiftDistance()),
	)
	run, n := m.run, m.disks
	// done travels on the event channel so it arrives after the last move.
	solve := func() tea.Msg {
		defer close(events)
		result, err := p.Run(ctx, n)
		select {
		case events <- doneMsg{run: run, result: result, err: err}:
		case <-ctx.Done():
		}
		return nil
	}
	m.logger.Info("tui run started", logging.Int("disks", n), logging.Int("run", run))
	return m, tea.Batch(solve, listen(run, events), m.tick())
}

// reset cancels any run and returns to the state the app started in.
func (m Model) reset() Model {
	m.stop()
	fresh := NewModel(m.cfg, m.logger)
	fresh.clock = m.clock
	fresh.run = m.run + 1
	fresh.theme = m.theme
	fresh.width, fresh.height = m.width, m.height
	return fresh
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) settle() {
	if m.anim != nil {
		m.positions[m.anim.rank] = m.anim.traj.Lowered
		m.anim = nil
	}
}

// diskAt is the drawn position of a disk, interpolated while it moves.
func (m Model) diskAt(rank int) geometry.Point {
	if a := m.anim; a != nil && a.rank == rank && a.d > 0 {
		return a.traj.At(float64(m.now.Sub(a.start)) / float64(a.d))
	}
	return m.positions[rank]
}

func (m Model) draw() {
	c, l := m.canvas, m.cfg.Layout
	c.Clear()
	pw, ph := c.Pixels()
	top := max(l.Clearance, l.StackTop(hanoi.MaxDisks)) + l.DiskHeight
	sx := float64(pw-1) / l.Width()
	sy := float64(ph-1) / top
	px := func(x float64) int { return int((x + l.DiskWidth(hanoi.MaxDisks)/2) * sx) }
	py := func(y float64) int { return ph - 1 - int(y*sy) }

	c.DrawLine(0, py(0), pw-1, py(0), 0)
	for _, p := range hanoi.Pegs {
		x := px(l.PegX(p))
		c.DrawLine(x, py(0), x, py(l.StackTop(hanoi.MaxDisks)), 0)
	}
	for rank := m.disks; rank >= 1; rank-- {
		at, ok := m.positions[rank]
		if !ok {
			continue
		}
		if m.anim != nil && m.anim.rank == rank {
			at = m.diskAt(rank)
		}
		half := l.DiskWidth(rank) / 2
		c.FillRect(px(at.X-half), py(at.Y+l.DiskHeight)+1, px(at.X+half), py(at.Y), rank)
	}
}

func (m Model) View() string {
	m.draw()
	board := m.canvas.Render(func(tag int) lipgloss.Style {
		if tag == 0 {
			return lipgloss.NewStyle().Foreground(m.theme.Muted)
		}
		return lipgloss.NewStyle().Foreground(m.theme.DiskColor(tag))
	})

	var s strings.Builder
	s.WriteString(GradientText("TOWERS OF HANOI", m.theme.Primary, m.theme.Secondary) + "\n\n")
	s.WriteString(m.status() + "\n\n")

	field := m.input
	if m.phase == phaseInput {
		field += "_"
	}
	s.WriteString(MetricLabel.Render("Disks") + MetricValue.Render("[ "+fmt.Sprintf("%-5s", field)+"]") + "\n")
	total := hanoi.TotalMoves(m.disks)
	s.WriteString(MetricLabel.Render("Moves") + MetricValue.Render(fmt.Sprintf("%d / %d", m.moves, total)) + "\n")
	if total > 0 {
		s.WriteString(MetricLabel.Render("") + ProgressBar(float64(m.moves)/float64(total), 20) + "\n")
	}
	s.WriteString(MetricLabel.Render("Theme") + MetricValue.Render(m.theme.Name) + "\n\n")

	s.WriteString(Separator(34) + "\n")
	s.WriteString(m.logView() + "\n")
	if m.phase == phaseDone && len(m.ranks) > 1 {
		chart := asciigraph.Plot(m.ranks, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("disk per step"))
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(chart) + "\n")
	}

	button := "s:Start"
	if m.phase != phaseInput {
		button = "r:Reset"
	}
	s.WriteString("\n" + KeyHint.Render(button+"  enter/tab:Set  t:Theme  q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(board),
		GlassPanel.Width(40).Render(s.String()))
	if m.notice != "" {
		return Notice.Render(m.notice+"\n\n"+KeyHint.Render("press any key")) + "\n\n" + main
	}
	return main
}

func (m Model) status() string {
	switch m.phase {
	case phaseRunning:
		return StatusRunning.Render("RUNNING")
	case phaseDone:
		if m.result != nil && m.result.Solved {
			return StatusRunning.Render(fmt.Sprintf("SOLVED in %s", m.result.Elapsed.Round(time.Second)))
		}
		if m.err != nil {
			return StatusIdle.Render("STOPPED")
		}
	}
	return StatusIdle.Render("READY")
}

// logView keeps the newest entries in view.
func (m Model) logView() string {
	if len(m.log) == 0 {
		return Subtle.Render("no moves yet")
	}
	start := max(len(m.log)-logHeight, 0)
	return lipgloss.NewStyle().Foreground(m.theme.Text).Render(strings.Join(m.log[start:], "\n"))
}
