// Package player drives an animated solve: it pulls one move at a time from
// the generator, applies it to the puzzle session and hands the resulting
// trajectory to a Renderer, then waits for the animation to finish before
// asking for the next move.
//
// A run is strictly sequential. Cancelling its context is the reset path:
// the run stops at the next wait and the session is discarded.
package player

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/logging"
	"github.com/san-kum/hanoisim/internal/session"
)

const (
	DefaultDuration = 3000 * time.Millisecond
	DefaultSettle   = 500 * time.Millisecond
)

var ErrRenderer = errors.New("player: renderer failed")

// StepError ties a failure to the move being presented.
type StepError struct {
	Step    int
	Move    hanoi.Move
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%v): %v", e.Step, e.Move, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// Renderer is the drawing capability a presentation surface provides.
type Renderer interface {
	PlaceDisk(rank int, at geometry.Point) error
	AnimateTransition(rank int, t geometry.Trajectory, d time.Duration) error
	LogMove(text string) error
}

type discard struct{}

func (discard) PlaceDisk(int, geometry.Point) error                             { return nil }
func (discard) AnimateTransition(int, geometry.Trajectory, time.Duration) error { return nil }
func (discard) LogMove(string) error                                            { return nil }

// Discard is a Renderer that draws nothing, for headless runs.
var Discard Renderer = discard{}

// Observer is notified after each step has been handed to the renderer.
type Observer interface {
	OnStep(step session.Step)
}

type Metric interface {
	Name() string
	Observe(step session.Step)
	Value() float64
	Reset()
}

// Timing is the fixed per-move pacing. Each move waits Duration + Settle.
type Timing struct {
	Duration time.Duration
	Settle   time.Duration
}

func DefaultTiming() Timing {
	return Timing{Duration: DefaultDuration, Settle: DefaultSettle}
}

func (t Timing) Step() time.Duration { return t.Duration + t.Settle }

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default WaitFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Result struct {
	Disks    int                `json:"disks"`
	Moves    []hanoi.Move       `json:"moves"`
	Metrics  map[string]float64 `json:"metrics"`
	Elapsed  time.Duration      `json:"elapsed"`
	Solved   bool               `json:"solved"`
	Canceled bool               `json:"canceled"`
}

type Player struct {
	renderer  Renderer
	layout    geometry.Layout
	timing    Timing
	wait      WaitFunc
	logger    logging.Logger
	metrics   []Metric
	observers []Observer
	session   *session.Session
}

type Option func(*Player)

func WithLayout(l geometry.Layout) Option  { return func(p *Player) { p.layout = l } }
func WithTiming(t Timing) Option           { return func(p *Player) { p.timing = t } }
func WithWait(w WaitFunc) Option           { return func(p *Player) { p.wait = w } }
func WithLogger(l logging.Logger) Option   { return func(p *Player) { p.logger = l } }
func WithMetrics(ms ...Metric) Option      { return func(p *Player) { p.metrics = append(p.metrics, ms...) } }
func WithObservers(obs ...Observer) Option { return func(p *Player) { p.observers = append(p.observers, obs...) } }

func New(r Renderer, opts ...Option) *Player {
	p := &Player{
		renderer:  r,
		layout:    geometry.DefaultLayout(),
		timing:    DefaultTiming(),
		wait:      Sleep,
		logger:    logging.Nop(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) AddMetric(m Metric)     { p.metrics = append(p.metrics, m) }
func (p *Player) AddObserver(o Observer) { p.observers = append(p.observers, o) }

// Session is the state of the current or last run, nil before Setup.
func (p *Player) Session() *session.Session { return p.session }

func (p *Player) Timing() Timing { return p.timing }

// Setup starts a fresh session of n disks and places every disk on the
// renderer, largest first.
func (p *Player) Setup(n int) (*session.Session, error) {
	if err := hanoi.ValidateDisks(n); err != nil {
		return nil, err
	}
	if err := p.layout.Validate(); err != nil {
		return nil, err
	}
	s := session.New(n, p.layout)
	for rank := n; rank >= 1; rank-- {
		pos, err := s.Position(rank)
		if err != nil {
			return nil, err
		}
		if err := p.renderer.PlaceDisk(rank, pos); err != nil {
			return nil, fmt.Errorf("%w: place disk %d: %w", ErrRenderer, rank, err)
		}
	}
	p.session = s
	return s, nil
}

// Run sets up n disks and animates the full solve. It returns the partial
// result together with ctx.Err() when the context ends first.
func (p *Player) Run(ctx context.Context, n int) (*Result, error) {
	s, err := p.Setup(n)
	if err != nil {
		return nil, err
	}
	return p.Play(ctx, s, hanoi.Solve(n, hanoi.Source, hanoi.Auxiliary, hanoi.Target))
}

// Play animates moves against an already placed session.
func (p *Player) Play(ctx context.Context, s *session.Session, moves iter.Seq[hanoi.Move]) (*Result, error) {
	start := time.Now()
	result := &Result{
		Disks:   s.Disks(),
		Moves:   make([]hanoi.Move, 0, s.Remaining()),
		Metrics: make(map[string]float64),
	}
	for _, m := range p.metrics {
		m.Reset()
	}
	log := p.logger.With(logging.Int("disks", s.Disks()))
	log.Info("solve started", logging.Int("total", hanoi.TotalMoves(s.Disks())))

	next, stop := iter.Pull(moves)
	defer stop()

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		m, ok := next()
		if !ok {
			break
		}
		if err := p.present(s, m, result); err != nil {
			runErr = err
			break
		}
		if err := p.wait(ctx, p.timing.Step()); err != nil {
			runErr = err
			break
		}
	}

	for _, m := range p.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)
	result.Solved = s.Solved()

	switch {
	case runErr == nil:
		log.Info("solve finished", logging.Int("moves", len(result.Moves)), logging.Duration("elapsed", result.Elapsed))
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		result.Canceled = true
		log.Info("solve canceled", logging.Int("moves", len(result.Moves)))
	default:
		log.Error("solve aborted", runErr, logging.Int("moves", len(result.Moves)))
	}
	return result, runErr
}

func (p *Player) present(s *session.Session, m hanoi.Move, result *Result) error {
	step, err := s.Apply(m)
	if err != nil {
		return &StepError{Step: s.Steps() + 1, Move: m, Wrapped: err}
	}
	if err := p.renderer.AnimateTransition(m.Disk, step.Trajectory, p.timing.Duration); err != nil {
		return &StepError{Step: step.Index, Move: m, Wrapped: fmt.Errorf("%w: animate: %w", ErrRenderer, err)}
	}
	if err := p.renderer.LogMove(step.Text); err != nil {
		return &StepError{Step: step.Index, Move: m, Wrapped: fmt.Errorf("%w: log: %w", ErrRenderer, err)}
	}
	p.logger.Debug("step", logging.Int("index", step.Index), logging.Int("disk", m.Disk),
		logging.String("from", m.From.String()), logging.String("to", m.To.String()))

	result.Moves = append(result.Moves, m)
	for _, mt := range p.metrics {
		mt.Observe(step)
	}
	for _, o := range p.observers {
		o.OnStep(step)
	}
	return nil
}
