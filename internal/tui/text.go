// Package tui draws the puzzle as plain ASCII frames on an io.Writer. It is
// the non-interactive counterpart of the viz package and backs the CLI's
// animated solve as well as piped output.
package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
)

const (
	DefaultWidth = 72
	DefaultFPS   = 30
	logLines     = 5

	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

type transition struct {
	rank int
	traj geometry.Trajectory
	d    time.Duration
}

// TextRenderer implements player.Renderer. In live mode every frame redraws
// the terminal and the animation is played out by Wait; otherwise each
// logged move is followed by the board as it rests after the move.
type TextRenderer struct {
	w      io.Writer
	layout geometry.Layout
	width  int
	height int
	fps    int
	live   bool
	frames bool

	positions map[int]geometry.Point
	pending   *transition
	log       []string
	canvas    [][]rune
}

type Option func(*TextRenderer)

func WithWidth(cols int) Option { return func(r *TextRenderer) { r.width = cols } }
func WithFPS(fps int) Option    { return func(r *TextRenderer) { r.fps = fps } }
func WithLive(live bool) Option { return func(r *TextRenderer) { r.live = live } }

// WithFrames controls whether plain mode draws the board after each move.
func WithFrames(on bool) Option { return func(r *TextRenderer) { r.frames = on } }

func NewTextRenderer(w io.Writer, layout geometry.Layout, opts ...Option) *TextRenderer {
	r := &TextRenderer{
		w:         w,
		layout:    layout,
		width:     DefaultWidth,
		fps:       DefaultFPS,
		frames:    true,
		positions: make(map[int]geometry.Point),
		log:       make([]string, 0, logLines),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fps <= 0 {
		r.fps = DefaultFPS
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	top := math.Max(layout.Clearance, layout.StackTop(hanoi.MaxDisks))
	r.height = int(math.Ceil((top-layout.BaseOffset)/layout.DiskHeight)) + 2
	r.canvas = make([][]rune, r.height)
	for i := range r.canvas {
		r.canvas[i] = make([]rune, r.width)
	}
	return r
}

func (r *TextRenderer) PlaceDisk(rank int, at geometry.Point) error {
	r.positions[rank] = at
	return nil
}

func (r *TextRenderer) AnimateTransition(rank int, t geometry.Trajectory, d time.Duration) error {
	if !r.live {
		r.positions[rank] = t.Lowered
		return nil
	}
	r.pending = &transition{rank: rank, traj: t, d: d}
	return nil
}

func (r *TextRenderer) LogMove(text string) error {
	if len(r.log) == logLines {
		r.log = r.log[1:]
	}
	r.log = append(r.log, text)
	if r.live {
		return nil
	}
	out := text + "\n"
	if r.frames {
		out += r.Frame()
	}
	_, err := io.WriteString(r.w, out)
	return err
}

// Wait plays out the pending transition at the configured frame rate and
// then holds the final frame until d has elapsed. It satisfies
// player.WaitFunc.
//
// Outside live mode Wait does not pause: plain output is a transcript, so
// moves are written back to back.
func (r *TextRenderer) Wait(ctx context.Context, d time.Duration) error {
	if !r.live {
		return ctx.Err()
	}
	ticker := time.NewTicker(time.Second / time.Duration(r.fps))
	defer ticker.Stop()
	start := time.Now()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for {
		if err := r.drawPending(time.Since(start)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return r.drawPending(d)
		case <-ticker.C:
		}
	}
}

func (r *TextRenderer) drawPending(elapsed time.Duration) error {
	if p := r.pending; p != nil {
		f := 1.0
		if p.d > 0 {
			f = float64(elapsed) / float64(p.d)
		}
		r.positions[p.rank] = p.traj.At(f)
		if f >= 1 {
			r.pending = nil
		}
	}
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(r.Frame())
	for _, line := range r.log {
		b.WriteString("  " + line + "\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TextRenderer) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *TextRenderer) Stop()  { fmt.Fprint(r.w, showCursor) }

// Frame renders the pegs and every placed disk at its current position.
func (r *TextRenderer) Frame() string {
	r.clear()
	base := r.height - 1
	for x := 0; x < r.width; x++ {
		r.set(x, base, '=')
	}
	for _, p := range hanoi.Pegs {
		col := r.col(r.layout.PegX(p))
		for level := 0; level < hanoi.MaxDisks; level++ {
			r.set(col, base-1-level, '|')
		}
	}

	ranks := make([]int, 0, len(r.positions))
	for rank := range r.positions {
		ranks = append(ranks, rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	for _, rank := range ranks {
		r.drawDisk(rank, r.positions[rank])
	}

	var b strings.Builder
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *TextRenderer) drawDisk(rank int, at geometry.Point) {
	label := strconv.Itoa(rank)
	w := int(math.Round(r.layout.DiskWidth(rank) * r.scale()))
	w = max(w, len(label)+2)
	row := r.row(at.Y)
	left := r.col(at.X) - w/2

	cells := []rune("[" + strings.Repeat("=", w-2) + "]")
	mid := (w - len(label)) / 2
	copy(cells[mid:], []rune(label))
	for i, c := range cells {
		r.set(left+i, row, c)
	}
}

func (r *TextRenderer) scale() float64 {
	return float64(r.width-1) / r.layout.Width()
}

func (r *TextRenderer) col(x float64) int {
	return int(math.Round((x + r.layout.DiskWidth(hanoi.MaxDisks)/2) * r.scale()))
}

func (r *TextRenderer) row(y float64) int {
	level := int(math.Round((y - r.layout.BaseOffset) / r.layout.DiskHeight))
	return r.height - 2 - level
}

func (r *TextRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *TextRenderer) set(x, y int, c rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.canvas[y][x] = c
	}
}
