// Package session holds the mutable state of one puzzle: which disks sit on
// which peg, where each disk rests on screen, and how many steps have run.
//
// A Session is owned by a single driver. Reset never mutates a session; it
// returns a new one.
package session

import (
	"errors"
	"fmt"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
)

var (
	// ErrIllegalMove indicates a move that lifts a buried disk or buries a
	// smaller one.
	ErrIllegalMove = errors.New("session: illegal move")

	ErrUnknownDisk = errors.New("session: unknown disk")
)

// Step is the outcome of applying one move.
type Step struct {
	Index      int                 `json:"index"`
	Move       hanoi.Move          `json:"move"`
	Trajectory geometry.Trajectory `json:"trajectory"`
	Text       string              `json:"text"`
}

type Session struct {
	disks     int
	layout    geometry.Layout
	stacks    [3][]int
	positions []geometry.Point
	steps     int
}

// New places n disks on the Source peg, largest at the bottom.
func New(n int, layout geometry.Layout) *Session {
	s := &Session{
		disks:     n,
		layout:    layout,
		positions: make([]geometry.Point, n),
	}
	s.stacks[hanoi.Source] = make([]int, 0, n)
	for rank := n; rank >= 1; rank-- {
		depth := len(s.stacks[hanoi.Source])
		s.stacks[hanoi.Source] = append(s.stacks[hanoi.Source], rank)
		s.positions[rank-1] = layout.Slot(hanoi.Source, depth)
	}
	return s
}

// Reset returns a fresh session with the same disk count and layout.
func (s *Session) Reset() *Session { return New(s.disks, s.layout) }

func (s *Session) Disks() int              { return s.disks }
func (s *Session) Steps() int              { return s.steps }
func (s *Session) Layout() geometry.Layout { return s.layout }
func (s *Session) Solved() bool            { return len(s.stacks[hanoi.Target]) == s.disks }
func (s *Session) Count(p hanoi.Peg) int   { return len(s.stacks[p]) }
func (s *Session) Counts() [3]int          { return [3]int{len(s.stacks[0]), len(s.stacks[1]), len(s.stacks[2])} }

// Remaining is how many moves the canonical solve has left, never negative.
// Sessions driven off the canonical path may take more steps than that.
func (s *Session) Remaining() int {
	return max(hanoi.TotalMoves(s.disks)-s.steps, 0)
}

// Stack returns a copy of the ranks on p, bottom first.
func (s *Session) Stack(p hanoi.Peg) []int {
	out := make([]int, len(s.stacks[p]))
	copy(out, s.stacks[p])
	return out
}

// Position is the resting point of a disk after the last applied step.
func (s *Session) Position(rank int) (geometry.Point, error) {
	if rank < 1 || rank > s.disks {
		return geometry.Point{}, fmt.Errorf("%w: %d", ErrUnknownDisk, rank)
	}
	return s.positions[rank-1], nil
}

// Apply moves the top disk and returns the step to present. Counts are read
// before they change: the source count still includes the moving disk and the
// destination count excludes it.
func (s *Session) Apply(m hanoi.Move) (Step, error) {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return Step{}, fmt.Errorf("%w: %v", ErrIllegalMove, m)
	}
	if m.Disk < 1 || m.Disk > s.disks {
		return Step{}, fmt.Errorf("%w: %d", ErrUnknownDisk, m.Disk)
	}
	from, to := s.stacks[m.From], s.stacks[m.To]
	if len(from) == 0 || from[len(from)-1] != m.Disk {
		return Step{}, fmt.Errorf("%w: disk %d is not on top of %s", ErrIllegalMove, m.Disk, m.From)
	}
	if len(to) > 0 && to[len(to)-1] < m.Disk {
		return Step{}, fmt.Errorf("%w: disk %d onto smaller disk %d", ErrIllegalMove, m.Disk, to[len(to)-1])
	}

	fromCount, toCount := len(from), len(to)
	traj := s.layout.Plan(s.positions[m.Disk-1], m.From, m.To, fromCount, toCount)

	s.stacks[m.From] = from[:fromCount-1]
	s.stacks[m.To] = append(to, m.Disk)
	s.positions[m.Disk-1] = traj.Lowered
	s.steps++

	return Step{
		Index:      s.steps,
		Move:       m,
		Trajectory: traj,
		Text:       fmt.Sprintf("%d: %s", s.steps, m),
	}, nil
}

// DiskState is one disk in a snapshot.
type DiskState struct {
	Rank     int            `json:"rank"`
	Peg      hanoi.Peg      `json:"peg"`
	Depth    int            `json:"depth"`
	Position geometry.Point `json:"position"`
	Width    float64        `json:"width"`
}

type Snapshot struct {
	Disks  int         `json:"disks"`
	Steps  int         `json:"steps"`
	Counts [3]int      `json:"counts"`
	State  []DiskState `json:"state"`
}

// Snapshot lists every disk, ordered by rank.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Disks:  s.disks,
		Steps:  s.steps,
		Counts: s.Counts(),
		State:  make([]DiskState, s.disks),
	}
	for _, p := range hanoi.Pegs {
		for depth, rank := range s.stacks[p] {
			snap.State[rank-1] = DiskState{
				Rank:     rank,
				Peg:      p,
				Depth:    depth,
				Position: s.positions[rank-1],
				Width:    s.layout.DiskWidth(rank),
			}
		}
	}
	return snap
}
