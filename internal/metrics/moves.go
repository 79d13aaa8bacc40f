package metrics

import "github.com/san-kum/hanoisim/internal/session"

type MoveCount struct {
	name  string
	count int
}

func NewMoveCount() *MoveCount {
	return &MoveCount{
		name: "moves",
	}
}

func (m *MoveCount) Name() string {
	return m.name
}

func (m *MoveCount) Observe(step session.Step) {
	m.count++
}

func (m *MoveCount) Value() float64 {
	return float64(m.count)
}

func (m *MoveCount) Reset() {
	m.count = 0
}

// DiskMoves counts how often a single disk rank moves. In an optimal solve
// disk k moves 2^(n-k) times.
type DiskMoves struct {
	name  string
	rank  int
	count int
}

func NewDiskMoves(name string, rank int) *DiskMoves {
	return &DiskMoves{
		name: name,
		rank: rank,
	}
}

func (d *DiskMoves) Name() string {
	return d.name
}

func (d *DiskMoves) Observe(step session.Step) {
	if step.Move.Disk == d.rank {
		d.count++
	}
}

func (d *DiskMoves) Value() float64 {
	return float64(d.count)
}

func (d *DiskMoves) Reset() {
	d.count = 0
}
