package hanoi

import (
	"fmt"
	"iter"
	"strings"
)

const (
	MinDisks = 1
	MaxDisks = 12
)

type Peg int

const (
	Source Peg = iota
	Auxiliary
	Target
)

// Pegs lists the pegs left to right.
var Pegs = [3]Peg{Source, Auxiliary, Target}

func (p Peg) String() string {
	switch p {
	case Source:
		return "SOURCE"
	case Auxiliary:
		return "AUXILIARY"
	case Target:
		return "TARGET"
	}
	return fmt.Sprintf("PEG(%d)", int(p))
}

func (p Peg) Valid() bool { return p >= Source && p <= Target }

func (p Peg) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPeg, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Peg) UnmarshalText(b []byte) error {
	v, err := ParsePeg(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePeg accepts the long names and their first letter, case-insensitive.
func ParsePeg(s string) (Peg, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SOURCE", "S":
		return Source, nil
	case "AUXILIARY", "A":
		return Auxiliary, nil
	case "TARGET", "T":
		return Target, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeg, s)
}

type Move struct {
	Disk int `json:"disk"`
	From Peg `json:"from"`
	To   Peg `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("Move %d from %s to %s", m.Disk, m.From, m.To)
}

// Relabel renames the pegs of m through mapping, indexed by the old peg.
func Relabel(m Move, mapping [3]Peg) Move {
	return Move{Disk: m.Disk, From: mapping[m.From], To: mapping[m.To]}
}

// Solve yields the moves that carry n disks from one peg to another using the
// third as the spare. Disk 1 is the smallest. The sequence is produced lazily;
// the recursion unwinds as soon as the consumer stops.
func Solve(n int, from, via, to Peg) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		solve(n, from, via, to, yield)
	}
}

func solve(n int, from, via, to Peg, yield func(Move) bool) bool {
	if n < 1 {
		return true
	}
	if n == 1 {
		return yield(Move{Disk: 1, From: from, To: to})
	}
	if !solve(n-1, from, to, via, yield) {
		return false
	}
	if !yield(Move{Disk: n, From: from, To: to}) {
		return false
	}
	return solve(n-1, via, from, to, yield)
}

// Moves returns the full sequence moving n disks from Source to Target.
func Moves(n int) []Move {
	moves := make([]Move, 0, TotalMoves(n))
	for m := range Solve(n, Source, Auxiliary, Target) {
		moves = append(moves, m)
	}
	return moves
}

// TotalMoves is 2^n - 1, the length of the optimal solution.
func TotalMoves(n int) int {
	if n < 1 {
		return 0
	}
	return 1<<n - 1
}
