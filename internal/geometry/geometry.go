// Package geometry turns abstract moves into screen-space trajectories.
//
// Coordinates are in layout units (pixels on the web page). X runs left to
// right with the Source peg at 0; Y is the elevation of a disk's bottom edge
// above the base line.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/hanoisim/internal/hanoi"
)

var ErrLayout = errors.New("geometry: invalid layout")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(dx, dy float64) Point { return Point{p.X + dx, p.Y + dy} }

// Dist is the straight-line distance between two points.
func (p Point) Dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

type Layout struct {
	PegSpacing float64 `yaml:"peg_spacing" json:"pegSpacing" validate:"gt=0"`
	DiskHeight float64 `yaml:"disk_height" json:"diskHeight" validate:"gt=0"`
	BaseOffset float64 `yaml:"base_offset" json:"baseOffset" validate:"gte=0"`
	Clearance  float64 `yaml:"clearance" json:"clearance" validate:"gt=0"`
	BaseWidth  float64 `yaml:"base_width" json:"baseWidth" validate:"gte=0"`
	WidthStep  float64 `yaml:"width_step" json:"widthStep" validate:"gt=0"`
}

// DefaultLayout matches the metrics of the browser page: pegs 290px apart,
// 20px disks, disks lifted to a clearance line 300px above the base.
func DefaultLayout() Layout {
	return Layout{
		PegSpacing: 290,
		DiskHeight: 20,
		BaseOffset: 10,
		Clearance:  300,
		BaseWidth:  10,
		WidthStep:  20,
	}
}

func (l Layout) Validate() error {
	if l.PegSpacing <= 0 || l.DiskHeight <= 0 || l.WidthStep <= 0 {
		return fmt.Errorf("%w: spacing, disk height and width step must be positive", ErrLayout)
	}
	if l.BaseOffset < 0 || l.BaseWidth < 0 {
		return fmt.Errorf("%w: negative base offset or width", ErrLayout)
	}
	if top := l.StackTop(hanoi.MaxDisks); l.Clearance < top {
		return fmt.Errorf("%w: clearance %.1f below tallest stack %.1f", ErrLayout, l.Clearance, top)
	}
	if l.DiskWidth(hanoi.MaxDisks) > l.PegSpacing {
		return fmt.Errorf("%w: largest disk wider than peg spacing", ErrLayout)
	}
	return nil
}

// PegX is the horizontal centre of peg p.
func (l Layout) PegX(p hanoi.Peg) float64 { return float64(p) * l.PegSpacing }

// Offset is the horizontal displacement from one peg to another: one spacing
// between neighbours, two between Source and Target, negative leftwards.
func (l Layout) Offset(from, to hanoi.Peg) float64 {
	return float64(int(to)-int(from)) * l.PegSpacing
}

// Slot is where a disk rests at the given stack depth (0 is the bottom).
func (l Layout) Slot(p hanoi.Peg, depth int) Point {
	return Point{X: l.PegX(p), Y: l.BaseOffset + float64(depth)*l.DiskHeight}
}

// StackTop is the elevation of the top edge of a stack of n disks.
func (l Layout) StackTop(n int) float64 {
	return l.BaseOffset + float64(n)*l.DiskHeight
}

// DiskWidth grows linearly with rank so rank 1 is the narrowest.
func (l Layout) DiskWidth(rank int) float64 {
	return l.BaseWidth + l.WidthStep*float64(rank)
}

// Width spans all three pegs plus half the widest disk on either side.
func (l Layout) Width() float64 {
	return 2*l.PegSpacing + l.DiskWidth(hanoi.MaxDisks)
}

// Plan computes the trajectory of a disk resting at pos. fromCount is the
// source peg's count before the disk leaves (it includes the disk), toCount
// the destination's count before it arrives.
func (l Layout) Plan(pos Point, from, to hanoi.Peg, fromCount, toCount int) Trajectory {
	lift := l.Clearance - pos.Y
	if top := l.StackTop(max(fromCount, toCount)); l.Clearance < top {
		lift = top - pos.Y
	}
	lifted := pos.Add(0, lift)
	translated := lifted.Add(l.Offset(from, to), 0)
	lowered := Point{X: translated.X, Y: l.Slot(to, toCount).Y}
	return Trajectory{
		Initial:    pos,
		Lifted:     lifted,
		Translated: translated,
		Lowered:    lowered,
	}
}
