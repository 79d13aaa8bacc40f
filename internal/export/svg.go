package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/session"
)

const margin = 20.0

// frame maps layout coordinates (Y up, Source peg at X=0) to SVG pixels.
type frame struct {
	layout        geometry.Layout
	width, height float64
}

func newFrame(l geometry.Layout) frame {
	return frame{
		layout: l,
		width:  l.Width() + 2*margin,
		height: l.Clearance + l.DiskHeight + 2*margin,
	}
}

func (f frame) x(x float64) float64 { return x + f.layout.DiskWidth(hanoi.MaxDisks)/2 + margin }
func (f frame) y(y float64) float64 { return f.height - margin - y }

func (f frame) header(sb *strings.Builder) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, f.width, f.height, f.width, f.height))
}

func (f frame) pegs(sb *strings.Builder) {
	l := f.layout
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="4" fill="#666688"/>
`, margin, f.y(0), f.width-2*margin))
	for _, p := range hanoi.Pegs {
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="4" height="%.1f" fill="#666688"/>
`, f.x(l.PegX(p))-2, f.y(l.StackTop(hanoi.MaxDisks)), l.StackTop(hanoi.MaxDisks)))
	}
}

func (f frame) disk(sb *strings.Builder, rank int, at geometry.Point) {
	l := f.layout
	w := l.DiskWidth(rank)
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s"/>
<text x="%.1f" y="%.1f" font-size="12" font-weight="700" fill="#fff" text-anchor="middle">%d</text>
`, f.x(at.X)-w/2, f.y(at.Y+l.DiskHeight), w, l.DiskHeight, l.DiskHeight/2, geometry.DiskColor(rank),
		f.x(at.X), f.y(at.Y+l.DiskHeight/2)+4, rank))
}

// BoardSVG draws the pegs and every disk at its resting position.
func BoardSVG(snap session.Snapshot, l geometry.Layout) string {
	f := newFrame(l)
	var sb strings.Builder
	f.header(&sb)
	f.pegs(&sb)
	for _, d := range snap.State {
		f.disk(&sb, d.Rank, d.Position)
	}
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="12" fill="#888899">step %d of %d</text>
`, margin, margin, snap.Steps, hanoi.TotalMoves(snap.Disks)))
	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectorySVG draws the board as it was before step and the four-keyframe
// path the moving disk follows.
func TrajectorySVG(before session.Snapshot, step session.Step, l geometry.Layout) string {
	f := newFrame(l)
	var sb strings.Builder
	f.header(&sb)
	f.pegs(&sb)
	for _, d := range before.State {
		f.disk(&sb, d.Rank, d.Position)
	}

	half := l.DiskHeight / 2
	sb.WriteString(`<path fill="none" stroke="#00ffff" stroke-width="1.5" stroke-dasharray="4 3" d="M`)
	for i, p := range step.Trajectory.Keyframes() {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", f.x(p.X), f.y(p.Y+half)))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", f.x(p.X), f.y(p.Y+half)))
		}
	}
	sb.WriteString(`"/>
`)
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="12" fill="#888899">%s</text>
`, margin, margin, step.Text))
	sb.WriteString("</svg>")
	return sb.String()
}
