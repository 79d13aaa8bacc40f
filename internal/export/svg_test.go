package export

import (
	"strings"
	"testing"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/session"
)

func TestBoardSVG(t *testing.T) {
	l := geometry.DefaultLayout()
	s := session.New(4, l)
	svg := BoardSVG(s.Snapshot(), l)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if got := strings.Count(svg, "<text"); got != 5 {
		t.Errorf("expected 4 disk labels and a caption, got %d texts", got)
	}
	for rank := 1; rank <= 4; rank++ {
		if !strings.Contains(svg, geometry.DiskColor(rank)) {
			t.Errorf("missing colour for disk %d", rank)
		}
	}
	if !strings.Contains(svg, "step 0 of 15") {
		t.Error("missing caption")
	}
}

func TestTrajectorySVG(t *testing.T) {
	l := geometry.DefaultLayout()
	s := session.New(2, l)
	before := s.Snapshot()
	step, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Auxiliary})
	if err != nil {
		t.Fatal(err)
	}

	svg := TrajectorySVG(before, step, l)
	if strings.Count(svg, " L") != 3 {
		t.Error("expected a path with three segments")
	}
	if !strings.Contains(svg, "1: Move 1 from SOURCE to AUXILIARY") {
		t.Error("missing step caption")
	}
}
