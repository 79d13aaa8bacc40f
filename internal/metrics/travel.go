package metrics

import "github.com/san-kum/hanoisim/internal/session"

// Travel sums the distance disks cover on screen, either the full path or
// only its vertical part.
type Travel struct {
	name     string
	vertical bool
	sum      float64
}

func NewTravelDistance() *Travel {
	return &Travel{
		name: "travel_distance",
	}
}

func NewLiftDistance() *Travel {
	return &Travel{
		name:     "lift_distance",
		vertical: true,
	}
}

func (t *Travel) Name() string {
	return t.name
}

func (t *Travel) Observe(step session.Step) {
	if t.vertical {
		t.sum += step.Trajectory.Vertical()
		return
	}
	t.sum += step.Trajectory.Length()
}

func (t *Travel) Value() float64 {
	return t.sum
}

func (t *Travel) Reset() {
	t.sum = 0
}
