package geometry

import "fmt"

// Offsets are the keyframe positions as fractions of the animation:
// lift ends at 35%, the horizontal slide at 65%.
var Offsets = [4]float64{0, 0.35, 0.65, 1}

type Trajectory struct {
	Initial    Point `json:"initial"`
	Lifted     Point `json:"lifted"`
	Translated Point `json:"translated"`
	Lowered    Point `json:"lowered"`
}

func (t Trajectory) Keyframes() [4]Point {
	return [4]Point{t.Initial, t.Lifted, t.Translated, t.Lowered}
}

// At interpolates the position at fraction f of the animation. f is clamped
// to [0, 1].
func (t Trajectory) At(f float64) Point {
	if f <= 0 {
		return t.Initial
	}
	if f >= 1 {
		return t.Lowered
	}
	kf := t.Keyframes()
	for i := 1; i < len(Offsets); i++ {
		if f <= Offsets[i] {
			span := Offsets[i] - Offsets[i-1]
			u := (f - Offsets[i-1]) / span
			a, b := kf[i-1], kf[i]
			return Point{a.X + (b.X-a.X)*u, a.Y + (b.Y-a.Y)*u}
		}
	}
	return t.Lowered
}

// Length is the total path length across the three segments.
func (t Trajectory) Length() float64 {
	return t.Initial.Dist(t.Lifted) + t.Lifted.Dist(t.Translated) + t.Translated.Dist(t.Lowered)
}

// Vertical is the distance travelled up plus down.
func (t Trajectory) Vertical() float64 {
	return (t.Lifted.Y - t.Initial.Y) + (t.Translated.Y - t.Lowered.Y)
}

func (t Trajectory) String() string {
	return fmt.Sprintf("(%.0f,%.0f) -> (%.0f,%.0f) -> (%.0f,%.0f) -> (%.0f,%.0f)",
		t.Initial.X, t.Initial.Y, t.Lifted.X, t.Lifted.Y,
		t.Translated.X, t.Translated.Y, t.Lowered.X, t.Lowered.Y)
}
