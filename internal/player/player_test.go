package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/session"
)

type event struct {
	kind string
	rank int
	text string
	traj geometry.Trajectory
	dur  time.Duration
}

type testRenderer struct {
	events  []event
	failOn  string
	failErr error
}

func (r *testRenderer) PlaceDisk(rank int, at geometry.Point) error {
	r.events = append(r.events, event{kind: "place", rank: rank})
	return r.fail("place")
}

func (r *testRenderer) AnimateTransition(rank int, t geometry.Trajectory, d time.Duration) error {
	r.events = append(r.events, event{kind: "animate", rank: rank, traj: t, dur: d})
	return r.fail("animate")
}

func (r *testRenderer) LogMove(text string) error {
	r.events = append(r.events, event{kind: "log", text: text})
	return r.fail("log")
}

func (r *testRenderer) fail(kind string) error {
	if r.failOn == kind {
		return r.failErr
	}
	return nil
}

func (r *testRenderer) count(kind string) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

type testWait struct {
	calls []time.Duration
}

func (w *testWait) wait(ctx context.Context, d time.Duration) error {
	w.calls = append(w.calls, d)
	return ctx.Err()
}

type testMetric struct {
	count int
}

func (m *testMetric) Name() string              { return "test" }
func (m *testMetric) Observe(step session.Step) { m.count++ }
func (m *testMetric) Value() float64            { return float64(m.count) }
func (m *testMetric) Reset()                    { m.count = 0 }

type stepRecorder struct {
	steps []session.Step
}

func (s *stepRecorder) OnStep(step session.Step) { s.steps = append(s.steps, step) }

func TestPlayerRun(t *testing.T) {
	r := &testRenderer{}
	w := &testWait{}
	metric := &testMetric{}
	rec := &stepRecorder{}
	timing := Timing{Duration: 3 * time.Second, Settle: 500 * time.Millisecond}

	p := New(r, WithWait(w.wait), WithTiming(timing), WithMetrics(metric), WithObservers(rec))
	result, err := p.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Moves) != 7 || !result.Solved || result.Canceled {
		t.Errorf("unexpected result %+v", result)
	}
	if r.count("place") != 3 || r.count("animate") != 7 || r.count("log") != 7 {
		t.Errorf("unexpected renderer calls: %d place, %d animate, %d log",
			r.count("place"), r.count("animate"), r.count("log"))
	}
	if len(w.calls) != 7 {
		t.Fatalf("expected 7 waits, got %d", len(w.calls))
	}
	for _, d := range w.calls {
		if d != 3500*time.Millisecond {
			t.Errorf("expected wait of 3.5s, got %v", d)
		}
	}
	if result.Metrics["test"] != 7 {
		t.Errorf("expected metric 7, got %.0f", result.Metrics["test"])
	}
	if len(rec.steps) != 7 || rec.steps[6].Index != 7 {
		t.Errorf("observer saw %d steps", len(rec.steps))
	}
	if p.Session().Counts() != [3]int{0, 0, 3} {
		t.Errorf("unexpected final counts %v", p.Session().Counts())
	}
}

func TestPlayerOrdering(t *testing.T) {
	r := &testRenderer{}
	p := New(r, WithWait((&testWait{}).wait))
	if _, err := p.Run(context.Background(), 2); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// largest disk placed first, then animate/log pairs in move order
	want := []string{"place", "place", "animate", "log", "animate", "log", "animate", "log"}
	if len(r.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(r.events))
	}
	for i, e := range r.events {
		if e.kind != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.kind)
		}
	}
	if r.events[0].rank != 2 || r.events[1].rank != 1 {
		t.Error("expected disks placed largest first")
	}
	if r.events[3].text != "1: Move 1 from SOURCE to AUXILIARY" {
		t.Errorf("unexpected log %q", r.events[3].text)
	}
	if r.events[7].text != "3: Move 1 from AUXILIARY to TARGET" {
		t.Errorf("unexpected log %q", r.events[7].text)
	}
}

func TestPlayerInvalidDiskCount(t *testing.T) {
	p := New(&testRenderer{})
	for _, n := range []int{0, 13} {
		_, err := p.Run(context.Background(), n)
		if !errors.Is(err, hanoi.ErrDiskCount) {
			t.Errorf("n=%d: expected ErrDiskCount, got %v", n, err)
		}
	}
}

func TestPlayerInvalidLayout(t *testing.T) {
	l := geometry.DefaultLayout()
	l.Clearance = 1
	p := New(&testRenderer{}, WithLayout(l))
	if _, err := p.Run(context.Background(), 3); !errors.Is(err, geometry.ErrLayout) {
		t.Errorf("expected ErrLayout, got %v", err)
	}
}

func TestPlayerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &testRenderer{}
	calls := 0
	wait := func(ctx context.Context, d time.Duration) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return ctx.Err()
	}

	p := New(r, WithWait(wait))
	result, err := p.Run(ctx, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !result.Canceled || result.Solved {
		t.Errorf("unexpected result flags %+v", result)
	}
	if len(result.Moves) != 3 {
		t.Errorf("expected 3 moves before cancel, got %d", len(result.Moves))
	}
	if r.count("animate") != 3 {
		t.Errorf("expected no animation after cancel, got %d", r.count("animate"))
	}
}

func TestPlayerRendererFailure(t *testing.T) {
	boom := errors.New("socket closed")
	r := &testRenderer{failOn: "log", failErr: boom}
	p := New(r, WithWait((&testWait{}).wait))

	result, err := p.Run(context.Background(), 3)
	if !errors.Is(err, ErrRenderer) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped renderer error, got %v", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Step != 1 || se.Move.Disk != 1 {
		t.Errorf("expected failure at step 1, got %v", err)
	}
	if result.Canceled || len(result.Moves) != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestPlayerSetupFailure(t *testing.T) {
	r := &testRenderer{failOn: "place", failErr: errors.New("no canvas")}
	p := New(r)
	if _, err := p.Setup(2); !errors.Is(err, ErrRenderer) {
		t.Errorf("expected ErrRenderer, got %v", err)
	}
}

func TestPlayerIllegalSequence(t *testing.T) {
	p := New(&testRenderer{}, WithWait((&testWait{}).wait))
	s, err := p.Setup(2)
	if err != nil {
		t.Fatal(err)
	}
	bad := func(yield func(hanoi.Move) bool) {
		yield(hanoi.Move{Disk: 2, From: hanoi.Source, To: hanoi.Target})
	}
	_, err = p.Play(context.Background(), s, bad)
	if !errors.Is(err, session.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Step != 1 {
		t.Errorf("expected step 1 error, got %v", err)
	}
}

func TestPlayerPastCanonicalLength(t *testing.T) {
	p := New(&testRenderer{}, WithWait((&testWait{}).wait))
	s, err := p.Setup(1)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []hanoi.Move{
		{Disk: 1, From: hanoi.Source, To: hanoi.Auxiliary},
		{Disk: 1, From: hanoi.Auxiliary, To: hanoi.Source},
		{Disk: 1, From: hanoi.Source, To: hanoi.Auxiliary},
	} {
		if _, err := s.Apply(m); err != nil {
			t.Fatalf("apply %v: %v", m, err)
		}
	}
	if s.Remaining() != 0 {
		t.Errorf("expected remaining clamped to 0, got %d", s.Remaining())
	}

	last := func(yield func(hanoi.Move) bool) {
		yield(hanoi.Move{Disk: 1, From: hanoi.Auxiliary, To: hanoi.Target})
	}
	result, err := p.Play(context.Background(), s, last)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if !result.Solved || len(result.Moves) != 1 || s.Steps() != 4 {
		t.Errorf("unexpected result %+v after %d steps", result, s.Steps())
	}
}

func TestDiscard(t *testing.T) {
	p := New(Discard, WithWait((&testWait{}).wait))
	result, err := p.Run(context.Background(), 4)
	if err != nil || !result.Solved || len(result.Moves) != 15 {
		t.Errorf("unexpected headless run %+v, %v", result, err)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := Sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled for zero wait, got %v", err)
	}
}
