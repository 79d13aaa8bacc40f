package viz

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/player"
)

// Messages carry the run they belong to so events from a run that was reset
// are dropped.
type (
	placeMsg struct {
		run  int
		rank int
		at   geometry.Point
	}
	animateMsg struct {
		run  int
		rank int
		traj geometry.Trajectory
		d    time.Duration
	}
	logMsg struct {
		run  int
		text string
	}
	doneMsg struct {
		run    int
		result *player.Result
		err    error
	}
	tickMsg struct {
		run int
		at  time.Time
	}
	closedMsg struct{ run int }
)

// Renderer forwards player calls to the program as messages. It blocks until
// the model picks the message up or the run is canceled.
type Renderer struct {
	run    int
	ctx    context.Context
	events chan<- tea.Msg
}

func (r *Renderer) PlaceDisk(rank int, at geometry.Point) error {
	return r.send(placeMsg{run: r.run, rank: rank, at: at})
}

func (r *Renderer) AnimateTransition(rank int, t geometry.Trajectory, d time.Duration) error {
	return r.send(animateMsg{run: r.run, rank: rank, traj: t, d: d})
}

func (r *Renderer) LogMove(text string) error {
	return r.send(logMsg{run: r.run, text: text})
}

func (r *Renderer) send(msg tea.Msg) error {
	select {
	case r.events <- msg:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

// listen waits for the next renderer event of a run.
func listen(run int, events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return closedMsg{run: run}
		}
		return msg
	}
}
