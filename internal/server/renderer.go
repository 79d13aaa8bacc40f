package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/player"
)

const writeWait = 10 * time.Second

// Event is one websocket frame sent to the page.
type Event struct {
	Type      string           `json:"type"`
	Session   string           `json:"session,omitempty"`
	Rank      int              `json:"rank,omitempty"`
	Position  *geometry.Point  `json:"position,omitempty"`
	Width     float64          `json:"width,omitempty"`
	Color     string           `json:"color,omitempty"`
	Keyframes []geometry.Point `json:"keyframes,omitempty"`
	Offsets   []float64        `json:"offsets,omitempty"`
	Duration  int64            `json:"durationMs,omitempty"`
	Text      string           `json:"text,omitempty"`
	Total     int              `json:"total,omitempty"`
	Result    *player.Result   `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// clientMessage is what the page sends back; only "reset" is understood.
type clientMessage struct {
	Action string `json:"action"`
}

// wsRenderer implements player.Renderer by streaming events to one page.
type wsRenderer struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	layout geometry.Layout
}

func (r *wsRenderer) PlaceDisk(rank int, at geometry.Point) error {
	return r.write(Event{
		Type:     "place",
		Rank:     rank,
		Position: &at,
		Width:    r.layout.DiskWidth(rank),
		Color:    geometry.DiskColor(rank),
	})
}

func (r *wsRenderer) AnimateTransition(rank int, t geometry.Trajectory, d time.Duration) error {
	kf := t.Keyframes()
	return r.write(Event{
		Type:      "animate",
		Rank:      rank,
		Keyframes: kf[:],
		Offsets:   geometry.Offsets[:],
		Duration:  d.Milliseconds(),
	})
}

func (r *wsRenderer) LogMove(text string) error {
	return r.write(Event{Type: "log", Text: text})
}

func (r *wsRenderer) write(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return r.conn.WriteJSON(ev)
}

func (r *wsRenderer) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = r.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
