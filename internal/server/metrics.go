package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/hanoisim/internal/player"
	"github.com/san-kum/hanoisim/internal/session"
)

// Metrics are the server's prometheus collectors, kept on a private registry
// so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry
	moves    prometheus.Counter
	solves   *prometheus.CounterVec
	active   prometheus.Gauge
	duration prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hanoi",
			Name:      "moves_total",
			Help:      "Moves streamed to browser sessions.",
		}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hanoi",
			Name:      "solves_total",
			Help:      "Finished websocket solves by outcome.",
		}, []string{"outcome"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hanoi",
			Name:      "active_sessions",
			Help:      "Websocket solves in progress.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hanoi",
			Name:      "solve_duration_seconds",
			Help:      "Wall time of completed solves.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	m.registry.MustRegister(m.moves, m.solves, m.active, m.duration)
	return m
}

// OnStep counts every presented move.
func (m *Metrics) OnStep(session.Step) { m.moves.Inc() }

func (m *Metrics) record(result *player.Result, err error) {
	switch {
	case err == nil:
		m.solves.WithLabelValues("solved").Inc()
		m.duration.Observe(result.Elapsed.Seconds())
	case errors.Is(err, context.Canceled):
		m.solves.WithLabelValues("canceled").Inc()
	default:
		m.solves.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
