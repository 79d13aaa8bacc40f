// Package server exposes the solver to a browser: the embedded page, a JSON
// API over the move sequence and initial layout, and a websocket that streams
// an animated solve driven by the player.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hanoisim/internal/config"
	"github.com/san-kum/hanoisim/internal/export"
	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/logging"
	"github.com/san-kum/hanoisim/internal/metrics"
	"github.com/san-kum/hanoisim/internal/player"
	"github.com/san-kum/hanoisim/internal/session"
	"github.com/san-kum/hanoisim/web"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	metrics  *Metrics
	wait     player.WaitFunc
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

type Option func(*Server)

// WithWait replaces the pause between moves, mostly for tests.
func WithWait(w player.WaitFunc) Option { return func(s *Server) { s.wait = w } }

func New(cfg *config.Config, logger logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(),
		wait:    player.Sleep,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.SetHTMLTemplate(web.Templates())
	r.StaticFS("/static", web.StaticFS())
	r.GET("/", s.handleIndex)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/solve", s.handleSolve)
		api.GET("/layout", s.handleLayout)
		api.GET("/board.svg", s.handleBoardSVG)
	}
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }
func (s *Server) Metrics() *Metrics     { return s.metrics }

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", logging.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// checkOrigin admits clients that send no Origin, pages served by this host
// and the configured extra origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return slices.Contains(s.cfg.Server.AllowedOrigins, strings.TrimSuffix(origin, "/"))
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Int("bytes", c.Writer.Size()),
			logging.Duration("dur", time.Since(start).Round(time.Millisecond)),
		)
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// disksParam reads ?disks=N the way the page's input does: clamped, with
// empty and non-numeric values rejected.
func disksParam(c *gin.Context) (int, bool) {
	n, err := hanoi.ParseDisks(c.Query("disks"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return 0, false
	}
	return n, true
}

func (s *Server) handleIndex(c *gin.Context) {
	l := s.cfg.Layout
	layout, err := json.Marshal(l)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	n := hanoi.ClampDisks(s.cfg.Disks)
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Disks":  n,
		"Total":  hanoi.TotalMoves(n),
		"Min":    hanoi.MinDisks,
		"Max":    hanoi.MaxDisks,
		"Width":  l.Width(),
		"Height": l.Clearance + l.DiskHeight + 20,
		"Layout": string(layout),
	})
}

type solveResponse struct {
	Disks int          `json:"disks"`
	Total int          `json:"total"`
	Moves []hanoi.Move `json:"moves"`
}

func (s *Server) handleSolve(c *gin.Context) {
	n, ok := disksParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, solveResponse{Disks: n, Total: hanoi.TotalMoves(n), Moves: hanoi.Moves(n)})
}

type layoutResponse struct {
	Disks  int                 `json:"disks"`
	Total  int                 `json:"total"`
	Layout geometry.Layout     `json:"layout"`
	State  []session.DiskState `json:"state"`
	Colors []string            `json:"colors"`
}

func (s *Server) handleLayout(c *gin.Context) {
	n, ok := disksParam(c)
	if !ok {
		return
	}
	snap := session.New(n, s.cfg.Layout).Snapshot()
	c.JSON(http.StatusOK, layoutResponse{
		Disks:  n,
		Total:  hanoi.TotalMoves(n),
		Layout: s.cfg.Layout,
		State:  snap.State,
		Colors: geometry.Palette[:],
	})
}

// handleBoardSVG renders the board after ?step=K moves of an N-disk solve.
func (s *Server) handleBoardSVG(c *gin.Context) {
	n, ok := disksParam(c)
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.DefaultQuery("step", "0"))
	if err != nil || step < 0 || step > hanoi.TotalMoves(n) {
		errorJSON(c, http.StatusBadRequest, errors.New("step out of range"))
		return
	}
	sess := session.New(n, s.cfg.Layout)
	for m := range hanoi.Solve(n, hanoi.Source, hanoi.Auxiliary, hanoi.Target) {
		if sess.Steps() == step {
			break
		}
		if _, err := sess.Apply(m); err != nil {
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(export.BoardSVG(sess.Snapshot(), s.cfg.Layout)))
}

// handleWebSocket streams one animated solve. The page may send
// {"action":"reset"}; that, or the page going away, cancels the run.
func (s *Server) handleWebSocket(c *gin.Context) {
	n, ok := disksParam(c)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Err(err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := s.logger.With(logging.String("session", id))
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s.metrics.active.Inc()
	defer s.metrics.active.Dec()

	r := &wsRenderer{conn: conn, layout: s.cfg.Layout}
	if err := r.write(Event{Type: "session", Session: id, Total: hanoi.TotalMoves(n)}); err != nil {
		return
	}
	go readLoop(conn, cancel, log)

	p := player.New(r,
		player.WithLayout(s.cfg.Layout),
		player.WithTiming(s.cfg.PlayerTiming()),
		player.WithWait(s.wait),
		player.WithLogger(log),
		player.WithObservers(s.metrics),
		player.WithMetrics(metrics.NewMoveCount(), metrics.NewTravelDistance()),
	)
	result, err := p.Run(ctx, n)
	s.metrics.record(result, err)

	switch {
	case err == nil:
		_ = r.write(Event{Type: "done", Result: result})
	case errors.Is(err, context.Canceled):
		return
	default:
		_ = r.write(Event{Type: "error", Error: err.Error()})
	}
	r.close()
}

func readLoop(conn *websocket.Conn, cancel context.CancelFunc, log logging.Logger) {
	defer cancel()
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Action == "reset" {
			log.Info("reset requested")
			return
		}
	}
}
