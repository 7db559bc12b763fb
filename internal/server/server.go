// Package server streams simulation snapshots over WebSocket and exposes
// Prometheus metrics. The simulator is only touched from the loop goroutine;
// client controls reach it through the hub's control queue.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kyjohnso/kessler/internal/debris"
	"github.com/kyjohnso/kessler/internal/population"
	"github.com/kyjohnso/kessler/internal/sim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const DefaultTick = 50 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Options struct {
	Addr        string
	BroadcastHz float64
	Tick        time.Duration
	Gatherer    prometheus.Gatherer
	Logger      zerolog.Logger
}

// ObjectView is the wire form of one object.
type ObjectView struct {
	ID       uint64     `json:"id"`
	Category string     `json:"category"`
	Position [3]float64 `json:"p"`
}

type Snapshot struct {
	Time    float64           `json:"time"`
	Step    int               `json:"step"`
	Paused  bool              `json:"paused"`
	Speed   float64           `json:"speed"`
	Counts  population.Counts `json:"counts"`
	Objects []ObjectView      `json:"objects"`
	Events  []debris.Event    `json:"events"`
}

type Server struct {
	sim      *sim.Simulator
	hub      *Hub
	opts     Options
	limiter  *rate.Limiter
	log      zerolog.Logger
	step     int
	pending  []debris.Event
	lastSent time.Time
}

func New(s *sim.Simulator, opts Options) *Server {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	limit := rate.Inf
	if opts.BroadcastHz > 0 {
		limit = rate.Limit(opts.BroadcastHz)
	}
	return &Server{
		sim:     s,
		hub:     NewHub(opts.Logger),
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		log:     opts.Logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	client := NewClient(s.hub, conn)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// Loop runs the hub and drives the simulator in real time until ctx is
// done: each tick it applies queued controls, runs the steps the clock owes
// for the elapsed wall time, and broadcasts a snapshot when the limiter
// allows.
func (s *Server) Loop(ctx context.Context) {
	go s.hub.Run(ctx)

	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case ctl := <-s.hub.controls:
			s.apply(ctl)
		case now := <-ticker.C:
			s.advance(now.Sub(last))
			last = now
			if s.limiter.Allow() {
				s.publish()
			}
		}
	}
}

func (s *Server) apply(ctl Control) {
	clock := s.sim.Clock()
	if ctl.Paused != nil {
		if *ctl.Paused {
			clock.Pause()
		} else {
			clock.Resume()
		}
	}
	if ctl.Speed != nil {
		clock.SetSpeed(*ctl.Speed)
	}
	s.log.Debug().Bool("paused", clock.Paused).Float64("speed", clock.Speed).Msg("control applied")
}

func (s *Server) advance(wall time.Duration) {
	steps := s.sim.Clock().StepsFor(wall)
	for i := 0; i < steps; i++ {
		r := s.sim.Step()
		s.step = r.Step
		s.pending = append(s.pending, r.Events...)
	}
}

func (s *Server) publish() {
	payload, err := json.Marshal(s.snapshot())
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot encode")
		return
	}
	s.pending = s.pending[:0]
	s.hub.Broadcast(payload)
}

func (s *Server) snapshot() Snapshot {
	pop := s.sim.Population()
	clock := s.sim.Clock()

	objs := pop.Objects()
	views := make([]ObjectView, len(objs))
	for i := range objs {
		p := objs[i].State.Position
		views[i] = ObjectView{
			ID:       uint64(objs[i].ID),
			Category: objs[i].Physics.Category.String(),
			Position: [3]float64{p.X, p.Y, p.Z},
		}
	}

	events := make([]debris.Event, len(s.pending))
	copy(events, s.pending)

	return Snapshot{
		Time:    clock.Current,
		Step:    s.step,
		Paused:  clock.Paused,
		Speed:   clock.Speed,
		Counts:  pop.Counts(),
		Objects: views,
		Events:  events,
	}
}

// ListenAndServe serves Handler on opts.Addr and runs Loop until ctx is
// done, then shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.Loop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
