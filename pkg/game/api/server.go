// Package api serves recorded histories, stored runs and a live turn stream
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/gameplay"
	"rescuesim/pkg/game/layout"
	"rescuesim/pkg/game/replay"
	"rescuesim/pkg/game/setup"
	"rescuesim/pkg/game/state"
	"rescuesim/pkg/game/store"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
	maxStreamDelay  = 2 * time.Second
	writeTimeout    = 5 * time.Second
)

// Server serves run data over HTTP
type Server struct {
	Config config.Config
	Source layout.Source
	DB     *store.DB // optional; run endpoints return 503 without it
	Addr   string
	Log    logrus.FieldLogger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	history *replay.Document
}

// StreamMessage is one websocket frame of the live stream
type StreamMessage struct {
	Type     string          `json:"type"` // "turn" or "outcome"
	Snapshot *state.Snapshot `json:"snapshot,omitempty"`
	Outcome  *state.Outcome  `json:"outcome,omitempty"`
	RunID    string          `json:"run_id,omitempty"`
}

// NewServer creates a server that runs new games from cfg and src
func NewServer(cfg config.Config, src layout.Source, db *store.DB, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if src == nil {
		src = setup.SourceFor(cfg.Board)
	}
	return &Server{
		Config: cfg,
		Source: src,
		DB:     db,
		Addr:   ":8585",
		Log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetHistory publishes the document served by the history endpoint
func (s *Server) SetHistory(d *replay.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = d
}

// History returns the published document, or nil
func (s *Server) History() *replay.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHistory)
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleRun)
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	return mux
}

// Start begins serving in a goroutine. The returned server can be shut down
// by the caller.
func (s *Server) Start() *http.Server {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	s.Log.WithFields(logrus.Fields{"addr": s.Addr, "store": s.DB != nil}).Info("HTTP API starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.WithError(err).Error("HTTP server error")
		}
	}()
	return srv
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	d := s.History()
	if d == nil {
		writeError(w, http.StatusNotFound, "no history recorded")
		return
	}
	writeJSON(w, d)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	limit := defaultRunLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxRunLimit {
			limit = n
		}
	}
	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		s.Log.WithError(err).Error("list runs")
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	run, err := s.DB.GetRun(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.Log.WithError(err).Error("get run")
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	writeJSON(w, run)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	sum, err := s.DB.Summary()
	if err != nil {
		s.Log.WithError(err).Error("summary")
		writeError(w, http.StatusInternalServerError, "summary failed")
		return
	}
	writeJSON(w, sum)
}

// handleStream runs a fresh game and sends one message per turn, then the
// outcome, then closes. Query parameters: seed, delay_ms.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		cfg.Seed = seed
	}
	var delay time.Duration
	if v := r.URL.Query().Get("delay_ms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			delay = min(time.Duration(n)*time.Millisecond, maxStreamDelay)
		}
	}

	log := s.Log.WithFields(logrus.Fields{"seed": cfg.Seed, "remote": r.RemoteAddr})
	g, err := setup.NewRun(cfg, s.Source, log)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader loop so close frames from the client are processed.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(m StreamMessage) error {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteMessage(websocket.TextMessage, b)
	}

	rec := replay.NewRecorder()
	out, err := gameplay.Run(ctx, g, func(snap state.Snapshot) {
		rec.Observe(snap)
		if err := send(StreamMessage{Type: "turn", Snapshot: &snap}); err != nil {
			cancel()
			return
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	})
	if err != nil {
		log.WithError(err).Debug("stream ended early")
		return
	}

	s.SetHistory(rec.Document())
	final := StreamMessage{Type: "outcome", Outcome: &out}
	if s.DB != nil {
		record := store.NewRecord(g, s.Source.Name())
		if err := s.DB.SaveRun(&record); err != nil {
			log.WithError(err).Error("save streamed run")
		} else {
			final.RunID = record.ID
		}
	}
	if err := send(final); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, out.Result.String()),
		time.Now().Add(time.Second))
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
