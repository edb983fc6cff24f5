package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes a Counters set over HTTP: a one-shot /healthz JSON
// endpoint and a /diagnostics websocket that pushes a snapshot on a
// fixed interval, the same surface shape as the teacher's diagnostics
// handler.
type Server struct {
	counters *Counters
	interval time.Duration
}

// NewServer wraps counters for HTTP/WS exposure. interval governs how
// often /diagnostics pushes a fresh snapshot.
func NewServer(counters *Counters, interval time.Duration) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{counters: counters, interval: interval}
}

// Handler returns an http.Handler serving /healthz and /diagnostics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.counters.Snapshot()); err != nil {
		log.Error().Err(err).Msg("telemetry: encode health snapshot")
	}
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: diagnostics upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(s.counters.Snapshot()); err != nil {
			log.Debug().Err(err).Msg("telemetry: diagnostics client disconnected")
			return
		}
	}
}
