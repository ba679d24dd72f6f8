// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package statusserver exposes a read-only HTTP+WebSocket view of a
// Loader's current ControllerState: a JSON snapshot endpoint and a
// WebSocket broadcast of a "reload" event each time a load completes. It
// does not participate in the loader's invariants; it is a thin
// operational tool in the shape of the teacher's mock REST server and
// streaming package, repurposed from request/response simulation and job
// streaming to read-only introspection.
package statusserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jontk/slurmctld"
	"github.com/jontk/slurmctld/pkg/logging"
)

// Server serves a snapshot of a Loader's state over HTTP and broadcasts a
// reload event to connected WebSocket clients.
type Server struct {
	loader   *slurmctld.Loader
	logger   logging.Logger
	upgrader websocket.Upgrader
	router   *mux.Router

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer returns a Server for loader. logger defaults to
// logging.DefaultLogger if nil.
func NewServer(loader *slurmctld.Loader, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	s := &Server{
		loader:  loader,
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// reloadEvent is the WebSocket message broadcast after a successful load.
type reloadEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.loader.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("statusserver: encoding snapshot failed", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("statusserver: websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	go s.drainUntilClosed(conn)
}

// drainUntilClosed reads (and discards) incoming frames until a read fails,
// typically because the client closed the connection, and then unregisters
// the client; this is a broadcast-only channel, so anything the client
// sends is simply ignored.
func (s *Server) drainUntilClosed(conn *websocket.Conn) {
	defer s.removeClient(conn)
	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}

// BroadcastReload notifies every connected WebSocket client that a reload
// completed. Call this after a successful Loader.ReadSlurmConf.
func (s *Server) BroadcastReload() {
	event := reloadEvent{Type: "reload", Timestamp: time.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Warn("statusserver: broadcasting reload event failed", "error", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
