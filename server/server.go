// Package server exposes the delivery game over a websocket: spectators
// receive every action record as it happens, and any client can request a new
// delivery attempt. It is a transport for the core, not a UI.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/parcelpilot/courier-go-sdk/building"
	"github.com/parcelpilot/courier-go-sdk/courier"
	"github.com/parcelpilot/courier-go-sdk/engine"
)

// Config configures the server.
type Config struct {
	// Engine runs delivery attempts; required.
	Engine *engine.Engine

	// Toolbox must be the same toolbox the engine drives, constructed with
	// WithEventBuffer so the server can drain action records; required.
	Toolbox *courier.Toolbox

	// Building generates packages for requested attempts; required.
	Building *building.Building

	// DefaultMaxSteps is used when a deliver request carries no budget.
	// Default: 20.
	DefaultMaxSteps int
}

// Server serializes delivery attempts and broadcasts their action trail.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader

	attemptMu sync.Mutex // one attempt at a time: the core is single-threaded

	connsMu sync.Mutex
	conns   map[*websocket.Conn]bool
}

// New validates the config and creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil || cfg.Toolbox == nil || cfg.Building == nil {
		return nil, fmt.Errorf("server config requires Engine, Toolbox, and Building")
	}
	if cfg.Toolbox.Events() == nil {
		return nil, fmt.Errorf("toolbox has no event buffer; construct it with courier.WithEventBuffer")
	}
	if cfg.DefaultMaxSteps <= 0 {
		cfg.DefaultMaxSteps = 20
	}
	return &Server{
		cfg:      cfg,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*websocket.Conn]bool),
	}, nil
}

// frame is the wire format of every server-to-client message.
type frame struct {
	Type    string                `json:"type"`
	Record  *courier.ActionRecord `json:"record,omitempty"`
	Label   string                `json:"label,omitempty"`
	Success *bool                 `json:"success,omitempty"`
	Steps   int                   `json:"steps,omitempty"`
	Optimal int                   `json:"optimal,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// clientRequest is what clients send.
type clientRequest struct {
	Type     string `json:"type"` // "deliver"
	MaxSteps int    `json:"max_steps,omitempty"`
}

// Run serves /ws and /health on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	go s.drainEvents()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.Printf("[SERVER] Listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// drainEvents forwards every toolbox action record to all connected clients.
func (s *Server) drainEvents() {
	for rec := range s.cfg.Toolbox.Events() {
		rec := rec
		s.broadcast(frame{Type: "action", Record: &rec})
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] Upgrade failed: %v", err)
		return
	}

	s.connsMu.Lock()
	s.conns[conn] = true
	s.connsMu.Unlock()
	log.Printf("[SERVER] Client connected (%d total)", s.clientCount())

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
		conn.Close()
		log.Printf("[SERVER] Client disconnected (%d total)", s.clientCount())
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req clientRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.send(conn, frame{Type: "error", Error: "malformed request"})
			continue
		}
		switch req.Type {
		case "deliver":
			s.runDelivery(r.Context(), req.MaxSteps)
		default:
			s.send(conn, frame{Type: "error", Error: fmt.Sprintf("unknown request type %q", req.Type)})
		}
	}
}

// runDelivery generates a package and drives one attempt, broadcasting the
// outcome. Attempts are serialized: the toolbox is not safe for concurrent use.
func (s *Server) runDelivery(ctx context.Context, maxSteps int) {
	s.attemptMu.Lock()
	defer s.attemptMu.Unlock()

	if maxSteps <= 0 {
		maxSteps = s.cfg.DefaultMaxSteps
	}

	pkg := s.cfg.Building.GeneratePackage(building.RevealCoinFlip)
	s.broadcast(frame{Type: "package", Label: pkg.Label()})

	result, err := s.cfg.Engine.Deliver(ctx, &engine.Input{
		Package:  pkg,
		MaxSteps: maxSteps,
	})
	if err != nil {
		s.broadcast(frame{Type: "result", Error: err.Error()})
		return
	}

	out := frame{
		Type:    "result",
		Success: &result.Success,
		Steps:   result.StepsTaken,
		Optimal: result.OptimalSteps,
	}
	if result.Error != nil {
		out.Error = result.Error.Error()
	}
	s.broadcast(out)
}

func (s *Server) clientCount() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

func (s *Server) broadcast(f frame) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteJSON(f); err != nil {
			conn.Close()
			delete(s.conns, conn)
		}
	}
}

func (s *Server) send(conn *websocket.Conn, f frame) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	_ = conn.WriteJSON(f)
}
