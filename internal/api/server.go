// Package api provides the HTTP control surface and the WebSocket event
// stream.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"inputcap/internal/capture"
	"inputcap/internal/config"
	"inputcap/internal/sink"
	"inputcap/internal/winctl"
)

// Server exposes capture control, permissions, window control and the
// event stream over HTTP.
type Server struct {
	configMgr *config.Manager
	ctrl      *capture.Controller
	win       winctl.Control
	stream    *Stream
	token     string
}

// NewServer creates a new API server. The stream registers itself as the
// sink consumer; connected WebSocket clients receive every captured event.
func NewServer(configMgr *config.Manager, ctrl *capture.Controller, win winctl.Control, snk *sink.Sink) *Server {
	s := &Server{
		configMgr: configMgr,
		ctrl:      ctrl,
		win:       win,
	}
	s.stream = newStream(ctrl)
	snk.Set(s.stream)
	return s
}

// Start starts the API server on the specified port. Blocks.
func (s *Server) Start(port int) error {
	cfg := s.configMgr.Get()
	s.token = cfg.General.APIToken

	mux := http.NewServeMux()
	mux.HandleFunc("/api/capture/start", s.handleStart)
	mux.HandleFunc("/api/capture/stop", s.handleStop)
	mux.HandleFunc("/api/capture/status", s.handleStatus)
	mux.HandleFunc("/api/permissions", s.handlePermissions)
	mux.HandleFunc("/api/window/fullscreen", s.handleFullscreen)
	mux.HandleFunc("/api/window/screen", s.handleScreenSize)
	mux.HandleFunc("/ws", s.stream.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	// Bind tcp4 explicitly to avoid IPv6-only binding issues on Windows.
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		log.Printf("API: failed to listen on %s: %v", addr, err)
		return err
	}
	log.Printf("API: listening on %s", addr)

	server := &http.Server{
		Handler: s.authMiddleware(s.recoverMiddleware(mux)),
	}
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Printf("API: server stopped: %v", err)
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("API: panic recovered: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: failed to encode response: %v", err)
	}
}

// handleStart handles POST /api/capture/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	active := s.ctrl.Start()
	s.stream.pushStatus(active)
	writeJSON(w, map[string]bool{"capturing": active})
}

// handleStop handles POST /api/capture/stop. Stopping always succeeds:
// capture is inactive after the call.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ctrl.Stop()
	s.stream.pushStatus(false)
	writeJSON(w, map[string]bool{"capturing": false})
}

// handleStatus handles GET /api/capture/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]bool{"capturing": s.ctrl.IsCapturing()})
}

// handlePermissions handles GET (check) and POST (request) on
// /api/permissions
func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.ctrl.CheckCapability())
	case http.MethodPost:
		writeJSON(w, map[string]bool{"granted": s.ctrl.RequestCapability()})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFullscreen handles POST (enter), DELETE (exit) and GET (query) on
// /api/window/fullscreen
func (s *Server) handleFullscreen(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.windowResult(w, s.win.EnterFullscreen())
	case http.MethodDelete:
		s.windowResult(w, s.win.ExitFullscreen())
	case http.MethodGet:
		full, err := s.win.IsFullscreen()
		if err != nil && !errors.Is(err, winctl.ErrUnavailable) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]bool{"fullscreen": full})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) windowResult(w http.ResponseWriter, err error) {
	if err != nil {
		log.Printf("API: window control: %v", err)
		s.stream.pushError(err.Error())
		writeJSON(w, map[string]bool{"ok": false})
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

// handleScreenSize handles GET /api/window/screen
func (s *Server) handleScreenSize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	size, err := s.win.ScreenSize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, size)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
