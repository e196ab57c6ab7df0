// Package controlplane is the bridge's management HTTP surface (spec
// §4.8): a second server, distinct from the extension-facing loopback in
// internal/transport, that a local dashboard or other management client
// talks to for status, logs, and settings. The scooter CLI
// (internal/bridgeclient) does not use it; it posts to the loopback's /rpc.
//
// Grounded on the teacher's internal/api.ControlServer: a single
// *http.ServeMux keyed by method+path patterns, a permissive CORS
// preflight, and an SSE log stream. The teacher's surface also carried
// profile/client/credential CRUD; this module's unit of isolation is a
// guest, not a profile, so that CRUD has no analogue here and was
// dropped rather than adapted (see DESIGN.md). GET /api/tools does carry
// forward an adjacent teacher-style catalog concern: it surfaces whatever
// internal/tools.ToolRegistry has accumulated from mcp.register_tools
// calls, the mechanism by which an extension-side (WASM) guest advertises
// its tools without being introspectable in-process.
package controlplane

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mcp-scooter/bridge/internal/logger"
	"github.com/mcp-scooter/bridge/internal/profilecfg"
	"github.com/mcp-scooter/bridge/internal/registry"
	"github.com/mcp-scooter/bridge/internal/tools"
)

// SettingsStore is the subset of profilecfg.Store the control plane needs
// to persist an updated Settings document.
type SettingsStore interface {
	SaveSettings(profilecfg.Settings) error
}

// Server serves the /api/* management endpoints.
type Server struct {
	mux *http.ServeMux

	reg       *registry.Registry
	arb       *tools.Arbitrator
	toolReg   *tools.ToolRegistry
	log       *logger.Logger
	store     SettingsStore
	startedAt time.Time

	settings profilecfg.Settings
}

// New builds a Server and registers its routes.
func New(reg *registry.Registry, arb *tools.Arbitrator, toolReg *tools.ToolRegistry, log *logger.Logger, store SettingsStore, settings profilecfg.Settings) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		reg:       reg,
		arb:       arb,
		toolReg:   toolReg,
		log:       log,
		store:     store,
		startedAt: time.Now(),
		settings:  settings,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/tools", s.handleGetTools)
	s.mux.HandleFunc("POST /api/tools/call", s.handleCallTool)
	s.mux.HandleFunc("GET /api/status", s.handleGetStatus)
	s.mux.HandleFunc("GET /api/logs", s.handleGetLogs)
	s.mux.HandleFunc("GET /api/logs/stream", s.handleLogStream)
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
}

// ServeHTTP applies the teacher's permissive CORS preflight, then
// dispatches into the route mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// handleGetTools returns every tool an extension-side server has pushed
// into the tool registry via mcp.register_tools, plus the ids of in-process
// guests (which the arbitrator calls directly and never need to register).
func (s *Server) handleGetTools(w http.ResponseWriter, r *http.Request) {
	var registered []tools.RegisteredTool
	if s.toolReg != nil {
		registered = s.toolReg.List()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools":  registered,
		"guests": s.reg.List(),
	})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	var p tools.Params
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.arb.CallTool(r.Context(), p)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bridge_running": true,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"bridge_port":    s.settings.BridgePort,
		"control_port":   s.settings.ControlPort,
		"active_guests":  s.reg.List(),
	})
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": s.log.Entries(),
	})
}

// handleLogStream is an SSE feed of new log entries, grounded on
// ControlServer.handleLogStream.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := s.log.Subscribe()
	defer s.log.Unsubscribe(sub)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"ok\"}\n\n")
	flusher.Flush()

	for {
		select {
		case entry, ok := <-sub:
			if !ok {
				return
			}
			data, _ := json.Marshal(entry)
			fmt.Fprintf(w, "event: log\ndata: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings profilecfg.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.settings = settings
	if s.store != nil {
		if err := s.store.SaveSettings(settings); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.settings)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
