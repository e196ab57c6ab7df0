package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/mcp-scooter/bridge/internal/rpc"
)

// HTTPServer wires the HTTP+WebSocket loopback surface (spec §6): GET
// /health, POST /rpc, GET /ws. CORS allows any origin, GET/POST/OPTIONS,
// generalizing the teacher's ControlServer.ServeHTTP CORS/OPTIONS
// short-circuit.
type HTTPServer struct {
	BuildDispatcher func() *Session // constructs a fresh per-connection Session (fresh dispatcher/router)
	StartedAt       time.Time
}

func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/rpc", h.handleRPC)
	mux.HandleFunc("/ws", h.handleWS)
	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"uptime_sec": int(time.Since(h.StartedAt).Seconds()),
	})
}

// handleRPC serves one unary request. Its session has no FrameIO attached —
// an HTTP POST cannot round-trip a host call, so the session router's
// Sender fails and MCP.requestHost inside a guest reached this way always
// fails fast (spec §4.4).
func (h *HTTPServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, Message{
			Type:  TypeRPCResponse,
			Error: rpc.NewError(rpc.CodeParseError, "parse error: "+err.Error()),
		})
		return
	}
	msg.Type = TypeRPC

	session := h.BuildDispatcher()
	ctx := r.Context()

	if session.Dispatcher.IsStreaming(msg.Method) {
		writeJSON(w, http.StatusOK, Message{
			Type:  TypeRPCResponse,
			ID:    msg.ID,
			Error: rpc.NewError(rpc.CodeInvalidRequest, "streaming methods require the WebSocket or stdio transport"),
		})
		return
	}

	resp := session.Dispatcher.Dispatch(ctx, rpc.Request{ID: msg.ID, Method: msg.Method, Params: msg.Params})
	writeJSON(w, http.StatusOK, Message{Type: TypeRPCResponse, ID: resp.ID, Result: resp.Result, Error: resp.Error})
}

func (h *HTTPServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // loopback only; CORS policy is enforced above
	})
	if err != nil {
		return
	}
	_ = ServeWS(r.Context(), conn, func(io FrameIO) *Session {
		s := h.BuildDispatcher()
		s.IO = io
		return s
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
