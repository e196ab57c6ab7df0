package transport

import (
	"context"
	"fmt"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/hostrpc"
	"github.com/mcp-scooter/bridge/internal/rpc"
)

// FrameIO abstracts one connection's message transport: a stdio pipe
// framing JSON with a length prefix, or a WebSocket carrying JSON text
// frames. Both implementations share the Session driver below.
type FrameIO interface {
	ReadMessage() (Message, error)
	WriteMessage(Message) error
}

// ErrShutdown is returned by Session.Run when the peer sent a shutdown
// frame; the caller (cmd/scooter-bridge) treats it as "exit the process".
var ErrShutdown = fmt.Errorf("shutdown requested")

// Session drives one connection's request/response loop: ping/status/
// shutdown handling, RPC dispatch (including streaming fan-out), and
// inbound host_response correlation.
type Session struct {
	IO         FrameIO
	Dispatcher *rpc.Dispatcher
	Router     *hostrpc.Router // nil if this connection cannot round-trip host calls
	OnOrphan   func(id string)
}

// Run processes frames until the connection closes, a transport error
// occurs, or a shutdown frame arrives.
func (s *Session) Run(ctx context.Context) error {
	for {
		msg, err := s.IO.ReadMessage()
		if err != nil {
			return err
		}

		switch msg.Type {
		case TypePing:
			_ = s.IO.WriteMessage(Message{Type: TypeStatus, Status: "pong", Message: "pong"})

		case TypeStatus:
			_ = s.IO.WriteMessage(Message{Type: TypeStatus, Status: "ok"})

		case TypeShutdown:
			return ErrShutdown

		case TypeHostResponse:
			s.handleHostResponse(msg)

		case TypeRPC:
			s.handleRPC(ctx, msg)

		default:
			_ = s.IO.WriteMessage(Message{
				Type:  TypeRPCResponse,
				ID:    msg.ID,
				Error: rpc.NewError(rpc.CodeInvalidRequest, "unknown frame type: "+msg.Type),
			})
		}
	}
}

func (s *Session) handleHostResponse(msg Message) {
	if s.Router == nil {
		return
	}
	id := fmt.Sprintf("%v", msg.ID)
	result := guest.HostResult{}
	if msg.Error != nil {
		result.Err = msg.Error.Message
	} else {
		result.Result = msg.Result
	}
	s.Router.Deliver(id, result)
}

func (s *Session) handleRPC(ctx context.Context, msg Message) {
	req := rpc.Request{ID: msg.ID, Method: msg.Method, Params: msg.Params}

	if s.Dispatcher.IsStreaming(msg.Method) {
		// Run in its own goroutine: the session's read loop must keep
		// servicing host_response frames and other requests while a
		// stream is in flight (FrameIO implementations serialize their
		// own writes, so concurrent WriteMessage calls are safe).
		go s.runStream(ctx, msg, req)
		return
	}

	resp := s.Dispatcher.Dispatch(ctx, req)
	_ = s.IO.WriteMessage(Message{Type: TypeRPCResponse, ID: resp.ID, Result: resp.Result, Error: resp.Error})
}

func (s *Session) runStream(ctx context.Context, msg Message, req rpc.Request) {
	events, err := s.Dispatcher.DispatchStream(ctx, req)
	if err != nil {
		var codedErr *rpc.Error
		if ce, ok := err.(*rpc.Error); ok {
			codedErr = ce
		} else {
			codedErr = rpc.NewError(rpc.CodeInternalError, err.Error())
		}
		_ = s.IO.WriteMessage(Message{Type: TypeRPCResponse, ID: msg.ID, Error: codedErr})
		return
	}
	for event := range events {
		ev := event
		_ = s.IO.WriteMessage(Message{Type: TypeStream, ID: msg.ID, Event: &ev})
	}
}
