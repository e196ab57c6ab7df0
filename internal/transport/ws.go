package transport

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsFrameIO implements FrameIO over a WebSocket connection, carrying the
// same tagged JSON envelope as the stdio frames but as text messages
// instead of length-prefixed binary ones (spec §6).
type wsFrameIO struct {
	conn *websocket.Conn
	ctx  context.Context
	mu   sync.Mutex
}

func (w *wsFrameIO) ReadMessage() (Message, error) {
	var msg Message
	if err := wsjson.Read(w.ctx, w.conn, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (w *wsFrameIO) WriteMessage(msg Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return wsjson.Write(w.ctx, w.conn, msg)
}

// ServeWS drives a Session over an already-upgraded WebSocket connection
// (HTTPServer.handleWS performs the upgrade) until the connection closes.
func ServeWS(ctx context.Context, conn *websocket.Conn, build func(io FrameIO) *Session) error {
	defer conn.Close(websocket.StatusNormalClosure, "bridge session ended")

	frameIO := &wsFrameIO{conn: conn, ctx: ctx}
	session := build(frameIO)
	err := session.Run(ctx)
	if err == ErrShutdown {
		return err
	}
	if websocket.CloseStatus(err) != -1 {
		// Ordinary client-initiated close, not a transport failure.
		return nil
	}
	return err
}
