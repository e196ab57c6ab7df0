package transport

import (
	"context"
	"io"
	"sync"
)

// stdioFrameIO implements FrameIO over a pair of byte streams using the
// length-prefixed framing in frame.go. Writes are serialized: the session's
// own goroutine and any concurrently-running stream forwarders may both
// call WriteMessage.
type stdioFrameIO struct {
	r  io.Reader
	w  io.Writer
	mu sync.Mutex
}

func (s *stdioFrameIO) ReadMessage() (Message, error) {
	return ReadFrame(s.r)
}

func (s *stdioFrameIO) WriteMessage(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteFrame(s.w, msg)
}

// RunStdio drives one native-messaging session over r/w until the
// connection closes or a shutdown frame arrives.
func RunStdio(ctx context.Context, r io.Reader, w io.Writer, build func(io FrameIO) *Session) error {
	conn := &stdioFrameIO{r: r, w: w}
	session := build(conn)
	return session.Run(ctx)
}
