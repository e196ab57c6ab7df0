package transport

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize is the spec's hard cap (10 MiB); a larger length prefix is a
// protocol error and closes the connection.
const MaxFrameSize = 10 * 1024 * 1024

// WriteFrame encodes msg as a 4-byte little-endian length prefix followed
// by that many bytes of UTF-8 JSON (spec §6).
func WriteFrame(w io.Writer, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(data) > MaxFrameSize {
		return fmt.Errorf("encode frame: %d bytes exceeds max frame size", len(data))
	}
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(data)))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFrame decodes one length-prefixed JSON frame. An oversized or
// malformed frame is a transport error (spec §7: "closes the connection;
// no reply").
func ReadFrame(r io.Reader) (Message, error) {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return Message{}, err
	}
	size := binary.LittleEndian.Uint32(length[:])
	if size > MaxFrameSize {
		return Message{}, fmt.Errorf("read frame: %d bytes exceeds max frame size", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return Message{}, fmt.Errorf("read frame: %w", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("read frame: malformed json: %w", err)
	}
	return msg, nil
}
