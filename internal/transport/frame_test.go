package transport_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/mcp-scooter/bridge/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_EncodeDecodeRoundTrip(t *testing.T) {
	msgs := []transport.Message{
		{Type: transport.TypePing},
		{Type: transport.TypeRPC, ID: float64(1), Method: "system.health"},
		{Type: transport.TypeStatus, Status: "pong", Message: "hi"},
		{Type: transport.TypeConsole, ServerID: "echo", Level: "log", Message: "hello"},
	}
	for _, msg := range msgs {
		var buf bytes.Buffer
		require.NoError(t, transport.WriteFrame(&buf, msg))

		got, err := transport.ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, msg.Type, got.Type)
		assert.Equal(t, msg.Method, got.Method)
		assert.Equal(t, msg.Status, got.Status)
	}
}

func TestFrame_OversizedLengthPrefixRejected(t *testing.T) {
	var buf bytes.Buffer
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], transport.MaxFrameSize+1)
	buf.Write(length[:])

	_, err := transport.ReadFrame(&buf)
	assert.Error(t, err)
}

func TestFrame_MalformedJSONIsTransportError(t *testing.T) {
	var buf bytes.Buffer
	var length [4]byte
	payload := []byte("{not json")
	binary.LittleEndian.PutUint32(length[:], uint32(len(payload)))
	buf.Write(length[:])
	buf.Write(payload)

	_, err := transport.ReadFrame(&buf)
	assert.Error(t, err)
}
