package payload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

func TestPingRoundTripWithNonce(t *testing.T) {
	p := &payload.Ping{HasNonce: true, Nonce: 0xcafebabe}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	back := &payload.Ping{}
	require.NoError(t, back.Decode(&buf))
	assert.True(t, back.HasNonce)
	assert.Equal(t, p.Nonce, back.Nonce)
}

func TestPingDecodeNoNonceOnEmptyPayload(t *testing.T) {
	back := &payload.Ping{}
	require.NoError(t, back.Decode(bytes.NewReader(nil)))
	assert.False(t, back.HasNonce)
}

func TestPingEncodeOmitsNonceWhenAbsent(t *testing.T) {
	p := &payload.Ping{HasNonce: false}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	assert.Equal(t, 0, buf.Len())
}

func TestPongRoundTrip(t *testing.T) {
	p := &payload.Pong{Nonce: 0x1234}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	back := &payload.Pong{}
	require.NoError(t, back.Decode(&buf))
	assert.Equal(t, p.Nonce, back.Nonce)
}
