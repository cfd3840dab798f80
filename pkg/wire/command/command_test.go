package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

func TestBytesRoundTrip(t *testing.T) {
	for _, c := range []command.Type{
		command.Version, command.VerAck, command.Addr, command.GetAddr,
		command.Inv, command.GetData, command.GetBlocks, command.GetHeaders,
		command.Headers, command.Block, command.TX, command.Ping,
		command.Pong, command.Alert,
	} {
		b := c.Bytes()
		assert.Len(t, b, command.Size)
		assert.Equal(t, c, command.FromBytes(b))
	}
}

func TestBytesPadsWithNUL(t *testing.T) {
	b := command.Version.Bytes()
	assert.Equal(t, byte(0), b[len(command.Version):][0])
}

func TestFromBytesTrimsTrailingNUL(t *testing.T) {
	var raw [command.Size]byte
	copy(raw[:], "tx")
	assert.Equal(t, command.Type("tx"), command.FromBytes(raw))
}
