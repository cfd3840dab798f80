package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

func TestMagicString(t *testing.T) {
	assert.Equal(t, "mainnet", protocol.MainNet.String())
	assert.Equal(t, "testnet", protocol.TestNet.String())
	assert.Equal(t, "regtest", protocol.RegTest.String())
	assert.Equal(t, "unknown", protocol.Magic(0xdeadbeef).String())
}

func TestVersionThresholds(t *testing.T) {
	assert.Less(t, protocol.BIP0031Version, protocol.NodeVersion)
	assert.Less(t, protocol.MinAcceptedVersion, protocol.BIP0031Version)
}
